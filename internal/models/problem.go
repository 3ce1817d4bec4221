package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProblemType distinguishes how a problem is graded.
type ProblemType string

const (
	// ProblemTypeMultipleChoice is graded synchronously by option comparison.
	ProblemTypeMultipleChoice ProblemType = "multiple_choice"
	// ProblemTypeSubjective is graded asynchronously by the AI grader.
	ProblemTypeSubjective ProblemType = "subjective"
)

// ProblemCategory groups problems by topic.
type ProblemCategory string

// Known problem categories.
const (
	CategoryAlgorithm       ProblemCategory = "algorithm"
	CategoryDatabase        ProblemCategory = "database"
	CategoryNetwork         ProblemCategory = "network"
	CategoryOperatingSystem ProblemCategory = "operating_system"
	CategoryDocker          ProblemCategory = "docker"
	CategoryKubernetes      ProblemCategory = "kubernetes"
)

// Categories lists every selectable category.
func Categories() []ProblemCategory {
	return []ProblemCategory{
		CategoryAlgorithm,
		CategoryDatabase,
		CategoryNetwork,
		CategoryOperatingSystem,
		CategoryDocker,
		CategoryKubernetes,
	}
}

// ProblemDifficulty grades how hard a problem is.
type ProblemDifficulty string

// Known difficulty levels.
const (
	DifficultyEasy   ProblemDifficulty = "easy"
	DifficultyMedium ProblemDifficulty = "medium"
	DifficultyHard   ProblemDifficulty = "hard"
)

// Difficulties lists every selectable difficulty.
func Difficulties() []ProblemDifficulty {
	return []ProblemDifficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ProblemProvider records where a problem came from.
type ProblemProvider string

const (
	// ProviderAI marks problems generated by the AI generator.
	ProviderAI ProblemProvider = "ai"
	// ProviderAdmin marks problems authored by administrators.
	ProviderAdmin ProblemProvider = "admin"
)

// ProblemStatus controls whether a problem is served to users.
type ProblemStatus string

const (
	// ProblemStatusActive problems are visible and solvable.
	ProblemStatusActive ProblemStatus = "active"
	// ProblemStatusInactive problems are hidden from listings.
	ProblemStatusInactive ProblemStatus = "inactive"
)

// Problem is a quiz question, either multiple-choice or subjective.
//
// Subjective problems carry an ordered rubric (GradingCriteria) and a sample
// answer that are fed to the AI grader; multiple-choice problems carry
// Options instead.
type Problem struct {
	ID                   uint                        `gorm:"primaryKey" json:"id"`
	Title                string                      `gorm:"size:255;not null" json:"title"`
	Question             string                      `gorm:"type:text;not null" json:"question"`
	Category             ProblemCategory             `gorm:"size:32;not null;index" json:"category"`
	Difficulty           ProblemDifficulty           `gorm:"size:16;not null;index" json:"difficulty"`
	Type                 ProblemType                 `gorm:"size:32;not null;index" json:"type"`
	Provider             ProblemProvider             `gorm:"size:16;not null" json:"provider"`
	Status               ProblemStatus               `gorm:"size:16;not null;default:active" json:"status"`
	SampleAnswer         string                      `gorm:"type:text" json:"sample_answer,omitempty"`
	ExpectedAnswerLength string                      `gorm:"size:64" json:"expected_answer_length,omitempty"`
	GradingCriteria      datatypes.JSONSlice[string] `json:"grading_criteria,omitempty"`
	SolvedCount          uint64                      `gorm:"not null;default:0" json:"solved_count"`
	Options              []ProblemOption             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}

// IsSubjective reports whether the problem requires AI grading.
func (p Problem) IsSubjective() bool {
	return p.Type == ProblemTypeSubjective
}

// CorrectOptionIDs returns the set of correct option identifiers.
func (p Problem) CorrectOptionIDs() map[uint]struct{} {
	ids := make(map[uint]struct{})
	for _, option := range p.Options {
		if option.IsCorrect {
			ids[option.ID] = struct{}{}
		}
	}
	return ids
}

// ProblemOption is a single multiple-choice answer option.
type ProblemOption struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProblemID uint   `gorm:"not null;index" json:"problem_id"`
	Content   string `gorm:"type:text;not null" json:"content"`
	IsCorrect bool   `gorm:"not null" json:"-"`
}
