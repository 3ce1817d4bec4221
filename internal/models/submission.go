package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one answer a user handed in for a problem.
//
// Multiple-choice submissions are graded in the request path and only set
// IsCorrect. Subjective submissions stay ungraded until the grading scheduler
// applies the AI outcome, which fills Score, IsCorrect, Feedback and
// FeedbackProvidedAt in a single update.
type Submission struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	UserID             uint              `gorm:"not null;index" json:"user_id"`
	ProblemID          uint              `gorm:"not null;index" json:"problem_id"`
	SubmittedAt        time.Time         `gorm:"not null" json:"submitted_at"`
	Duration           int               `gorm:"not null" json:"duration"`
	SubmittedAnswer    string            `gorm:"type:text;not null" json:"submitted_answer"`
	IsCorrect          *bool             `json:"is_correct"`
	Score              *float64          `json:"score"`
	Feedback           string            `gorm:"type:text" json:"feedback"`
	FeedbackProvidedAt *time.Time        `json:"feedback_provided_at"`
	GradingDetails     datatypes.JSONMap `json:"grading_details,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	User               User              `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Problem            Problem           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsGraded reports whether a grading result has been recorded.
func (s Submission) IsGraded() bool {
	return s.IsCorrect != nil
}

// ApplyGradingOutcome records the result of AI grading. It is called exactly
// once per successful grading attempt.
func (s *Submission) ApplyGradingOutcome(score float64, isCorrect bool, feedback string, details datatypes.JSONMap, at time.Time) {
	s.Score = &score
	s.IsCorrect = &isCorrect
	s.Feedback = feedback
	s.GradingDetails = details
	s.FeedbackProvidedAt = &at
}

// ApplyChoiceResult records the outcome of synchronous multiple-choice grading.
func (s *Submission) ApplyChoiceResult(isCorrect bool) {
	s.IsCorrect = &isCorrect
}
