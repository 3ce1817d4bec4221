package dto

import (
	"time"

	"github.com/quizforge/quiz-api/internal/models"
)

// PaginationMeta describes the page window of a list response.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
}

// ProblemFilter describes query string filters for problem listings. Sort
// defaults to most_solved when omitted.
type ProblemFilter struct {
	Category   *string `query:"category"`
	Difficulty *string `query:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Type       *string `query:"type" validate:"omitempty,oneof=multiple_choice subjective"`
	Sort       *string `query:"sort" validate:"omitempty,oneof=latest oldest most_solved least_solved"`
	Page       int     `query:"page"`
	PageSize   int     `query:"page_size"`
}

// ProblemSummary is the listing shape; it never exposes answers or rubrics.
type ProblemSummary struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	Type        string    `json:"type"`
	SolvedCount uint64    `json:"solved_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProblemListResponse is a page of problem summaries.
type ProblemListResponse struct {
	Items      []ProblemSummary `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// ProblemOptionResponse is an answer option without its correctness flag.
type ProblemOptionResponse struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

// ProblemResponse is the detail shape served when a user opens a problem.
// Correct options, rubric and sample answer stay hidden.
type ProblemResponse struct {
	ID                   uint                    `json:"id"`
	Title                string                  `json:"title"`
	Question             string                  `json:"question"`
	Category             string                  `json:"category"`
	Difficulty           string                  `json:"difficulty"`
	Type                 string                  `json:"type"`
	ExpectedAnswerLength string                  `json:"expected_answer_length,omitempty"`
	SolvedCount          uint64                  `json:"solved_count"`
	Options              []ProblemOptionResponse `json:"options,omitempty"`
}

// CreateProblemOptionRequest is one answer option of a new multiple-choice
// problem.
type CreateProblemOptionRequest struct {
	Content   string `json:"content" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateProblemRequest is the admin payload for authoring a problem.
type CreateProblemRequest struct {
	Title                string                       `json:"title" validate:"required,max=255"`
	Question             string                       `json:"question" validate:"required"`
	Category             string                       `json:"category" validate:"required"`
	Difficulty           string                       `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Type                 string                       `json:"type" validate:"required,oneof=multiple_choice subjective"`
	SampleAnswer         string                       `json:"sample_answer"`
	ExpectedAnswerLength string                       `json:"expected_answer_length"`
	GradingCriteria      []string                     `json:"grading_criteria"`
	Options              []CreateProblemOptionRequest `json:"options" validate:"dive"`
}

// NewProblemSummary converts a problem model into its listing shape.
func NewProblemSummary(problem models.Problem) ProblemSummary {
	return ProblemSummary{
		ID:          problem.ID,
		Title:       problem.Title,
		Category:    string(problem.Category),
		Difficulty:  string(problem.Difficulty),
		Type:        string(problem.Type),
		SolvedCount: problem.SolvedCount,
		CreatedAt:   problem.CreatedAt,
	}
}

// NewProblemResponse converts a problem model into its detail shape.
func NewProblemResponse(problem models.Problem) ProblemResponse {
	response := ProblemResponse{
		ID:                   problem.ID,
		Title:                problem.Title,
		Question:             problem.Question,
		Category:             string(problem.Category),
		Difficulty:           string(problem.Difficulty),
		Type:                 string(problem.Type),
		ExpectedAnswerLength: problem.ExpectedAnswerLength,
		SolvedCount:          problem.SolvedCount,
	}

	for _, option := range problem.Options {
		response.Options = append(response.Options, ProblemOptionResponse{ID: option.ID, Content: option.Content})
	}

	return response
}
