package dto

import (
	"time"

	"github.com/quizforge/quiz-api/internal/models"
)

// SubmitAnswerRequest is the payload for answering a problem. For
// multiple-choice problems Answer holds comma-separated option IDs; for
// subjective problems it holds free text.
type SubmitAnswerRequest struct {
	Answer   string `json:"answer" validate:"required"`
	Duration int    `json:"duration" validate:"gte=0"`
}

// Submission grading states reported to clients.
const (
	// GradingStatusPending means the answer is queued for AI grading.
	GradingStatusPending = "pending"
	// GradingStatusGraded means a grading result is available.
	GradingStatusGraded = "graded"
)

// SubmissionResponse is returned after submitting and when polling a
// submission's grading state.
type SubmissionResponse struct {
	ID                 uint       `json:"id"`
	ProblemID          uint       `json:"problem_id"`
	Status             string     `json:"status"`
	IsCorrect          *bool      `json:"is_correct"`
	Score              *float64   `json:"score"`
	Feedback           string     `json:"feedback,omitempty"`
	FeedbackProvidedAt *time.Time `json:"feedback_provided_at,omitempty"`
	SubmittedAt        time.Time  `json:"submitted_at"`
	Duration           int        `json:"duration"`
}

// NewSubmissionResponse converts a submission model into its API shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	status := GradingStatusPending
	if submission.IsGraded() {
		status = GradingStatusGraded
	}

	return SubmissionResponse{
		ID:                 submission.ID,
		ProblemID:          submission.ProblemID,
		Status:             status,
		IsCorrect:          submission.IsCorrect,
		Score:              submission.Score,
		Feedback:           submission.Feedback,
		FeedbackProvidedAt: submission.FeedbackProvidedAt,
		SubmittedAt:        submission.SubmittedAt,
		Duration:           submission.Duration,
	}
}

// SubmissionHistoryFilter describes query string filters for history listings.
type SubmissionHistoryFilter struct {
	Category   *string `query:"category"`
	Difficulty *string `query:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Type       *string `query:"type" validate:"omitempty,oneof=multiple_choice subjective"`
	IsCorrect  *bool   `query:"is_correct"`
	Page       int     `query:"page"`
	PageSize   int     `query:"page_size"`
}

// SubmissionHistoryItem summarizes one past submission.
type SubmissionHistoryItem struct {
	ID           uint      `json:"id"`
	ProblemID    uint      `json:"problem_id"`
	ProblemTitle string    `json:"problem_title"`
	Category     string    `json:"category"`
	Difficulty   string    `json:"difficulty"`
	Type         string    `json:"type"`
	IsCorrect    *bool     `json:"is_correct"`
	Score        *float64  `json:"score"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// SubmissionHistoryResponse is a page of submission history.
type SubmissionHistoryResponse struct {
	Items      []SubmissionHistoryItem `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}

// NewSubmissionHistoryItem converts a submission with its Problem loaded.
func NewSubmissionHistoryItem(submission models.Submission) SubmissionHistoryItem {
	return SubmissionHistoryItem{
		ID:           submission.ID,
		ProblemID:    submission.ProblemID,
		ProblemTitle: submission.Problem.Title,
		Category:     string(submission.Problem.Category),
		Difficulty:   string(submission.Problem.Difficulty),
		Type:         string(submission.Problem.Type),
		IsCorrect:    submission.IsCorrect,
		Score:        submission.Score,
		SubmittedAt:  submission.SubmittedAt,
	}
}
