package ai

import "context"

// GradingRequest carries the detached inputs for grading one subjective
// answer. GradingCriteria order is significant: items are numbered in the
// prompt and echoed back per criterion.
type GradingRequest struct {
	SubmissionID    uint
	ProblemTitle    string
	ProblemQuestion string
	GradingCriteria []string
	SampleAnswer    string
	SubmittedAnswer string
}

// GradingResult is the structured outcome of one grading attempt.
type GradingResult struct {
	Score     float64                `json:"score"`
	IsCorrect bool                   `json:"is_correct"`
	Feedback  string                 `json:"feedback"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Grader describes an AI model capable of grading subjective answers.
type Grader interface {
	GradeSubjective(ctx context.Context, req GradingRequest) (GradingResult, error)
}

// GeneratedOption is one answer option of a generated multiple-choice problem.
type GeneratedOption struct {
	Content   string
	IsCorrect bool
}

// GeneratedProblem is the model's draft of a new quiz problem.
type GeneratedProblem struct {
	Title                string
	Question             string
	Options              []GeneratedOption
	SampleAnswer         string
	ExpectedAnswerLength string
	GradingCriteria      []string
}

// ProblemGenerator describes an AI model capable of drafting quiz problems.
type ProblemGenerator interface {
	GenerateMultipleChoice(ctx context.Context, category, difficulty string) (GeneratedProblem, error)
	GenerateSubjective(ctx context.Context, category, difficulty string) (GeneratedProblem, error)
}
