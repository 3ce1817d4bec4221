package grading

import "github.com/quizforge/quiz-api/internal/models"

// Snapshot is an immutable, fully materialized copy of everything the AI
// grader needs for one subjective submission.
//
// It is built in the request path, before the work crosses the async
// boundary, and holds plain values only: the scheduler consumes it outside
// any request-scoped transaction, where touching lazily loaded relations
// would be unsafe. Queue identity is the submission ID.
type Snapshot struct {
	SubmissionID    uint
	UserID          uint
	ProblemID       uint
	ProblemTitle    string
	ProblemQuestion string
	GradingCriteria []string
	SampleAnswer    string
	SubmittedAnswer string
}

// NewSnapshot detaches the grading inputs from a submission whose Problem
// association is loaded. The rubric slice is copied so later changes to the
// entity cannot leak into queued work.
func NewSnapshot(submission models.Submission) Snapshot {
	problem := submission.Problem

	criteria := make([]string, len(problem.GradingCriteria))
	copy(criteria, problem.GradingCriteria)

	return Snapshot{
		SubmissionID:    submission.ID,
		UserID:          submission.UserID,
		ProblemID:       problem.ID,
		ProblemTitle:    problem.Title,
		ProblemQuestion: problem.Question,
		GradingCriteria: criteria,
		SampleAnswer:    problem.SampleAnswer,
		SubmittedAnswer: submission.SubmittedAnswer,
	}
}
