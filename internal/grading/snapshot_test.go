package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quizforge/quiz-api/internal/models"
)

func TestNewSnapshotDetachesFromEntities(t *testing.T) {
	submission := models.Submission{
		ID:              7,
		UserID:          3,
		SubmittedAnswer: "TCP uses a three-way handshake",
		Problem: models.Problem{
			ID:              11,
			Title:           "TCP Handshake",
			Question:        "Explain connection establishment in TCP.",
			SampleAnswer:    "SYN, SYN-ACK, ACK",
			GradingCriteria: []string{"mentions SYN", "mentions ACK"},
		},
	}

	snapshot := NewSnapshot(submission)

	require.Equal(t, uint(7), snapshot.SubmissionID)
	require.Equal(t, uint(3), snapshot.UserID)
	require.Equal(t, uint(11), snapshot.ProblemID)
	require.Equal(t, []string{"mentions SYN", "mentions ACK"}, snapshot.GradingCriteria)

	// Mutating the entity afterwards must not leak into the queued snapshot.
	submission.Problem.GradingCriteria[0] = "changed"
	require.Equal(t, "mentions SYN", snapshot.GradingCriteria[0])
}
