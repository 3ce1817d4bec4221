package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGradingResponseAveragesScores(t *testing.T) {
	content := `{
		"feedback": "Good grasp of the fundamentals.",
		"criteriaEvaluation": [
			{"criteria": "mentions SYN", "score": 80, "feedback": "covered"},
			{"criteria": "mentions ACK", "score": 55, "feedback": "only implied"}
		]
	}`

	result, err := parseGradingResponse(content)
	require.NoError(t, err)
	require.Equal(t, 67.5, result.Score)
	require.True(t, result.IsCorrect)

	require.Contains(t, result.Feedback, "# Overall result (67.50 points)")
	require.Contains(t, result.Feedback, "Good grasp of the fundamentals.")
	require.Contains(t, result.Feedback, "## 1. mentions SYN (80 points)")
	require.Contains(t, result.Feedback, "## 2. mentions ACK (55 points)")

	scores, ok := result.Details["criteria_scores"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, 80.0, scores["mentions SYN"])
}

func TestParseGradingResponseRoundsToTwoDecimals(t *testing.T) {
	content := `{
		"feedback": "ok",
		"criteriaEvaluation": [
			{"criteria": "a", "score": 70, "feedback": "x"},
			{"criteria": "b", "score": 70, "feedback": "y"},
			{"criteria": "c", "score": 71, "feedback": "z"}
		]
	}`

	result, err := parseGradingResponse(content)
	require.NoError(t, err)
	require.Equal(t, 70.33, result.Score)
}

func TestParseGradingResponseBelowThresholdIsIncorrect(t *testing.T) {
	content := `{
		"feedback": "Major gaps.",
		"criteriaEvaluation": [
			{"criteria": "a", "score": 59, "feedback": "x"},
			{"criteria": "b", "score": 60, "feedback": "y"}
		]
	}`

	result, err := parseGradingResponse(content)
	require.NoError(t, err)
	require.Equal(t, 59.5, result.Score)
	require.False(t, result.IsCorrect)
}

func TestParseGradingResponseExactThresholdPasses(t *testing.T) {
	content := `{
		"feedback": "borderline",
		"criteriaEvaluation": [{"criteria": "a", "score": 60, "feedback": "x"}]
	}`

	result, err := parseGradingResponse(content)
	require.NoError(t, err)
	require.True(t, result.IsCorrect)
}

func TestParseGradingResponseStripsCodeFence(t *testing.T) {
	content := "```json\n" + `{"feedback": "ok", "criteriaEvaluation": [{"criteria": "a", "score": 90, "feedback": "x"}]}` + "\n```"

	result, err := parseGradingResponse(content)
	require.NoError(t, err)
	require.Equal(t, 90.0, result.Score)
}

func TestParseGradingResponseRejectsMissingCriteria(t *testing.T) {
	_, err := parseGradingResponse(`{"feedback": "ok", "criteriaEvaluation": []}`)
	require.Error(t, err)
}

func TestParseGradingResponseRejectsScoreOutOfRange(t *testing.T) {
	_, err := parseGradingResponse(`{"feedback": "ok", "criteriaEvaluation": [{"criteria": "a", "score": 130, "feedback": "x"}]}`)
	require.Error(t, err)
}

func TestParseGradingResponseRejectsNonJSON(t *testing.T) {
	_, err := parseGradingResponse("the answer deserves a 90")
	require.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	require.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	require.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}

func TestBuildGradingPromptNumbersCriteria(t *testing.T) {
	prompt := buildGradingPrompt(GradingRequest{
		ProblemTitle:    "TCP Handshake",
		ProblemQuestion: "Explain it.",
		GradingCriteria: []string{"mentions SYN", "mentions ACK"},
		SampleAnswer:    "SYN, SYN-ACK, ACK",
		SubmittedAnswer: "client sends SYN first",
	})

	require.Contains(t, prompt, "1. mentions SYN")
	require.Contains(t, prompt, "2. mentions ACK")
	require.Contains(t, prompt, "## Sample answer")
	require.Contains(t, prompt, "client sends SYN first")
}

func TestBuildGradingPromptOmitsEmptySampleAnswer(t *testing.T) {
	prompt := buildGradingPrompt(GradingRequest{
		ProblemTitle:    "T",
		ProblemQuestion: "Q",
		GradingCriteria: []string{"c"},
		SubmittedAnswer: "a",
	})

	require.False(t, strings.Contains(prompt, "## Sample answer"))
}

func TestNewOpenAIClientRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	require.Error(t, err)
}

func TestNewOpenAIClientDefaults(t *testing.T) {
	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", client.cfg.Model)
	require.Equal(t, 1024, client.cfg.MaxTokens)
}
