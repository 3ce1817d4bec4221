package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PassingScore is the average rubric score from which a subjective answer
// counts as correct.
const PassingScore = 60.0

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quiz",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI requests",
	}, []string{"model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiz",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed AI requests",
	}, []string{"model", "operation"})
)

// OpenAIConfig defines configuration options for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIClient implements Grader and ProblemGenerator against the OpenAI
// chat completion API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a client using the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/quizforge/quiz-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// GradeSubjective asks the model to grade the answer against the rubric and
// folds the per-criterion scores into a single result.
func (c *OpenAIClient) GradeSubjective(parent context.Context, req GradingRequest) (GradingResult, error) {
	ctx, span := c.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Int64("submission_id", int64(req.SubmissionID)),
	))
	defer span.End()

	content, err := c.complete(ctx, "grade", gradingSystemPrompt, buildGradingPrompt(req))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, err
	}

	result, err := parseGradingResponse(content)
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "grade").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GradingResult{}, err
	}

	return result, nil
}

// GenerateMultipleChoice drafts a multiple-choice problem for the given
// category and difficulty.
func (c *OpenAIClient) GenerateMultipleChoice(parent context.Context, category, difficulty string) (GeneratedProblem, error) {
	ctx, span := c.tracer.Start(parent, "openai.generate_multiple_choice", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	content, err := c.complete(ctx, "generate", generationSystemPrompt, buildMultipleChoicePrompt(category, difficulty))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GeneratedProblem{}, err
	}

	var payload struct {
		Title    string `json:"title"`
		Question string `json:"question"`
		Options  []struct {
			Content   string `json:"content"`
			IsCorrect bool   `json:"isCorrect"`
		} `json:"options"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "generate").Inc()
		span.RecordError(err)
		return GeneratedProblem{}, fmt.Errorf("parse generated problem: %w", err)
	}

	if payload.Title == "" || payload.Question == "" || len(payload.Options) == 0 {
		return GeneratedProblem{}, fmt.Errorf("generated problem is incomplete")
	}

	problem := GeneratedProblem{Title: payload.Title, Question: payload.Question}
	hasCorrect := false
	for _, option := range payload.Options {
		problem.Options = append(problem.Options, GeneratedOption{Content: option.Content, IsCorrect: option.IsCorrect})
		hasCorrect = hasCorrect || option.IsCorrect
	}
	if !hasCorrect {
		return GeneratedProblem{}, fmt.Errorf("generated problem has no correct option")
	}

	return problem, nil
}

// GenerateSubjective drafts an open-ended problem with a rubric and sample
// answer.
func (c *OpenAIClient) GenerateSubjective(parent context.Context, category, difficulty string) (GeneratedProblem, error) {
	ctx, span := c.tracer.Start(parent, "openai.generate_subjective", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
	))
	defer span.End()

	content, err := c.complete(ctx, "generate", generationSystemPrompt, buildSubjectivePrompt(category, difficulty))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GeneratedProblem{}, err
	}

	var payload struct {
		Title            string   `json:"title"`
		Question         string   `json:"question"`
		ExpectedLength   string   `json:"expectedLength"`
		SampleAnswer     string   `json:"sampleAnswer"`
		EvaluationPoints []string `json:"evaluationPoints"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &payload); err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, "generate").Inc()
		span.RecordError(err)
		return GeneratedProblem{}, fmt.Errorf("parse generated problem: %w", err)
	}

	if payload.Title == "" || payload.Question == "" || len(payload.EvaluationPoints) == 0 {
		return GeneratedProblem{}, fmt.Errorf("generated problem is incomplete")
	}

	return GeneratedProblem{
		Title:                payload.Title,
		Question:             payload.Question,
		SampleAnswer:         payload.SampleAnswer,
		ExpectedAnswerLength: payload.ExpectedLength,
		GradingCriteria:      payload.EvaluationPoints,
	}, nil
}

func (c *OpenAIClient) complete(ctx context.Context, operation, system, user string) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	aiDuration.WithLabelValues(c.cfg.Model, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		return "", fmt.Errorf("openai %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		aiFailures.WithLabelValues(c.cfg.Model, operation).Inc()
		return "", fmt.Errorf("no choices returned from openai")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// parseGradingResponse validates the model reply, averages the per-criterion
// scores (rounded to two decimals) and assembles the markdown feedback shown
// to the user.
func parseGradingResponse(content string) (GradingResult, error) {
	content = stripCodeFence(content)

	if err := validateGradingResponse(content); err != nil {
		return GradingResult{}, err
	}

	var payload struct {
		Feedback           string `json:"feedback"`
		CriteriaEvaluation []struct {
			Criteria string  `json:"criteria"`
			Score    float64 `json:"score"`
			Feedback string  `json:"feedback"`
		} `json:"criteriaEvaluation"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return GradingResult{}, fmt.Errorf("parse grading json: %w", err)
	}

	total := 0.0
	criteriaScores := make(map[string]interface{}, len(payload.CriteriaEvaluation))
	feedback := strings.Builder{}

	for i, evaluation := range payload.CriteriaEvaluation {
		total += evaluation.Score
		criteriaScores[evaluation.Criteria] = evaluation.Score
		fmt.Fprintf(&feedback, "## %d. %s (%.0f points)\n\n%s\n\n", i+1, evaluation.Criteria, evaluation.Score, evaluation.Feedback)
	}

	average := math.Round(total/float64(len(payload.CriteriaEvaluation))*100) / 100

	return GradingResult{
		Score:     average,
		IsCorrect: average >= PassingScore,
		Feedback:  strings.TrimSpace(fmt.Sprintf("# Overall result (%.2f points)\n\n%s\n\n%s", average, payload.Feedback, feedback.String())),
		Details:   map[string]interface{}{"criteria_scores": criteriaScores},
	}, nil
}
