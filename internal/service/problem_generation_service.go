package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizforge/quiz-api/internal/models"
	"github.com/quizforge/quiz-api/internal/repository"
	"github.com/quizforge/quiz-api/pkg/ai"
)

// ProblemGenerationService periodically drafts new problems through the AI
// generator and stores them as active AI-provided problems.
type ProblemGenerationService struct {
	generator ai.ProblemGenerator
	problems  repository.ProblemRepository
	interval  time.Duration
	logger    zerolog.Logger
	rng       *rand.Rand
}

// NewProblemGenerationService constructs the generation loop. Interval
// defaults to one minute when non-positive.
func NewProblemGenerationService(generator ai.ProblemGenerator, problemRepo repository.ProblemRepository, interval time.Duration, logger zerolog.Logger) *ProblemGenerationService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &ProblemGenerationService{
		generator: generator,
		problems:  problemRepo,
		interval:  interval,
		logger:    logger.With().Str("component", "problem_generation").Logger(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start runs the generation ticker until ctx is cancelled. Generation
// failures are logged and the loop continues.
func (s *ProblemGenerationService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info().Dur("interval", s.interval).Msg("problem generation started")

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("problem generation stopped")
				return
			case <-ticker.C:
				if err := s.GenerateOne(ctx); err != nil {
					s.logger.Error().Err(err).Msg("problem generation failed")
				}
			}
		}
	}()
}

// GenerateOne drafts a single problem with a random category, difficulty and
// type, then persists it.
func (s *ProblemGenerationService) GenerateOne(ctx context.Context) error {
	categories := models.Categories()
	difficulties := models.Difficulties()

	category := categories[s.rng.Intn(len(categories))]
	difficulty := difficulties[s.rng.Intn(len(difficulties))]
	subjective := s.rng.Intn(2) == 0

	var (
		generated   ai.GeneratedProblem
		problemType models.ProblemType
		err         error
	)
	if subjective {
		problemType = models.ProblemTypeSubjective
		generated, err = s.generator.GenerateSubjective(ctx, string(category), string(difficulty))
	} else {
		problemType = models.ProblemTypeMultipleChoice
		generated, err = s.generator.GenerateMultipleChoice(ctx, string(category), string(difficulty))
	}
	if err != nil {
		return err
	}

	problem := models.Problem{
		Title:                generated.Title,
		Question:             generated.Question,
		Category:             category,
		Difficulty:           difficulty,
		Type:                 problemType,
		Provider:             models.ProviderAI,
		Status:               models.ProblemStatusActive,
		SampleAnswer:         generated.SampleAnswer,
		ExpectedAnswerLength: generated.ExpectedAnswerLength,
		GradingCriteria:      generated.GradingCriteria,
	}
	for _, option := range generated.Options {
		problem.Options = append(problem.Options, models.ProblemOption{
			Content:   option.Content,
			IsCorrect: option.IsCorrect,
		})
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return err
	}

	s.logger.Info().
		Uint("problem_id", problem.ID).
		Str("category", string(category)).
		Str("difficulty", string(difficulty)).
		Str("type", string(problemType)).
		Msg("generated new problem")

	return nil
}
