package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizforge/quiz-api/internal/dto"
	"github.com/quizforge/quiz-api/internal/models"
	"github.com/quizforge/quiz-api/internal/repository"
)

// ErrInvalidProblemShape indicates a problem payload whose options or rubric
// do not match its type.
var ErrInvalidProblemShape = errors.New("invalid problem shape")

// ProblemService exposes the problem catalogue.
type ProblemService interface {
	List(ctx context.Context, filter dto.ProblemFilter) (dto.ProblemListResponse, error)
	Get(ctx context.Context, id uint) (dto.ProblemResponse, error)
	Create(ctx context.Context, payload dto.CreateProblemRequest) (dto.ProblemResponse, error)
}

type problemService struct {
	problems  repository.ProblemRepository
	cache     *redis.Client
	ttl       time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProblemService constructs a ProblemService with an optional Redis cache
// for listing pages.
func NewProblemService(problemRepo repository.ProblemRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) ProblemService {
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &problemService{
		problems:  problemRepo,
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		logger:    logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) List(ctx context.Context, filter dto.ProblemFilter) (dto.ProblemListResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.ProblemListResponse{}, err
	}

	repoFilter := repository.ProblemFilter{Page: filter.Page, PageSize: filter.PageSize}
	if filter.Category != nil {
		category := models.ProblemCategory(*filter.Category)
		repoFilter.Category = &category
	}
	if filter.Difficulty != nil {
		difficulty := models.ProblemDifficulty(*filter.Difficulty)
		repoFilter.Difficulty = &difficulty
	}
	if filter.Type != nil {
		problemType := models.ProblemType(*filter.Type)
		repoFilter.Type = &problemType
	}
	if filter.Sort != nil {
		repoFilter.Sort = repository.ProblemSort(*filter.Sort)
	}

	cacheKey := s.cacheKey(repoFilter)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.ProblemListResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return response, nil
			}
		}
	}

	problems, total, err := s.problems.List(ctx, repoFilter)
	if err != nil {
		return dto.ProblemListResponse{}, err
	}

	items := make([]dto.ProblemSummary, 0, len(problems))
	for _, problem := range problems {
		items = append(items, dto.NewProblemSummary(problem))
	}

	page := repoFilter.Page
	if page < 1 {
		page = 1
	}
	pageSize := repoFilter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	response := dto.ProblemListResponse{
		Items:      items,
		Pagination: dto.PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total},
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, s.ttl).Err(); err != nil {
				s.logger.Debug().Err(err).Msg("failed to cache problem listing")
			}
		}
	}

	return response, nil
}

func (s *problemService) Get(ctx context.Context, id uint) (dto.ProblemResponse, error) {
	problem, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}

	return dto.NewProblemResponse(problem), nil
}

// Create stores an admin-authored problem. Multiple-choice problems need at
// least one correct option; subjective problems need a rubric.
func (s *problemService) Create(ctx context.Context, payload dto.CreateProblemRequest) (dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemResponse{}, err
	}

	problemType := models.ProblemType(payload.Type)
	switch problemType {
	case models.ProblemTypeMultipleChoice:
		hasCorrect := false
		for _, option := range payload.Options {
			hasCorrect = hasCorrect || option.IsCorrect
		}
		if len(payload.Options) < 2 || !hasCorrect {
			return dto.ProblemResponse{}, ErrInvalidProblemShape
		}
	case models.ProblemTypeSubjective:
		if len(payload.GradingCriteria) == 0 {
			return dto.ProblemResponse{}, ErrInvalidProblemShape
		}
	}

	problem := models.Problem{
		Title:                payload.Title,
		Question:             payload.Question,
		Category:             models.ProblemCategory(payload.Category),
		Difficulty:           models.ProblemDifficulty(payload.Difficulty),
		Type:                 problemType,
		Provider:             models.ProviderAdmin,
		Status:               models.ProblemStatusActive,
		SampleAnswer:         payload.SampleAnswer,
		ExpectedAnswerLength: payload.ExpectedAnswerLength,
		GradingCriteria:      payload.GradingCriteria,
	}
	for _, option := range payload.Options {
		problem.Options = append(problem.Options, models.ProblemOption{
			Content:   option.Content,
			IsCorrect: option.IsCorrect,
		})
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return dto.ProblemResponse{}, err
	}

	s.logger.Info().Uint("problem_id", problem.ID).Str("type", payload.Type).Msg("problem created")
	return dto.NewProblemResponse(problem), nil
}

func (s *problemService) cacheKey(filter repository.ProblemFilter) string {
	category, difficulty, problemType := "", "", ""
	if filter.Category != nil {
		category = string(*filter.Category)
	}
	if filter.Difficulty != nil {
		difficulty = string(*filter.Difficulty)
	}
	if filter.Type != nil {
		problemType = string(*filter.Type)
	}

	return fmt.Sprintf("problems:list:%s:%s:%s:%s:%d:%d", category, difficulty, problemType, filter.Sort.OrDefault(), filter.Page, filter.PageSize)
}
