package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizforge/quiz-api/internal/dto"
	"github.com/quizforge/quiz-api/internal/grading"
	"github.com/quizforge/quiz-api/internal/models"
	"github.com/quizforge/quiz-api/internal/repository"
)

// ErrProblemNotFound indicates the requested problem does not exist.
var ErrProblemNotFound = errors.New("problem not found")

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionForbidden indicates the caller does not own the submission.
var ErrSubmissionForbidden = errors.New("forbidden")

// ErrInvalidAnswerFormat indicates a multiple-choice answer that is not a
// comma-separated list of option IDs, or an answer that is empty after
// sanitization.
var ErrInvalidAnswerFormat = errors.New("invalid answer format")

// GradingEnqueuer is the producer side of the grading queue.
type GradingEnqueuer interface {
	Enqueue(snapshot grading.Snapshot)
}

// SubmissionService orchestrates answer submission and history.
type SubmissionService interface {
	Submit(ctx context.Context, userID, problemID uint, payload dto.SubmitAnswerRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id, viewerID uint) (dto.SubmissionResponse, error)
	History(ctx context.Context, userID uint, filter dto.SubmissionHistoryFilter) (dto.SubmissionHistoryResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	problems    repository.ProblemRepository
	queue       GradingEnqueuer
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(subRepo repository.SubmissionRepository, problemRepo repository.ProblemRepository, queue GradingEnqueuer, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		problems:    problemRepo,
		queue:       queue,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Submit stores the answer and grades it: multiple-choice synchronously by
// option comparison, subjective by handing a detached snapshot to the grading
// queue and returning a pending response.
func (s *submissionService) Submit(ctx context.Context, userID, problemID uint, payload dto.SubmitAnswerRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProblemNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	answer := strings.TrimSpace(s.sanitizer.Sanitize(payload.Answer))
	if answer == "" {
		return dto.SubmissionResponse{}, ErrInvalidAnswerFormat
	}

	submission := models.Submission{
		UserID:          userID,
		ProblemID:       problem.ID,
		SubmittedAt:     s.now(),
		Duration:        payload.Duration,
		SubmittedAnswer: answer,
	}

	if problem.IsSubjective() {
		if err := s.submissions.Create(ctx, &submission); err != nil {
			return dto.SubmissionResponse{}, err
		}

		submission.Problem = problem
		s.queue.Enqueue(grading.NewSnapshot(submission))

		s.logger.Info().Uint("submission_id", submission.ID).Msg("subjective submission queued for grading")
		return dto.NewSubmissionResponse(submission), nil
	}

	isCorrect, err := gradeMultipleChoice(problem, answer)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission.ApplyChoiceResult(isCorrect)
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if isCorrect {
		if _, err := s.submissions.FirstSolve(ctx, userID, problem.ID, submission.ID); err != nil {
			s.logger.Error().Err(err).Uint("problem_id", problem.ID).Msg("failed to record first solve")
		}
	}

	return dto.NewSubmissionResponse(submission), nil
}

// Get returns a submission's current grading state for polling.
func (s *submissionService) Get(ctx context.Context, id, viewerID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.UserID != viewerID {
		return dto.SubmissionResponse{}, ErrSubmissionForbidden
	}

	return dto.NewSubmissionResponse(submission), nil
}

// History lists the user's past submissions, newest first.
func (s *submissionService) History(ctx context.Context, userID uint, filter dto.SubmissionHistoryFilter) (dto.SubmissionHistoryResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return dto.SubmissionHistoryResponse{}, err
	}

	repoFilter := repository.SubmissionHistoryFilter{
		IsCorrect: filter.IsCorrect,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}
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

	submissions, total, err := s.submissions.ListByUser(ctx, userID, repoFilter)
	if err != nil {
		return dto.SubmissionHistoryResponse{}, err
	}

	items := make([]dto.SubmissionHistoryItem, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, dto.NewSubmissionHistoryItem(submission))
	}

	page := repoFilter.Page
	if page < 1 {
		page = 1
	}
	pageSize := repoFilter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	return dto.SubmissionHistoryResponse{
		Items:      items,
		Pagination: dto.PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total},
	}, nil
}

// gradeMultipleChoice compares the submitted option-ID set against the
// problem's correct options.
func gradeMultipleChoice(problem models.Problem, answer string) (bool, error) {
	submitted, err := parseChoiceAnswer(answer)
	if err != nil {
		return false, err
	}

	correct := problem.CorrectOptionIDs()
	if len(submitted) != len(correct) {
		return false, nil
	}

	for id := range correct {
		if _, ok := submitted[id]; !ok {
			return false, nil
		}
	}

	return true, nil
}

// parseChoiceAnswer converts a comma-separated option-ID string into a set.
func parseChoiceAnswer(answer string) (map[uint]struct{}, error) {
	ids := make(map[uint]struct{})
	for _, part := range strings.Split(answer, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, ErrInvalidAnswerFormat
		}
		ids[uint(id)] = struct{}{}
	}

	if len(ids) == 0 {
		return nil, ErrInvalidAnswerFormat
	}

	return ids, nil
}
