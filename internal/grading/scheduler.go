package grading

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/quizforge/quiz-api/internal/models"
	"github.com/quizforge/quiz-api/pkg/ai"
)

// SubmissionStore is the narrow persistence surface the scheduler needs.
// FindByID must return gorm.ErrRecordNotFound (possibly wrapped) when the
// submission no longer exists.
type SubmissionStore interface {
	FindByID(ctx context.Context, id uint) (models.Submission, error)
	Save(ctx context.Context, submission *models.Submission) error
	// FirstSolve transactionally increments the problem's solved counter iff
	// the user has no correct submission for the problem other than the one
	// identified by submissionID. It reports whether the counter moved.
	FirstSolve(ctx context.Context, userID, problemID, submissionID uint) (bool, error)
}

// SchedulerConfig carries the scheduler's timing knobs.
type SchedulerConfig struct {
	// Interval between ticks. Each tick processes at most one snapshot.
	Interval time.Duration
	// GradingTimeout bounds a single AI grading call. A timeout counts as a
	// grading failure and takes the retry path.
	GradingTimeout time.Duration
}

// Scheduler drains the grading queue one snapshot per tick: grade, apply the
// outcome to the stored submission, and requeue the same snapshot at elevated
// priority when grading fails. It carries no state between ticks beyond the
// queue and the store.
type Scheduler struct {
	queue  *Queue
	store  SubmissionStore
	grader ai.Grader
	cfg    SchedulerConfig
	tracer trace.Tracer
	logger zerolog.Logger
	now    func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler constructs a grading scheduler. Interval defaults to 6s and
// GradingTimeout to 60s when unset.
func NewScheduler(queue *Queue, store SubmissionStore, grader ai.Grader, cfg SchedulerConfig, logger zerolog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Second
	}
	if cfg.GradingTimeout <= 0 {
		cfg.GradingTimeout = 60 * time.Second
	}

	return &Scheduler{
		queue:  queue,
		store:  store,
		grader: grader,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/quizforge/quiz-api/internal/grading"),
		logger: logger.With().Str("component", "grading_scheduler").Logger(),
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the single consumer goroutine. Ticks never overlap: the next
// tick fires only after the previous one returned.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.logger.Info().Dur("interval", s.cfg.Interval).Msg("grading scheduler started")

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Stop halts the consumer goroutine and waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// Tick processes at most one queued snapshot. All failures are contained
// here; nothing escapes to stop future ticks.
func (s *Scheduler) Tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("grading tick panicked")
		}
	}()

	snapshot, ok := s.queue.Dequeue()
	if !ok {
		return
	}

	s.grade(ctx, snapshot)
}

func (s *Scheduler) grade(ctx context.Context, snapshot Snapshot) {
	ctx, span := s.tracer.Start(ctx, "grading.tick", trace.WithAttributes(
		attribute.Int64("grading.submission_id", int64(snapshot.SubmissionID)),
	))
	defer span.End()

	gradeCtx, cancel := context.WithTimeout(ctx, s.cfg.GradingTimeout)
	defer cancel()

	result, err := s.grader.GradeSubjective(gradeCtx, ai.GradingRequest{
		SubmissionID:    snapshot.SubmissionID,
		ProblemTitle:    snapshot.ProblemTitle,
		ProblemQuestion: snapshot.ProblemQuestion,
		GradingCriteria: snapshot.GradingCriteria,
		SampleAnswer:    snapshot.SampleAnswer,
		SubmittedAnswer: snapshot.SubmittedAnswer,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "grading_failed")
		retriesTotal.Inc()
		s.logger.Warn().Err(err).Uint("submission_id", snapshot.SubmissionID).Msg("grading failed, requeueing at elevated priority")
		s.queue.Prioritize(snapshot)
		return
	}

	s.apply(ctx, span, snapshot, result)
}

// apply persists a grading outcome exactly once. Store failures here are
// logged and the snapshot is not requeued: retrying cannot fix a missing
// submission, and re-grading a write failure would spend another AI call on a
// result we already have.
func (s *Scheduler) apply(ctx context.Context, span trace.Span, snapshot Snapshot, result ai.GradingResult) {
	submission, err := s.store.FindByID(ctx, snapshot.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			droppedTotal.WithLabelValues("missing_submission").Inc()
			s.logger.Error().Uint("submission_id", snapshot.SubmissionID).Msg("graded submission no longer exists, dropping result")
		} else {
			droppedTotal.WithLabelValues("store_read").Inc()
			s.logger.Error().Err(err).Uint("submission_id", snapshot.SubmissionID).Msg("failed to reload submission, dropping result")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply_failed")
		return
	}

	submission.ApplyGradingOutcome(result.Score, result.IsCorrect, result.Feedback, datatypes.JSONMap(result.Details), s.now())
	if err := s.store.Save(ctx, &submission); err != nil {
		droppedTotal.WithLabelValues("store_write").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply_failed")
		s.logger.Error().Err(err).Uint("submission_id", snapshot.SubmissionID).Msg("failed to persist grading result")
		return
	}

	if result.IsCorrect {
		if _, err := s.store.FirstSolve(ctx, snapshot.UserID, snapshot.ProblemID, snapshot.SubmissionID); err != nil {
			s.logger.Error().Err(err).Uint("problem_id", snapshot.ProblemID).Msg("failed to record first solve")
		}
	}

	gradedTotal.Inc()
	s.logger.Info().
		Uint("submission_id", snapshot.SubmissionID).
		Float64("score", result.Score).
		Bool("is_correct", result.IsCorrect).
		Msg("submission graded")
}
