package grading

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quizforge/quiz-api/internal/models"
	"github.com/quizforge/quiz-api/pkg/ai"
)

type fakeStore struct {
	mu          sync.Mutex
	submissions map[uint]models.Submission
	saveErr     error
	findErr     error
	firstSolves []uint
}

func newFakeStore(submissions ...models.Submission) *fakeStore {
	store := &fakeStore{submissions: make(map[uint]models.Submission)}
	for _, submission := range submissions {
		store.submissions[submission.ID] = submission
	}
	return store
}

func (f *fakeStore) FindByID(_ context.Context, id uint) (models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return models.Submission{}, f.findErr
	}
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeStore) Save(_ context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeStore) FirstSolve(_ context.Context, _, problemID, _ uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.firstSolves = append(f.firstSolves, problemID)
	return true, nil
}

func (f *fakeStore) get(t *testing.T, id uint) models.Submission {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	submission, ok := f.submissions[id]
	require.True(t, ok)
	return submission
}

type fakeGrader struct {
	mu     sync.Mutex
	result ai.GradingResult
	err    error
	calls  []uint
}

func (f *fakeGrader) GradeSubjective(_ context.Context, req ai.GradingRequest) (ai.GradingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.SubmissionID)
	if f.err != nil {
		return ai.GradingResult{}, f.err
	}
	return f.result, nil
}

func newTestScheduler(store SubmissionStore, grader ai.Grader) (*Scheduler, *Queue) {
	queue := NewQueue()
	scheduler := NewScheduler(queue, store, grader, SchedulerConfig{}, zerolog.New(io.Discard))
	return scheduler, queue
}

func TestSchedulerTickAppliesGradingResult(t *testing.T) {
	store := newFakeStore(models.Submission{ID: 1, UserID: 5, ProblemID: 9, SubmittedAnswer: "answer"})
	grader := &fakeGrader{result: ai.GradingResult{Score: 87.5, IsCorrect: true, Feedback: "well done"}}
	scheduler, queue := newTestScheduler(store, grader)

	queue.Enqueue(Snapshot{SubmissionID: 1, UserID: 5, ProblemID: 9, SubmittedAnswer: "answer"})
	scheduler.Tick(context.Background())

	require.Equal(t, []uint{1}, grader.calls)

	graded := store.get(t, 1)
	require.True(t, graded.IsGraded())
	require.NotNil(t, graded.Score)
	require.Equal(t, 87.5, *graded.Score)
	require.True(t, *graded.IsCorrect)
	require.Equal(t, "well done", graded.Feedback)
	require.NotNil(t, graded.FeedbackProvidedAt)

	require.Equal(t, []uint{9}, store.firstSolves, "correct result should record the solve")
	require.True(t, queue.IsEmpty())
}

func TestSchedulerTickSkipsFirstSolveWhenIncorrect(t *testing.T) {
	store := newFakeStore(models.Submission{ID: 2, UserID: 5, ProblemID: 9})
	grader := &fakeGrader{result: ai.GradingResult{Score: 30, IsCorrect: false, Feedback: "missing detail"}}
	scheduler, queue := newTestScheduler(store, grader)

	queue.Enqueue(Snapshot{SubmissionID: 2, UserID: 5, ProblemID: 9})
	scheduler.Tick(context.Background())

	require.Empty(t, store.firstSolves)
	graded := store.get(t, 2)
	require.True(t, graded.IsGraded())
	require.False(t, *graded.IsCorrect)
}

func TestSchedulerGradingFailureRequeuesElevated(t *testing.T) {
	store := newFakeStore(models.Submission{ID: 3, UserID: 1, ProblemID: 1})
	grader := &fakeGrader{err: errors.New("model unavailable")}
	scheduler, queue := newTestScheduler(store, grader)

	queue.Enqueue(Snapshot{SubmissionID: 10})
	queue.Enqueue(Snapshot{SubmissionID: 3})
	scheduler.Tick(context.Background())

	// The failed snapshot jumps ahead of the older normal-priority one.
	next, ok := queue.Dequeue()
	require.True(t, ok)
	require.Equal(t, uint(10), next.SubmissionID)

	// The stored submission is untouched by the failed attempt.
	untouched := store.get(t, 3)
	require.False(t, untouched.IsGraded())
}

func TestSchedulerDropsResultWhenSubmissionMissing(t *testing.T) {
	store := newFakeStore()
	grader := &fakeGrader{result: ai.GradingResult{Score: 90, IsCorrect: true}}
	scheduler, queue := newTestScheduler(store, grader)

	queue.Enqueue(Snapshot{SubmissionID: 42})
	scheduler.Tick(context.Background())

	require.True(t, queue.IsEmpty(), "missing submission must not be retried")
	require.Empty(t, store.firstSolves)
}

func TestSchedulerDropsResultOnStoreWriteFailure(t *testing.T) {
	store := newFakeStore(models.Submission{ID: 4})
	store.saveErr = errors.New("disk full")
	grader := &fakeGrader{result: ai.GradingResult{Score: 70, IsCorrect: true}}
	scheduler, queue := newTestScheduler(store, grader)

	queue.Enqueue(Snapshot{SubmissionID: 4})
	scheduler.Tick(context.Background())

	require.True(t, queue.IsEmpty(), "write failures are dropped, not re-graded")
}

func TestSchedulerTickEmptyQueueIsNoOp(t *testing.T) {
	store := newFakeStore()
	grader := &fakeGrader{}
	scheduler, _ := newTestScheduler(store, grader)

	scheduler.Tick(context.Background())

	require.Empty(t, grader.calls)
}

type panickingGrader struct{}

func (panickingGrader) GradeSubjective(context.Context, ai.GradingRequest) (ai.GradingResult, error) {
	panic("boom")
}

func TestSchedulerTickRecoversFromPanic(t *testing.T) {
	store := newFakeStore()
	scheduler, queue := newTestScheduler(store, panickingGrader{})

	queue.Enqueue(Snapshot{SubmissionID: 1})
	require.NotPanics(t, func() {
		scheduler.Tick(context.Background())
	})

	// Next tick still runs normally.
	scheduler.Tick(context.Background())
}

type blockingGrader struct {
	started chan struct{}
	release chan struct{}
	result  ai.GradingResult
}

func (g *blockingGrader) GradeSubjective(context.Context, ai.GradingRequest) (ai.GradingResult, error) {
	close(g.started)
	<-g.release
	return g.result, nil
}

func TestSchedulerStopDrainsInFlightTick(t *testing.T) {
	store := newFakeStore(models.Submission{ID: 7, UserID: 2, ProblemID: 3})
	grader := &blockingGrader{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  ai.GradingResult{Score: 100, IsCorrect: true},
	}
	queue := NewQueue()
	scheduler := NewScheduler(queue, store, grader, SchedulerConfig{Interval: time.Millisecond}, zerolog.New(io.Discard))

	queue.Enqueue(Snapshot{SubmissionID: 7, UserID: 2, ProblemID: 3})
	scheduler.Start(context.Background())

	<-grader.started
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(grader.release)
	}()
	scheduler.Stop()

	require.True(t, store.get(t, 7).IsGraded(), "stop must wait for the in-flight result to be applied")
}

func TestSchedulerStartStop(t *testing.T) {
	store := newFakeStore()
	grader := &fakeGrader{}
	scheduler, _ := newTestScheduler(store, grader)

	scheduler.Start(context.Background())
	scheduler.Stop()
}
