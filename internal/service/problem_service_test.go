package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/quiz-api/internal/dto"
	"github.com/quizforge/quiz-api/internal/models"
	"github.com/quizforge/quiz-api/pkg/ai"
)

func newTestCache(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, server
}

func newTestProblemService(repo *fakeProblemRepo, cache *redis.Client) ProblemService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewProblemService(repo, cache, time.Minute, validate, zerolog.New(io.Discard))
}

func TestProblemServiceListCachesPages(t *testing.T) {
	repo := newFakeProblemRepo(multipleChoiceProblem(), subjectiveProblem())
	cache, server := newTestCache(t)
	svc := newTestProblemService(repo, cache)

	first, err := svc.List(context.Background(), dto.ProblemFilter{})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.Equal(t, int64(2), first.Pagination.TotalItems)

	require.NotEmpty(t, server.Keys(), "listing should be cached")

	// A problem added after the first call stays invisible while the cached
	// page is fresh.
	extra := subjectiveProblem()
	extra.ID = 3
	extra.Title = "Process scheduling"
	require.NoError(t, repo.Create(context.Background(), &extra))

	cached, err := svc.List(context.Background(), dto.ProblemFilter{})
	require.NoError(t, err)
	require.Len(t, cached.Items, 2)

	server.FastForward(2 * time.Minute)

	refreshed, err := svc.List(context.Background(), dto.ProblemFilter{})
	require.NoError(t, err)
	require.Len(t, refreshed.Items, 3)
}

func TestProblemServiceListWorksWithoutCache(t *testing.T) {
	repo := newFakeProblemRepo(multipleChoiceProblem())
	svc := newTestProblemService(repo, nil)

	response, err := svc.List(context.Background(), dto.ProblemFilter{})
	require.NoError(t, err)
	require.Len(t, response.Items, 1)
}

func TestProblemServiceListSortVariantsCacheSeparately(t *testing.T) {
	repo := newFakeProblemRepo(multipleChoiceProblem())
	cache, server := newTestCache(t)
	svc := newTestProblemService(repo, cache)

	_, err := svc.List(context.Background(), dto.ProblemFilter{})
	require.NoError(t, err)

	sort := "oldest"
	_, err = svc.List(context.Background(), dto.ProblemFilter{Sort: &sort})
	require.NoError(t, err)

	require.Len(t, server.Keys(), 2, "each sort order gets its own cache entry")
}

func TestProblemServiceListRejectsUnknownSort(t *testing.T) {
	svc := newTestProblemService(newFakeProblemRepo(), nil)

	sort := "alphabetical"
	_, err := svc.List(context.Background(), dto.ProblemFilter{Sort: &sort})
	require.Error(t, err)
}

func TestProblemServiceListRejectsInvalidFilter(t *testing.T) {
	repo := newFakeProblemRepo()
	svc := newTestProblemService(repo, nil)

	bad := "impossible"
	_, err := svc.List(context.Background(), dto.ProblemFilter{Difficulty: &bad})
	require.Error(t, err)
}

func TestProblemServiceGetHidesGradingMaterial(t *testing.T) {
	problem := subjectiveProblem()
	repo := newFakeProblemRepo(problem)
	svc := newTestProblemService(repo, nil)

	response, err := svc.Get(context.Background(), problem.ID)
	require.NoError(t, err)
	require.Equal(t, problem.Title, response.Title)
	require.Equal(t, problem.Question, response.Question)
}

func TestProblemServiceGetOmitsOptionCorrectness(t *testing.T) {
	problem := multipleChoiceProblem()
	repo := newFakeProblemRepo(problem)
	svc := newTestProblemService(repo, nil)

	response, err := svc.Get(context.Background(), problem.ID)
	require.NoError(t, err)
	require.Len(t, response.Options, 3)
	for _, option := range response.Options {
		require.NotZero(t, option.ID)
		require.NotEmpty(t, option.Content)
	}
}

func TestProblemServiceGetUnknownProblem(t *testing.T) {
	svc := newTestProblemService(newFakeProblemRepo(), nil)

	_, err := svc.Get(context.Background(), 404)
	require.ErrorIs(t, err, ErrProblemNotFound)
}

type fakeGenerator struct{}

func (fakeGenerator) GenerateMultipleChoice(_ context.Context, category, difficulty string) (ai.GeneratedProblem, error) {
	return ai.GeneratedProblem{
		Title:    "Generated " + category + " question",
		Question: "A " + difficulty + " multiple-choice question.",
		Options: []ai.GeneratedOption{
			{Content: "Right", IsCorrect: true},
			{Content: "Wrong", IsCorrect: false},
		},
	}, nil
}

func (fakeGenerator) GenerateSubjective(_ context.Context, category, difficulty string) (ai.GeneratedProblem, error) {
	return ai.GeneratedProblem{
		Title:           "Generated " + category + " question",
		Question:        "A " + difficulty + " subjective question.",
		SampleAnswer:    "a model answer",
		GradingCriteria: []string{"covers the key idea"},
	}, nil
}

func TestProblemGenerationServiceStoresDraft(t *testing.T) {
	repo := newFakeProblemRepo()
	generator := &fakeGenerator{}
	svc := NewProblemGenerationService(generator, repo, time.Minute, zerolog.New(io.Discard))

	require.NoError(t, svc.GenerateOne(context.Background()))

	require.Len(t, repo.problems, 1)
	for _, problem := range repo.problems {
		require.Equal(t, models.ProviderAI, problem.Provider)
		require.Equal(t, models.ProblemStatusActive, problem.Status)
		require.NotEmpty(t, problem.Title)
	}
}
