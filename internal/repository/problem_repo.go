package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizforge/quiz-api/internal/models"
)

// ProblemSort selects the ordering of problem listings.
type ProblemSort string

const (
	ProblemSortLatest      ProblemSort = "latest"
	ProblemSortOldest      ProblemSort = "oldest"
	ProblemSortMostSolved  ProblemSort = "most_solved"
	ProblemSortLeastSolved ProblemSort = "least_solved"
)

// OrDefault resolves an unset sort to the catalogue default, most solved
// first.
func (s ProblemSort) OrDefault() ProblemSort {
	if s == "" {
		return ProblemSortMostSolved
	}
	return s
}

func (s ProblemSort) orderClause() string {
	switch s.OrDefault() {
	case ProblemSortLatest:
		return "created_at DESC"
	case ProblemSortOldest:
		return "created_at ASC"
	case ProblemSortLeastSolved:
		return "solved_count ASC, created_at DESC"
	default:
		return "solved_count DESC, created_at DESC"
	}
}

// ProblemFilter narrows problem listing queries.
type ProblemFilter struct {
	Category   *models.ProblemCategory
	Difficulty *models.ProblemDifficulty
	Type       *models.ProblemType
	Sort       ProblemSort
	Page       int
	PageSize   int
}

// ProblemRepository defines data operations for problems.
type ProblemRepository interface {
	List(ctx context.Context, filter ProblemFilter) ([]models.Problem, int64, error)
	GetByID(ctx context.Context, id uint) (models.Problem, error)
	Create(ctx context.Context, problem *models.Problem) error
}

type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository instantiates the repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) List(ctx context.Context, filter ProblemFilter) ([]models.Problem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Problem{}).
		Where("status = ?", models.ProblemStatusActive)

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}

	if filter.Difficulty != nil {
		query = query.Where("difficulty = ?", *filter.Difficulty)
	}

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var problems []models.Problem
	if err := query.Order(filter.Sort.orderClause()).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&problems).Error; err != nil {
		return nil, 0, err
	}

	return problems, total, nil
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).Preload("Options").First(&problem, id).Error; err != nil {
		return models.Problem{}, err
	}

	return problem, nil
}

func (r *problemRepository) Create(ctx context.Context, problem *models.Problem) error {
	return r.db.WithContext(ctx).Create(problem).Error
}
