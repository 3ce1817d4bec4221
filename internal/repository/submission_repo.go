package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizforge/quiz-api/internal/models"
)

// SubmissionHistoryFilter narrows a user's submission history query.
type SubmissionHistoryFilter struct {
	Category   *models.ProblemCategory
	Difficulty *models.ProblemDifficulty
	Type       *models.ProblemType
	IsCorrect  *bool
	Page       int
	PageSize   int
}

// SubmissionRepository defines data operations for submissions. It also
// satisfies the grading scheduler's store interface (FindByID, Save,
// FirstSolve).
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id uint) (models.Submission, error)
	Save(ctx context.Context, submission *models.Submission) error
	ListByUser(ctx context.Context, userID uint, filter SubmissionHistoryFilter) ([]models.Submission, int64, error)
	FirstSolve(ctx context.Context, userID, problemID, submissionID uint) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) FindByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Save(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("User", "Problem").Save(submission).Error
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint, filter SubmissionHistoryFilter) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{}).
		Joins("JOIN problems ON problems.id = submissions.problem_id").
		Where("submissions.user_id = ?", userID)

	if filter.Category != nil {
		query = query.Where("problems.category = ?", *filter.Category)
	}

	if filter.Difficulty != nil {
		query = query.Where("problems.difficulty = ?", *filter.Difficulty)
	}

	if filter.Type != nil {
		query = query.Where("problems.type = ?", *filter.Type)
	}

	if filter.IsCorrect != nil {
		query = query.Where("submissions.is_correct = ?", *filter.IsCorrect)
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

	var submissions []models.Submission
	if err := query.Preload("Problem").
		Order("submissions.submitted_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

// FirstSolve bumps the problem's solved counter iff the user has no correct
// submission for the problem other than submissionID. Check and increment
// run in one transaction so two concurrent correct submissions cannot count
// the same user twice.
func (r *submissionRepository) FirstSolve(ctx context.Context, userID, problemID, submissionID uint) (bool, error) {
	incremented := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior int64
		if err := tx.Model(&models.Submission{}).
			Where("user_id = ? AND problem_id = ? AND is_correct = ? AND id <> ?", userID, problemID, true, submissionID).
			Count(&prior).Error; err != nil {
			return err
		}

		if prior > 0 {
			return nil
		}

		if err := tx.Model(&models.Problem{}).
			Where("id = ?", problemID).
			UpdateColumn("solved_count", gorm.Expr("solved_count + 1")).Error; err != nil {
			return err
		}

		incremented = true
		return nil
	})

	return incremented, err
}
