package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

// ResultRepository appends attempt history. History rows are never mutated by
// the progress subsystem and survive progress resets; they disappear only
// through the assignment cascade.
type ResultRepository interface {
	CreateTestResult(ctx context.Context, result *models.TestResult) error
	ListTestResults(ctx context.Context, assignmentID, studentID uint) ([]models.TestResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

// NewResultRepository instantiates a GORM-backed repository.
func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) CreateTestResult(ctx context.Context, result *models.TestResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) ListTestResults(ctx context.Context, assignmentID, studentID uint) ([]models.TestResult, error) {
	var results []models.TestResult
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
