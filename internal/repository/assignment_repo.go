package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	ListByClass(ctx context.Context, classID uint) ([]models.Assignment, error)
	ListActiveByClass(ctx context.Context, classID uint) ([]models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	DeleteCascade(ctx context.Context, id uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) ListByClass(ctx context.Context, classID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("due_date ASC NULLS LAST").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) ListActiveByClass(ctx context.Context, classID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Where("archived = ?", false).
		Order("due_date ASC NULLS LAST").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// DeleteCascade removes an assignment together with every dependent progress
// record, test result and game result in a single transaction. Any failed
// step rolls the whole cascade back, leaving all four tables untouched.
func (r *assignmentRepository) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		if err := tx.First(&assignment, id).Error; err != nil {
			return err
		}

		if err := tx.Where("assignment_id = ?", id).Delete(&models.ProgressRecord{}).Error; err != nil {
			return fmt.Errorf("delete progress records: %w", err)
		}

		if err := tx.Where("assignment_id = ?", id).Delete(&models.TestResult{}).Error; err != nil {
			return fmt.Errorf("delete test results: %w", err)
		}

		if err := tx.Where("assignment_id = ?", id).Delete(&models.GameResult{}).Error; err != nil {
			return fmt.Errorf("delete game results: %w", err)
		}

		if err := tx.Delete(&models.Assignment{}, id).Error; err != nil {
			return fmt.Errorf("delete assignment: %w", err)
		}

		return nil
	})
}
