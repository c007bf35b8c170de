package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

// RosterRepository is the read-only view of the class/roster subsystem this
// service consumes: class ownership for authorization, membership for seeding
// and student-action checks.
type RosterRepository interface {
	GetClass(ctx context.Context, classID uint) (models.Class, error)
	ListStudentIDs(ctx context.Context, classID uint) ([]uint, error)
	IsMember(ctx context.Context, classID, studentID uint) (bool, error)
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository instantiates a GORM-backed roster view.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) GetClass(ctx context.Context, classID uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).First(&class, classID).Error; err != nil {
		return models.Class{}, err
	}

	return class, nil
}

func (r *rosterRepository) ListStudentIDs(ctx context.Context, classID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.ClassMember{}).
		Where("class_id = ?", classID).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *rosterRepository) IsMember(ctx context.Context, classID, studentID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ClassMember{}).
		Where("class_id = ?", classID).
		Where("student_id = ?", studentID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
