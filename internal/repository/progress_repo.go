package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

// ErrVersionConflict signals that a versioned update lost a race: the stored
// row moved past the version the caller read. Callers re-read and retry.
var ErrVersionConflict = errors.New("progress record version conflict")

// ErrDuplicateRecord signals that a create hit the (assignment, student)
// uniqueness constraint; exactly one row exists, created by a racing writer.
var ErrDuplicateRecord = errors.New("progress record already exists")

// ProgressRepository defines persistence operations for progress records.
//
// Update implements optimistic concurrency: the write applies only when the
// stored version still equals the version the caller read, and bumps it by
// one. Two racing read-modify-write cycles therefore resolve to exactly one
// winner; the loser receives ErrVersionConflict.
type ProgressRepository interface {
	Get(ctx context.Context, assignmentID, studentID uint) (models.ProgressRecord, error)
	ListByAssignment(ctx context.Context, assignmentID uint) ([]models.ProgressRecord, error)
	ListByAssignmentIDs(ctx context.Context, assignmentIDs []uint) ([]models.ProgressRecord, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.ProgressRecord, error)
	Create(ctx context.Context, record *models.ProgressRecord) error
	CreateBatch(ctx context.Context, records []models.ProgressRecord) error
	Update(ctx context.Context, record *models.ProgressRecord) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates a GORM-backed repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Get(ctx context.Context, assignmentID, studentID uint) (models.ProgressRecord, error) {
	var record models.ProgressRecord
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&record).Error; err != nil {
		return models.ProgressRecord{}, err
	}

	return record, nil
}

func (r *progressRepository) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("student_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *progressRepository) ListByAssignmentIDs(ctx context.Context, assignmentIDs []uint) ([]models.ProgressRecord, error) {
	if len(assignmentIDs) == 0 {
		return []models.ProgressRecord{}, nil
	}

	var records []models.ProgressRecord
	if err := r.db.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Order("assignment_id ASC, student_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *progressRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.ProgressRecord, error) {
	var records []models.ProgressRecord
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("assignment_id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

func (r *progressRepository) Create(ctx context.Context, record *models.ProgressRecord) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDuplicateRecord
	}

	return nil
}

func (r *progressRepository) CreateBatch(ctx context.Context, records []models.ProgressRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(&records).Error
}

func (r *progressRepository) Update(ctx context.Context, record *models.ProgressRecord) error {
	readVersion := record.Version

	result := r.db.WithContext(ctx).Model(&models.ProgressRecord{}).
		Where("id = ?", record.ID).
		Where("version = ?", readVersion).
		Updates(map[string]interface{}{
			"status":          record.Status,
			"attempt_count":   record.AttemptCount,
			"best_score":      record.BestScore,
			"teacher_comment": record.TeacherComment,
			"started_at":      record.StartedAt,
			"submitted_at":    record.SubmittedAt,
			"last_attempt_at": record.LastAttemptAt,
			"graded_at":       record.GradedAt,
			"excused_at":      record.ExcusedAt,
			"blocked_at":      record.BlockedAt,
			"version":         readVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}

	record.Version = readVersion + 1
	return nil
}
