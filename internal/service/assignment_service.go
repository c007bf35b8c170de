package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AsadUlm/brainburst-progress-api/internal/dto"
	"github.com/AsadUlm/brainburst-progress-api/internal/models"
	"github.com/AsadUlm/brainburst-progress-api/internal/observability"
	"github.com/AsadUlm/brainburst-progress-api/internal/repository"
)

// AssignmentService owns the assignment lifecycle: creation with roster
// seeding, archival toggles, and the cascading delete.
type AssignmentService interface {
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	ListByClass(ctx context.Context, actor Actor, classID uint) ([]dto.AssignmentResponse, error)
	SetArchived(ctx context.Context, actor Actor, id uint, archived bool) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	progress    repository.ProgressRepository
	roster      repository.RosterRepository
	notifier    Notifier
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAssignmentService builds the assignment lifecycle service.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	progress repository.ProgressRepository,
	roster repository.RosterRepository,
	notifier Notifier,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		progress:    progress,
		roster:      roster,
		notifier:    notifier,
		validator:   validate,
		logger:      logger.With().Str("component", "assignment_service").Logger(),
		now:         time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	class, err := s.roster.GetClass(ctx, payload.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrClassNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if class.TeacherID != actor.ID {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	var dueDate *time.Time
	if payload.DueDate != nil {
		parsed, err := time.Parse(time.RFC3339, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, err
		}
		dueDate = &parsed
	}

	maxScore := 100.0
	if payload.MaxScore != nil {
		maxScore = *payload.MaxScore
	}

	assignment := models.Assignment{
		ClassID:         payload.ClassID,
		TestID:          payload.TestID,
		TeacherID:       actor.ID,
		Title:           payload.Title,
		DueDate:         dueDate,
		AttemptsAllowed: payload.AttemptsAllowed,
		MaxScore:        maxScore,
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	studentIDs, err := s.roster.ListStudentIDs(ctx, payload.ClassID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if len(studentIDs) > 0 {
		records := make([]models.ProgressRecord, 0, len(studentIDs))
		for _, studentID := range studentIDs {
			records = append(records, models.ProgressRecord{
				AssignmentID: assignment.ID,
				StudentID:    studentID,
				Status:       models.StatusAssigned,
			})
		}
		if err := s.progress.CreateBatch(ctx, records); err != nil {
			return dto.AssignmentResponse{}, err
		}
	}

	// Delivery failure never rolls back the created assignment.
	event := AssignmentCreatedEvent{
		AssignmentID: assignment.ID,
		Title:        assignment.Title,
		ClassID:      class.ID,
		ClassName:    class.Name,
		Recipients:   studentIDs,
		SentAt:       s.now().UTC(),
	}
	if err := s.notifier.AssignmentCreated(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("failed to publish assignment notification")
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("class_id", class.ID).
		Int("seeded_records", len(studentIDs)).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if err := s.authorizeClassRead(ctx, actor, assignment.ClassID); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ListByClass(ctx context.Context, actor Actor, classID uint) ([]dto.AssignmentResponse, error) {
	if err := s.authorizeClassRead(ctx, actor, classID); err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments), nil
}

func (s *assignmentService) SetArchived(ctx context.Context, actor Actor, id uint, archived bool) (dto.AssignmentResponse, error) {
	assignment, err := s.authorizeOwner(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.Archived = archived
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", id).Bool("archived", archived).Msg("assignment archival updated")
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, actor Actor, id uint) error {
	if _, err := s.authorizeOwner(ctx, actor, id); err != nil {
		return err
	}

	if err := s.assignments.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		observability.CascadeDeletes().WithLabelValues("failed").Inc()
		return &CascadeError{AssignmentID: id, Err: err}
	}

	observability.CascadeDeletes().WithLabelValues("deleted").Inc()
	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted with dependents")
	return nil
}

func (s *assignmentService) getAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (s *assignmentService) authorizeOwner(ctx context.Context, actor Actor, assignmentID uint) (models.Assignment, error) {
	if !actor.IsTeacher() {
		return models.Assignment{}, ErrForbidden
	}

	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return models.Assignment{}, err
	}

	class, err := s.roster.GetClass(ctx, assignment.ClassID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrClassNotFound
		}
		return models.Assignment{}, err
	}
	if class.TeacherID != actor.ID {
		return models.Assignment{}, ErrForbidden
	}

	return assignment, nil
}

func (s *assignmentService) authorizeClassRead(ctx context.Context, actor Actor, classID uint) error {
	if actor.IsSystem() {
		return nil
	}

	class, err := s.roster.GetClass(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	if actor.IsTeacher() {
		if class.TeacherID != actor.ID {
			return ErrForbidden
		}
		return nil
	}

	if actor.IsStudent() {
		member, err := s.roster.IsMember(ctx, classID, actor.ID)
		if err != nil {
			return err
		}
		if !member {
			return ErrForbidden
		}
		return nil
	}

	return ErrForbidden
}
