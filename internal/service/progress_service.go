package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AsadUlm/brainburst-progress-api/internal/dto"
	"github.com/AsadUlm/brainburst-progress-api/internal/models"
	"github.com/AsadUlm/brainburst-progress-api/internal/observability"
	"github.com/AsadUlm/brainburst-progress-api/internal/repository"
)

// ProgressService is the only writer of progress records. Student transitions
// (start attempt, record submission) and teacher overrides (grade, excuse,
// block, reset) all funnel through it; every response carries the freshly
// resolved effective status, never the raw stored field.
type ProgressService interface {
	StartAttempt(ctx context.Context, actor Actor, assignmentID uint) (dto.ProgressResponse, error)
	RecordSubmission(ctx context.Context, actor Actor, assignmentID, studentID uint, payload dto.SubmissionRequest) (dto.ProgressResponse, error)
	Override(ctx context.Context, actor Actor, assignmentID, studentID uint, override Override) (dto.ProgressResponse, error)
	Reset(ctx context.Context, actor Actor, assignmentID, studentID uint) (dto.ProgressResponse, error)
	Get(ctx context.Context, actor Actor, assignmentID, studentID uint) (dto.ProgressResponse, error)
}

type progressService struct {
	progress    repository.ProgressRepository
	assignments repository.AssignmentRepository
	roster      repository.RosterRepository
	results     repository.ResultRepository
	gate        AttemptGate
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time

	// locks serializes the read-check-write cycle per (assignment, student)
	// pair within this process; the repository's version check covers races
	// across processes. Records of different students stay fully independent.
	locks sync.Map
}

// NewProgressService constructs the transition service.
func NewProgressService(
	progress repository.ProgressRepository,
	assignments repository.AssignmentRepository,
	roster repository.RosterRepository,
	results repository.ResultRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ProgressService {
	return &progressService{
		progress:    progress,
		assignments: assignments,
		roster:      roster,
		results:     results,
		validator:   validate,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		now:         time.Now,
	}
}

func (s *progressService) lockFor(assignmentID, studentID uint) *sync.Mutex {
	key := uint64(assignmentID)<<32 | uint64(studentID)
	actual, _ := s.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

func (s *progressService) getAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	return assignment, nil
}

// loadOrCreate fetches the record, creating a fresh assigned one for students
// added to the class after the assignment was seeded. A duplicate-create race
// resolves to the single row the winner inserted.
func (s *progressService) loadOrCreate(ctx context.Context, assignmentID, studentID uint) (models.ProgressRecord, error) {
	record, err := s.progress.Get(ctx, assignmentID, studentID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ProgressRecord{}, err
	}

	record = models.ProgressRecord{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.StatusAssigned,
	}
	if createErr := s.progress.Create(ctx, &record); createErr != nil {
		if errors.Is(createErr, repository.ErrDuplicateRecord) {
			return s.progress.Get(ctx, assignmentID, studentID)
		}
		return models.ProgressRecord{}, createErr
	}

	return record, nil
}

func (s *progressService) StartAttempt(ctx context.Context, actor Actor, assignmentID uint) (dto.ProgressResponse, error) {
	if !actor.IsStudent() {
		return dto.ProgressResponse{}, ErrForbidden
	}

	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	member, err := s.roster.IsMember(ctx, assignment.ClassID, actor.ID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	if !member {
		return dto.ProgressResponse{}, ErrForbidden
	}

	mu := s.lockFor(assignmentID, actor.ID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		record, err := s.loadOrCreate(ctx, assignmentID, actor.ID)
		if err != nil {
			return dto.ProgressResponse{}, err
		}

		now := s.now()
		decision := s.gate.Check(record, assignment, now)
		if !decision.Allowed {
			if decision.ForceBlock && record.Status != models.StatusBlocked {
				// Exhausting the limit is itself a transition: persist
				// blocked so later reads stop showing a startable status.
				record.Status = models.StatusBlocked
				record.BlockedAt = &now
				if err := s.progress.Update(ctx, &record); err != nil {
					if errors.Is(err, repository.ErrVersionConflict) {
						continue
					}
					return dto.ProgressResponse{}, err
				}
			}

			observability.Transitions().WithLabelValues("start_attempt", "rejected").Inc()
			s.logger.Info().
				Uint("assignment_id", assignmentID).
				Uint("student_id", actor.ID).
				Str("reason", string(decision.Reason)).
				Msg("attempt start rejected")
			return dto.ProgressResponse{}, &InvalidTransitionError{Reason: decision.Reason}
		}

		resuming := record.Status == models.StatusInProgress
		record.LastAttemptAt = &now
		if !resuming {
			record.Status = models.StatusInProgress
			record.StartedAt = &now
			record.AttemptCount++
		}

		if err := s.progress.Update(ctx, &record); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			return dto.ProgressResponse{}, err
		}

		observability.Transitions().WithLabelValues("start_attempt", "applied").Inc()
		s.logger.Info().
			Uint("assignment_id", assignmentID).
			Uint("student_id", actor.ID).
			Int("attempt_count", record.AttemptCount).
			Bool("resumed", resuming).
			Msg("attempt started")
		return dto.NewProgressResponse(record, models.ResolveStatus(&record, assignment, s.now())), nil
	}

	observability.Transitions().WithLabelValues("start_attempt", "conflict").Inc()
	return dto.ProgressResponse{}, ErrConflict
}

func (s *progressService) RecordSubmission(ctx context.Context, actor Actor, assignmentID, studentID uint, payload dto.SubmissionRequest) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgressResponse{}, err
	}

	switch {
	case actor.IsStudent():
		if actor.ID != studentID {
			return dto.ProgressResponse{}, ErrForbidden
		}
	case actor.IsSystem():
		// The test-taking subsystem records on behalf of any student.
	default:
		return dto.ProgressResponse{}, ErrForbidden
	}

	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	if actor.IsStudent() {
		member, err := s.roster.IsMember(ctx, assignment.ClassID, studentID)
		if err != nil {
			return dto.ProgressResponse{}, err
		}
		if !member {
			return dto.ProgressResponse{}, ErrForbidden
		}
	}

	if assignment.Archived {
		return dto.ProgressResponse{}, &InvalidTransitionError{Reason: ReasonArchived}
	}

	mu := s.lockFor(assignmentID, studentID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		record, err := s.progress.Get(ctx, assignmentID, studentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProgressResponse{}, ErrProgressNotFound
			}
			return dto.ProgressResponse{}, err
		}

		if record.IsTerminal() {
			observability.Transitions().WithLabelValues("record_submission", "rejected").Inc()
			return dto.ProgressResponse{}, &InvalidTransitionError{Reason: ReasonTerminalState}
		}

		now := s.now()
		record.Status = models.StatusSubmitted
		record.SubmittedAt = &now
		record.LastAttemptAt = &now

		scaled := clampScore(payload.Score/payload.Total*assignment.MaxScore, assignment.MaxScore)
		if record.BestScore == nil || scaled > *record.BestScore {
			record.BestScore = &scaled
		}

		if err := s.progress.Update(ctx, &record); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			return dto.ProgressResponse{}, err
		}

		// Attempt history lives beside the record but belongs to the result
		// subsystem; a failed append must not unwind the accepted submission.
		history := models.TestResult{
			AssignmentID: assignmentID,
			StudentID:    studentID,
			Score:        payload.Score,
			Total:        payload.Total,
		}
		if err := s.results.CreateTestResult(ctx, &history); err != nil {
			s.logger.Warn().Err(err).
				Uint("assignment_id", assignmentID).
				Uint("student_id", studentID).
				Msg("failed to append result history")
		}

		observability.Transitions().WithLabelValues("record_submission", "applied").Inc()
		s.logger.Info().
			Uint("assignment_id", assignmentID).
			Uint("student_id", studentID).
			Float64("score", payload.Score).
			Msg("submission recorded")
		return dto.NewProgressResponse(record, models.ResolveStatus(&record, assignment, s.now())), nil
	}

	observability.Transitions().WithLabelValues("record_submission", "conflict").Inc()
	return dto.ProgressResponse{}, ErrConflict
}

func (s *progressService) Override(ctx context.Context, actor Actor, assignmentID, studentID uint, override Override) (dto.ProgressResponse, error) {
	assignment, err := s.authorizeTeacher(ctx, actor, assignmentID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	if assignment.Archived {
		return dto.ProgressResponse{}, &InvalidTransitionError{Reason: ReasonArchived}
	}

	if !models.IsStoredStatus(string(override.Kind)) {
		return dto.ProgressResponse{}, &InvalidTransitionError{Reason: ReasonInvalidOverride}
	}

	mu := s.lockFor(assignmentID, studentID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		record, err := s.loadOrCreate(ctx, assignmentID, studentID)
		if err != nil {
			return dto.ProgressResponse{}, err
		}

		now := s.now()
		applyOverride(&record, override, now, assignment.MaxScore)

		if err := s.progress.Update(ctx, &record); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			return dto.ProgressResponse{}, err
		}

		observability.Transitions().WithLabelValues("override", "applied").Inc()
		s.logger.Info().
			Uint("assignment_id", assignmentID).
			Uint("student_id", studentID).
			Uint("teacher_id", actor.ID).
			Str("status", record.Status).
			Msg("override applied")
		return dto.NewProgressResponse(record, models.ResolveStatus(&record, assignment, s.now())), nil
	}

	observability.Transitions().WithLabelValues("override", "conflict").Inc()
	return dto.ProgressResponse{}, ErrConflict
}

// applyOverride rewrites the record for the requested variant. At most one
// terminal timestamp stays set afterwards, and it always matches the status.
func applyOverride(record *models.ProgressRecord, override Override, now time.Time, maxScore float64) {
	record.GradedAt = nil
	record.ExcusedAt = nil
	record.BlockedAt = nil

	switch override.Kind {
	case OverrideGraded:
		score := clampScore(override.Score, maxScore)
		record.Status = models.StatusGraded
		record.BestScore = &score
		record.GradedAt = &now
		record.TeacherComment = override.Comment
	case OverrideExcused:
		record.Status = models.StatusExcused
		record.ExcusedAt = &now
		record.TeacherComment = override.Comment
	case OverrideBlocked:
		record.Status = models.StatusBlocked
		record.BlockedAt = &now
		record.TeacherComment = override.Comment
	case OverrideReassigned:
		record.Status = models.StatusAssigned
	case OverrideSubmitted:
		record.Status = models.StatusSubmitted
		if record.SubmittedAt == nil {
			record.SubmittedAt = &now
		}
	case OverrideInProgress:
		record.Status = models.StatusInProgress
		if record.StartedAt == nil {
			record.StartedAt = &now
		}
	}
}

func (s *progressService) Reset(ctx context.Context, actor Actor, assignmentID, studentID uint) (dto.ProgressResponse, error) {
	assignment, err := s.authorizeTeacher(ctx, actor, assignmentID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	if assignment.Archived {
		return dto.ProgressResponse{}, &InvalidTransitionError{Reason: ReasonArchived}
	}

	mu := s.lockFor(assignmentID, studentID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < 2; attempt++ {
		record, err := s.progress.Get(ctx, assignmentID, studentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProgressResponse{}, ErrProgressNotFound
			}
			return dto.ProgressResponse{}, err
		}

		// Reset clears live progress only; past attempt history in the
		// result tables stays untouched.
		record.Status = models.StatusAssigned
		record.AttemptCount = 0
		record.BestScore = nil
		record.TeacherComment = ""
		record.StartedAt = nil
		record.SubmittedAt = nil
		record.LastAttemptAt = nil
		record.GradedAt = nil
		record.ExcusedAt = nil
		record.BlockedAt = nil

		if err := s.progress.Update(ctx, &record); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				continue
			}
			return dto.ProgressResponse{}, err
		}

		observability.Transitions().WithLabelValues("reset", "applied").Inc()
		s.logger.Info().
			Uint("assignment_id", assignmentID).
			Uint("student_id", studentID).
			Uint("teacher_id", actor.ID).
			Msg("progress reset")
		return dto.NewProgressResponse(record, models.ResolveStatus(&record, assignment, s.now())), nil
	}

	observability.Transitions().WithLabelValues("reset", "conflict").Inc()
	return dto.ProgressResponse{}, ErrConflict
}

func (s *progressService) Get(ctx context.Context, actor Actor, assignmentID, studentID uint) (dto.ProgressResponse, error) {
	assignment, err := s.getAssignment(ctx, assignmentID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	switch {
	case actor.IsSystem():
	case actor.IsStudent():
		if actor.ID != studentID {
			return dto.ProgressResponse{}, ErrForbidden
		}
	case actor.IsTeacher():
		class, err := s.roster.GetClass(ctx, assignment.ClassID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProgressResponse{}, ErrClassNotFound
			}
			return dto.ProgressResponse{}, err
		}
		if class.TeacherID != actor.ID {
			return dto.ProgressResponse{}, ErrForbidden
		}
	default:
		return dto.ProgressResponse{}, ErrForbidden
	}

	record, err := s.progress.Get(ctx, assignmentID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NewUntouchedProgressResponse(assignmentID, studentID), nil
		}
		return dto.ProgressResponse{}, err
	}

	return dto.NewProgressResponse(record, models.ResolveStatus(&record, assignment, s.now())), nil
}

// authorizeTeacher loads the assignment and verifies the actor owns its class.
func (s *progressService) authorizeTeacher(ctx context.Context, actor Actor, assignmentID uint) (models.Assignment, error) {
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

func clampScore(value, max float64) float64 {
	if value < 0 {
		return 0
	}
	if value > max {
		return max
	}
	return value
}
