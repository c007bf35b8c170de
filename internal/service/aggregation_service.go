package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AsadUlm/brainburst-progress-api/internal/dto"
	"github.com/AsadUlm/brainburst-progress-api/internal/models"
	"github.com/AsadUlm/brainburst-progress-api/internal/repository"
)

// AggregationService computes read-only rollups over progress records.
// It never blocks writers: counts come from a plain scan and may lag the
// latest transition by one write.
type AggregationService interface {
	AssignmentSummary(ctx context.Context, actor Actor, assignmentID uint) (dto.AssignmentSummaryResponse, error)
	ClassSummary(ctx context.Context, actor Actor, classID uint, studentID *uint) (dto.ClassSummaryResponse, error)
}

type aggregationService struct {
	assignments repository.AssignmentRepository
	progress    repository.ProgressRepository
	roster      repository.RosterRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAggregationService builds the rollup service. The cache client may be
// nil; summaries are then always computed fresh.
func NewAggregationService(
	assignments repository.AssignmentRepository,
	progress repository.ProgressRepository,
	roster repository.RosterRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) AggregationService {
	return &aggregationService{
		assignments: assignments,
		progress:    progress,
		roster:      roster,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "aggregation_service").Logger(),
		now:         time.Now,
	}
}

func (s *aggregationService) AssignmentSummary(ctx context.Context, actor Actor, assignmentID uint) (dto.AssignmentSummaryResponse, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentSummaryResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentSummaryResponse{}, err
	}

	if err := s.authorizeClassRead(ctx, actor, assignment.ClassID, nil); err != nil {
		return dto.AssignmentSummaryResponse{}, err
	}

	cacheKey := fmt.Sprintf("summary:assignment:%d", assignmentID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.AssignmentSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("assignment_id", assignmentID).Msg("summary cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read summary cache")
		}
	}

	records, err := s.progress.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentSummaryResponse{}, err
	}

	response := dto.AssignmentSummaryResponse{
		AssignmentID:  assignmentID,
		SummaryCounts: summarize(records, assignment, s.now()),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store summary cache")
			}
		}
	}

	return response, nil
}

func (s *aggregationService) ClassSummary(ctx context.Context, actor Actor, classID uint, studentID *uint) (dto.ClassSummaryResponse, error) {
	if err := s.authorizeClassRead(ctx, actor, classID, studentID); err != nil {
		return dto.ClassSummaryResponse{}, err
	}

	assignments, err := s.assignments.ListActiveByClass(ctx, classID)
	if err != nil {
		return dto.ClassSummaryResponse{}, err
	}

	ids := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		ids = append(ids, assignment.ID)
	}

	records, err := s.progress.ListByAssignmentIDs(ctx, ids)
	if err != nil {
		return dto.ClassSummaryResponse{}, err
	}

	byAssignment := make(map[uint][]models.ProgressRecord, len(assignments))
	for _, record := range records {
		if studentID != nil && record.StudentID != *studentID {
			continue
		}
		byAssignment[record.AssignmentID] = append(byAssignment[record.AssignmentID], record)
	}

	now := s.now()
	response := dto.ClassSummaryResponse{
		ClassID:     classID,
		StudentID:   studentID,
		Assignments: make([]dto.AssignmentSummaryResponse, 0, len(assignments)),
	}

	var scoreSum float64
	var scoreCount int
	for _, assignment := range assignments {
		counts := summarize(byAssignment[assignment.ID], assignment, now)
		response.Assignments = append(response.Assignments, dto.AssignmentSummaryResponse{
			AssignmentID:  assignment.ID,
			SummaryCounts: counts,
		})

		response.Totals.Total += counts.Total
		response.Totals.Submitted += counts.Submitted
		response.Totals.Overdue += counts.Overdue
		response.Totals.Graded += counts.Graded
		for _, record := range byAssignment[assignment.ID] {
			if record.Status == models.StatusGraded && record.BestScore != nil {
				scoreSum += *record.BestScore
				scoreCount++
			}
		}
	}

	if scoreCount > 0 {
		average := scoreSum / float64(scoreCount)
		response.Totals.AverageScore = &average
	}

	return response, nil
}

// summarize folds one assignment's records into counters. Submitted follows
// stored status (handled students count even when late); overdue follows the
// resolved effective status.
func summarize(records []models.ProgressRecord, assignment models.Assignment, now time.Time) dto.SummaryCounts {
	counts := dto.SummaryCounts{Total: len(records)}

	var scoreSum float64
	var scoreCount int
	for _, record := range records {
		switch record.Status {
		case models.StatusSubmitted, models.StatusGraded, models.StatusExcused:
			counts.Submitted++
		}

		if record.Status == models.StatusGraded {
			counts.Graded++
			if record.BestScore != nil {
				scoreSum += *record.BestScore
				scoreCount++
			}
		}

		if models.ResolveStatus(&record, assignment, now) == models.StatusOverdue {
			counts.Overdue++
		}
	}

	if scoreCount > 0 {
		average := scoreSum / float64(scoreCount)
		counts.AverageScore = &average
	}

	return counts
}

// authorizeClassRead allows the owning teacher, the system, or a student
// reading their own slice of the class.
func (s *aggregationService) authorizeClassRead(ctx context.Context, actor Actor, classID uint, studentID *uint) error {
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
		if studentID == nil || *studentID != actor.ID {
			return ErrForbidden
		}
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
