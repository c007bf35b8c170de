package dto

import (
	"time"

	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

// SubmissionRequest carries a score reported by the test-taking subsystem.
// StudentID is required when the caller is the system; student actors submit
// for themselves.
type SubmissionRequest struct {
	StudentID uint    `json:"student_id" validate:"omitempty"`
	Score     float64 `json:"score" validate:"gte=0"`
	Total     float64 `json:"total" validate:"required,gt=0"`
}

// OverrideRequest is the raw teacher override payload. It is parsed into a
// tagged variant before reaching the transition service.
type OverrideRequest struct {
	Status  string   `json:"status" validate:"required"`
	Grade   *float64 `json:"grade" validate:"omitempty,gte=0"`
	Comment string   `json:"comment"`
}

// ProgressResponse is the per-(assignment, student) view returned by every
// transition and read. EffectiveStatus is recomputed on each response and may
// be overdue even though StoredStatus never is.
type ProgressResponse struct {
	AssignmentID    uint       `json:"assignment_id"`
	StudentID       uint       `json:"student_id"`
	StoredStatus    string     `json:"stored_status"`
	EffectiveStatus string     `json:"effective_status"`
	AttemptCount    int        `json:"attempt_count"`
	BestScore       *float64   `json:"best_score"`
	TeacherComment  string     `json:"teacher_comment,omitempty"`
	StartedAt       *time.Time `json:"started_at"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	LastAttemptAt   *time.Time `json:"last_attempt_at"`
	GradedAt        *time.Time `json:"graded_at"`
	ExcusedAt       *time.Time `json:"excused_at"`
	BlockedAt       *time.Time `json:"blocked_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewProgressResponse converts a record plus its freshly resolved effective
// status into a DTO.
func NewProgressResponse(record models.ProgressRecord, effective string) ProgressResponse {
	return ProgressResponse{
		AssignmentID:    record.AssignmentID,
		StudentID:       record.StudentID,
		StoredStatus:    record.Status,
		EffectiveStatus: effective,
		AttemptCount:    record.AttemptCount,
		BestScore:       record.BestScore,
		TeacherComment:  record.TeacherComment,
		StartedAt:       record.StartedAt,
		SubmittedAt:     record.SubmittedAt,
		LastAttemptAt:   record.LastAttemptAt,
		GradedAt:        record.GradedAt,
		ExcusedAt:       record.ExcusedAt,
		BlockedAt:       record.BlockedAt,
		UpdatedAt:       record.UpdatedAt,
	}
}

// NewUntouchedProgressResponse represents a student who has no record yet:
// implicitly assigned, regardless of the due date.
func NewUntouchedProgressResponse(assignmentID, studentID uint) ProgressResponse {
	return ProgressResponse{
		AssignmentID:    assignmentID,
		StudentID:       studentID,
		EffectiveStatus: models.StatusAssigned,
	}
}
