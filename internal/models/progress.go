package models

import "time"

// ProgressRecord tracks one student's lifecycle against one assignment.
// Exactly one record may exist per (assignment, student) pair; the composite
// unique index resolves duplicate-create races to a single row.
//
// Status holds the stored status only. The overdue state is derived on read
// through ResolveStatus and is never persisted.
type ProgressRecord struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AssignmentID   uint       `gorm:"not null;uniqueIndex:idx_progress_assignment_student" json:"assignment_id"`
	StudentID      uint       `gorm:"not null;uniqueIndex:idx_progress_assignment_student" json:"student_id"`
	Status         string     `gorm:"size:32;not null;default:assigned" json:"status"`
	AttemptCount   int        `gorm:"not null;default:0" json:"attempt_count"`
	BestScore      *float64   `json:"best_score"`
	TeacherComment string     `gorm:"type:text" json:"teacher_comment"`
	StartedAt      *time.Time `json:"started_at"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	LastAttemptAt  *time.Time `json:"last_attempt_at"`
	GradedAt       *time.Time `json:"graded_at"`
	ExcusedAt      *time.Time `json:"excused_at"`
	BlockedAt      *time.Time `json:"blocked_at"`
	Version        int        `gorm:"not null;default:0" json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Assignment Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsTerminal reports whether the stored status is immune to overdue
// recomputation: submitted, graded, excused and blocked records keep their
// status no matter how far past the due date the clock moves.
func (p ProgressRecord) IsTerminal() bool {
	return IsTerminalStatus(p.Status)
}

// IsResolved reports whether a teacher has already settled the outcome.
// Unlike IsTerminal, a plain submission does not count: students may still
// start a fresh attempt from submitted when attempts remain.
func (p ProgressRecord) IsResolved() bool {
	switch p.Status {
	case StatusGraded, StatusExcused, StatusBlocked:
		return true
	default:
		return false
	}
}
