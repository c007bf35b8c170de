package models

import "time"

// Stored statuses. StatusOverdue is derived only: ResolveStatus may return it
// but no ProgressRecord ever persists it.
const (
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusBlocked    = "blocked"
	StatusGraded     = "graded"
	StatusExcused    = "excused"

	StatusOverdue = "overdue"
)

// IsTerminalStatus reports whether a stored status is terminal.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusSubmitted, StatusGraded, StatusExcused, StatusBlocked:
		return true
	default:
		return false
	}
}

// IsStoredStatus reports whether the value is a valid persisted status.
func IsStoredStatus(status string) bool {
	switch status {
	case StatusAssigned, StatusInProgress, StatusSubmitted, StatusBlocked, StatusGraded, StatusExcused:
		return true
	default:
		return false
	}
}

// ResolveStatus computes the effective status shown to readers by overlaying
// time-derived overdue logic on top of the stored status.
//
// A nil record means the student has never touched the assignment and no row
// was seeded for them; they are implicitly assigned, never overdue. Terminal
// records keep their stored status regardless of the due date: a late
// submission that was already graded must never be redisplayed as overdue.
func ResolveStatus(record *ProgressRecord, assignment Assignment, now time.Time) string {
	if record == nil {
		return StatusAssigned
	}

	if record.IsTerminal() {
		return record.Status
	}

	if assignment.IsPastDue(now) {
		return StatusOverdue
	}

	return record.Status
}
