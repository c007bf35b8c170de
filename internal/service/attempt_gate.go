package service

import (
	"time"

	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

// GateDecision is the outcome of an attempt-start check.
//
// ForceBlock marks decisions where the rejection is itself a state-changing
// event: exhausting the attempt limit must persist a blocked status so that
// subsequent reads show the student is done, not still assigned.
type GateDecision struct {
	Allowed    bool
	Reason     TransitionReason
	ForceBlock bool
}

// AttemptGate decides whether a student may start an attempt. It is pure:
// the caller performs the check and the resulting write as one serialized
// read-modify-write per record.
type AttemptGate struct{}

// Check evaluates the gate for one record against its assignment at the given
// instant. Rules, in order:
//
//   - archived assignments never accept new attempts;
//   - graded, excused and blocked records are settled outcomes;
//   - an effectively overdue record cannot start;
//   - a brand-new attempt (not a resumption of in_progress work) is refused
//     once the attempt limit is reached, and forces a blocked transition.
func (AttemptGate) Check(record models.ProgressRecord, assignment models.Assignment, now time.Time) GateDecision {
	if assignment.Archived {
		return GateDecision{Reason: ReasonArchived}
	}

	if record.IsResolved() {
		return GateDecision{Reason: ReasonTerminalState}
	}

	if models.ResolveStatus(&record, assignment, now) == models.StatusOverdue {
		return GateDecision{Reason: ReasonOverdue}
	}

	if assignment.HasAttemptLimit() &&
		record.AttemptCount >= *assignment.AttemptsAllowed &&
		record.Status != models.StatusInProgress {
		return GateDecision{Reason: ReasonAttemptsExhausted, ForceBlock: true}
	}

	return GateDecision{Allowed: true}
}
