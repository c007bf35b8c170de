package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to handlers, mapped there to stable API codes.
var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrProgressNotFound   = errors.New("progress record not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrForbidden          = errors.New("actor is not allowed to perform this action")
	// ErrConflict is returned after a transition lost the per-record race
	// twice in a row. The operation left no partial state; callers may retry.
	ErrConflict = errors.New("progress record was modified concurrently")
)

// TransitionReason is the machine-readable cause of a rejected transition,
// letting callers distinguish "try again later" from "this is final".
type TransitionReason string

const (
	ReasonArchived          TransitionReason = "archived"
	ReasonTerminalState     TransitionReason = "terminal-state"
	ReasonOverdue           TransitionReason = "overdue"
	ReasonAttemptsExhausted TransitionReason = "attempts-exhausted"
	ReasonInvalidOverride   TransitionReason = "invalid-override"
)

// InvalidTransitionError reports a transition rejected by the attempt gate or
// an override outside the allowed status set.
type InvalidTransitionError struct {
	Reason TransitionReason
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s", e.Reason)
}

// CascadeError wraps any failure inside the assignment deletion cascade.
// The cascade is all-or-nothing: when this error surfaces, every dependent
// table was rolled back to its prior state.
type CascadeError struct {
	AssignmentID uint
	Err          error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("assignment %d cascade failed: %v", e.AssignmentID, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
