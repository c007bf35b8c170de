package service

import (
	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

// OverrideKind tags the teacher override variants. Each kind maps to exactly
// one stored status.
type OverrideKind string

const (
	OverrideGraded     OverrideKind = models.StatusGraded
	OverrideExcused    OverrideKind = models.StatusExcused
	OverrideBlocked    OverrideKind = models.StatusBlocked
	OverrideReassigned OverrideKind = models.StatusAssigned
	OverrideSubmitted  OverrideKind = models.StatusSubmitted
	OverrideInProgress OverrideKind = models.StatusInProgress
)

// Override is a validated teacher override. Construct one through
// ParseOverride or the typed constructors; the zero value is not valid.
// Score is meaningful only for graded overrides, Comment only for the
// terminal kinds (graded, excused, blocked).
type Override struct {
	Kind    OverrideKind
	Score   float64
	Comment string
}

// NewGradedOverride builds a grading override. The score is clamped into
// [0, maxScore] when applied.
func NewGradedOverride(score float64, comment string) Override {
	return Override{Kind: OverrideGraded, Score: score, Comment: comment}
}

// NewExcusedOverride builds an excusal override.
func NewExcusedOverride(comment string) Override {
	return Override{Kind: OverrideExcused, Comment: comment}
}

// NewBlockedOverride builds a blocking override.
func NewBlockedOverride(comment string) Override {
	return Override{Kind: OverrideBlocked, Comment: comment}
}

// NewReassignedOverride sends the record back to assigned.
func NewReassignedOverride() Override {
	return Override{Kind: OverrideReassigned}
}

// ParseOverride validates a raw status/grade/comment triple at the boundary
// and produces the matching tagged variant. Unknown statuses and a graded
// override without a grade are rejected before reaching the transition
// service.
func ParseOverride(status string, grade *float64, comment string) (Override, error) {
	switch status {
	case models.StatusGraded:
		if grade == nil {
			return Override{}, &InvalidTransitionError{Reason: ReasonInvalidOverride}
		}
		return NewGradedOverride(*grade, comment), nil
	case models.StatusExcused:
		return NewExcusedOverride(comment), nil
	case models.StatusBlocked:
		return NewBlockedOverride(comment), nil
	case models.StatusAssigned:
		return NewReassignedOverride(), nil
	case models.StatusSubmitted:
		return Override{Kind: OverrideSubmitted}, nil
	case models.StatusInProgress:
		return Override{Kind: OverrideInProgress}, nil
	default:
		return Override{}, &InvalidTransitionError{Reason: ReasonInvalidOverride}
	}
}
