package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveStatusMissingRecordIsAssigned(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	assignment := Assignment{ID: 1, DueDate: &past}

	require.Equal(t, StatusAssigned, ResolveStatus(nil, assignment, time.Now()))
}

func TestResolveStatusTerminalStatesIgnoreDueDate(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	assignment := Assignment{ID: 1, DueDate: &past}

	for _, status := range []string{StatusSubmitted, StatusGraded, StatusExcused, StatusBlocked} {
		record := ProgressRecord{Status: status}
		require.Equal(t, status, ResolveStatus(&record, assignment, time.Now()), "status %s", status)
	}
}

func TestResolveStatusOverdueOverlaysActiveStates(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	assignment := Assignment{ID: 1, DueDate: &past}

	for _, status := range []string{StatusAssigned, StatusInProgress} {
		record := ProgressRecord{Status: status}
		require.Equal(t, StatusOverdue, ResolveStatus(&record, assignment, time.Now()), "status %s", status)
	}
}

func TestResolveStatusBeforeDueDatePassesThrough(t *testing.T) {
	future := time.Now().Add(time.Hour)
	assignment := Assignment{ID: 1, DueDate: &future}
	record := ProgressRecord{Status: StatusInProgress}

	require.Equal(t, StatusInProgress, ResolveStatus(&record, assignment, time.Now()))
}

func TestResolveStatusNoDueDateNeverOverdue(t *testing.T) {
	assignment := Assignment{ID: 1}
	record := ProgressRecord{Status: StatusAssigned}

	require.Equal(t, StatusAssigned, ResolveStatus(&record, assignment, time.Now().Add(1000*time.Hour)))
}

func TestResolveStatusExactDueInstantIsNotOverdue(t *testing.T) {
	due := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	assignment := Assignment{ID: 1, DueDate: &due}
	record := ProgressRecord{Status: StatusInProgress}

	require.Equal(t, StatusInProgress, ResolveStatus(&record, assignment, due))
	require.Equal(t, StatusOverdue, ResolveStatus(&record, assignment, due.Add(time.Nanosecond)))
}

func TestIsTerminalStatus(t *testing.T) {
	require.True(t, IsTerminalStatus(StatusSubmitted))
	require.True(t, IsTerminalStatus(StatusGraded))
	require.True(t, IsTerminalStatus(StatusExcused))
	require.True(t, IsTerminalStatus(StatusBlocked))
	require.False(t, IsTerminalStatus(StatusAssigned))
	require.False(t, IsTerminalStatus(StatusInProgress))
	require.False(t, IsTerminalStatus(StatusOverdue))
}

func TestIsStoredStatusRejectsDerivedAndUnknown(t *testing.T) {
	require.False(t, IsStoredStatus(StatusOverdue))
	require.False(t, IsStoredStatus("finished"))
	require.True(t, IsStoredStatus(StatusAssigned))
}

func TestRecordIsResolvedExcludesSubmitted(t *testing.T) {
	require.False(t, ProgressRecord{Status: StatusSubmitted}.IsResolved())
	require.True(t, ProgressRecord{Status: StatusGraded}.IsResolved())
	require.True(t, ProgressRecord{Status: StatusExcused}.IsResolved())
	require.True(t, ProgressRecord{Status: StatusBlocked}.IsResolved())
}

func TestAssignmentHasAttemptLimit(t *testing.T) {
	limit := 3
	require.True(t, Assignment{AttemptsAllowed: &limit}.HasAttemptLimit())
	require.False(t, Assignment{}.HasAttemptLimit())
}
