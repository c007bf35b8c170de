package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/AsadUlm/brainburst-progress-api/internal/dto"
	"github.com/AsadUlm/brainburst-progress-api/internal/models"
)

type assignmentFixture struct {
	service     *assignmentService
	assignments *fakeAssignmentRepo
	progress    *fakeProgressRepo
	roster      *fakeRosterRepo
	notifier    *fakeNotifier
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()

	assignments := newFakeAssignmentRepo()
	progress := newFakeProgressRepo()
	roster := newFakeRosterRepo()
	notifier := &fakeNotifier{}

	roster.classes[testClassID] = models.Class{ID: testClassID, Name: "7B", TeacherID: testTeacherID}
	roster.members[testClassID] = []uint{testStudentID, 11, 12}

	svc := NewAssignmentService(assignments, progress, roster, notifier,
		validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop()).(*assignmentService)

	return &assignmentFixture{
		service:     svc,
		assignments: assignments,
		progress:    progress,
		roster:      roster,
		notifier:    notifier,
	}
}

func validCreateRequest() dto.AssignmentCreateRequest {
	return dto.AssignmentCreateRequest{
		ClassID: testClassID,
		TestID:  5,
		Title:   "Fractions quiz",
	}
}

func TestCreateAssignmentSeedsRosterAndNotifies(t *testing.T) {
	f := newAssignmentFixture(t)

	response, err := f.service.Create(context.Background(), teacher(), validCreateRequest())
	require.NoError(t, err)
	require.NotZero(t, response.ID)
	require.Equal(t, testTeacherID, response.TeacherID)
	require.Equal(t, 100.0, response.MaxScore)
	require.False(t, response.Archived)

	// One assigned record per roster member.
	require.Equal(t, 3, f.progress.count())
	for _, studentID := range []uint{testStudentID, 11, 12} {
		record, ok := f.progress.stored(response.ID, studentID)
		require.True(t, ok, "student %d", studentID)
		require.Equal(t, models.StatusAssigned, record.Status)
	}

	require.Len(t, f.notifier.events, 1)
	require.Equal(t, response.ID, f.notifier.events[0].AssignmentID)
	require.ElementsMatch(t, []uint{testStudentID, 11, 12}, f.notifier.events[0].Recipients)
}

func TestCreateAssignmentZeroAttemptsRejected(t *testing.T) {
	f := newAssignmentFixture(t)

	zero := 0
	payload := validCreateRequest()
	payload.AttemptsAllowed = &zero

	_, err := f.service.Create(context.Background(), teacher(), payload)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestCreateAssignmentParsesDueDate(t *testing.T) {
	f := newAssignmentFixture(t)

	due := "2026-09-15T23:59:00Z"
	payload := validCreateRequest()
	payload.DueDate = &due

	response, err := f.service.Create(context.Background(), teacher(), payload)
	require.NoError(t, err)
	require.NotNil(t, response.DueDate)
	require.Equal(t, time.Date(2026, time.September, 15, 23, 59, 0, 0, time.UTC), response.DueDate.UTC())
}

func TestCreateAssignmentInvalidDueDateRejected(t *testing.T) {
	f := newAssignmentFixture(t)

	due := "next tuesday"
	payload := validCreateRequest()
	payload.DueDate = &due

	_, err := f.service.Create(context.Background(), teacher(), payload)
	require.Error(t, err)
}

func TestCreateAssignmentAuthorization(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.service.Create(context.Background(), student(), validCreateRequest())
	require.ErrorIs(t, err, ErrForbidden)

	otherTeacher := Actor{ID: 999, Role: RoleTeacher}
	_, err = f.service.Create(context.Background(), otherTeacher, validCreateRequest())
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateAssignmentUnknownClass(t *testing.T) {
	f := newAssignmentFixture(t)

	payload := validCreateRequest()
	payload.ClassID = 404

	_, err := f.service.Create(context.Background(), teacher(), payload)
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestCreateAssignmentNotifierFailureSwallowed(t *testing.T) {
	f := newAssignmentFixture(t)
	f.notifier.err = errors.New("broker down")

	response, err := f.service.Create(context.Background(), teacher(), validCreateRequest())
	require.NoError(t, err)
	require.True(t, f.assignments.has(response.ID))
}

func TestSetArchivedTogglesFlag(t *testing.T) {
	f := newAssignmentFixture(t)
	assignment := f.assignments.add(models.Assignment{ClassID: testClassID, TeacherID: testTeacherID, MaxScore: 100})

	archived, err := f.service.SetArchived(context.Background(), teacher(), assignment.ID, true)
	require.NoError(t, err)
	require.True(t, archived.Archived)

	unarchived, err := f.service.SetArchived(context.Background(), teacher(), assignment.ID, false)
	require.NoError(t, err)
	require.False(t, unarchived.Archived)
}

func TestDeleteAssignmentCascade(t *testing.T) {
	f := newAssignmentFixture(t)
	assignment := f.assignments.add(models.Assignment{ClassID: testClassID, TeacherID: testTeacherID, MaxScore: 100})

	require.NoError(t, f.service.Delete(context.Background(), teacher(), assignment.ID))
	require.False(t, f.assignments.has(assignment.ID))

	// Deleting an already-deleted assignment is a not-found, never partial state.
	err := f.service.Delete(context.Background(), teacher(), assignment.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestDeleteAssignmentCascadeFailureLeavesState(t *testing.T) {
	f := newAssignmentFixture(t)
	assignment := f.assignments.add(models.Assignment{ClassID: testClassID, TeacherID: testTeacherID, MaxScore: 100})
	f.assignments.cascadeErr = errors.New("disk full")

	err := f.service.Delete(context.Background(), teacher(), assignment.ID)

	var cascade *CascadeError
	require.ErrorAs(t, err, &cascade)
	require.Equal(t, assignment.ID, cascade.AssignmentID)
	require.True(t, f.assignments.has(assignment.ID))
}

func TestDeleteAssignmentRequiresOwner(t *testing.T) {
	f := newAssignmentFixture(t)
	assignment := f.assignments.add(models.Assignment{ClassID: testClassID, TeacherID: testTeacherID, MaxScore: 100})

	require.ErrorIs(t, f.service.Delete(context.Background(), student(), assignment.ID), ErrForbidden)

	otherTeacher := Actor{ID: 999, Role: RoleTeacher}
	require.ErrorIs(t, f.service.Delete(context.Background(), otherTeacher, assignment.ID), ErrForbidden)
}

func TestGetAssignmentReadAuthorization(t *testing.T) {
	f := newAssignmentFixture(t)
	assignment := f.assignments.add(models.Assignment{ClassID: testClassID, TeacherID: testTeacherID, MaxScore: 100})

	_, err := f.service.Get(context.Background(), student(), assignment.ID)
	require.NoError(t, err)

	outsider := Actor{ID: 999, Role: RoleStudent}
	_, err = f.service.Get(context.Background(), outsider, assignment.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = f.service.Get(context.Background(), system(), assignment.ID)
	require.NoError(t, err)
}

func TestListByClass(t *testing.T) {
	f := newAssignmentFixture(t)
	f.assignments.add(models.Assignment{ClassID: testClassID, TeacherID: testTeacherID, MaxScore: 100})
	f.assignments.add(models.Assignment{ClassID: testClassID, TeacherID: testTeacherID, MaxScore: 100})
	f.assignments.add(models.Assignment{ClassID: 2, TeacherID: 999, MaxScore: 100})

	assignments, err := f.service.ListByClass(context.Background(), teacher(), testClassID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
}
