package service

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/AsadUlm/brainburst-progress-api/internal/models"
	"github.com/AsadUlm/brainburst-progress-api/internal/repository"
)

// fakeProgressRepo is an in-memory ProgressRepository with the same optimistic
// version semantics as the GORM implementation.
type fakeProgressRepo struct {
	mu      sync.Mutex
	records map[string]models.ProgressRecord
	nextID  uint

	// failUpdates injects that many ErrVersionConflict results before
	// updates start succeeding again.
	failUpdates int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: map[string]models.ProgressRecord{}}
}

func progressKey(assignmentID, studentID uint) string {
	return fmt.Sprintf("%d:%d", assignmentID, studentID)
}

func (f *fakeProgressRepo) Get(_ context.Context, assignmentID, studentID uint) (models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.records[progressKey(assignmentID, studentID)]
	if !ok {
		return models.ProgressRecord{}, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeProgressRepo) ListByAssignment(_ context.Context, assignmentID uint) ([]models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var records []models.ProgressRecord
	for _, record := range f.records {
		if record.AssignmentID == assignmentID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (f *fakeProgressRepo) ListByAssignmentIDs(_ context.Context, assignmentIDs []uint) ([]models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	wanted := make(map[uint]struct{}, len(assignmentIDs))
	for _, id := range assignmentIDs {
		wanted[id] = struct{}{}
	}

	var records []models.ProgressRecord
	for _, record := range f.records {
		if _, ok := wanted[record.AssignmentID]; ok {
			records = append(records, record)
		}
	}
	return records, nil
}

func (f *fakeProgressRepo) ListByStudent(_ context.Context, studentID uint) ([]models.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var records []models.ProgressRecord
	for _, record := range f.records {
		if record.StudentID == studentID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (f *fakeProgressRepo) Create(_ context.Context, record *models.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := progressKey(record.AssignmentID, record.StudentID)
	if _, exists := f.records[key]; exists {
		return repository.ErrDuplicateRecord
	}

	f.nextID++
	record.ID = f.nextID
	record.Version = 0
	f.records[key] = *record
	return nil
}

func (f *fakeProgressRepo) CreateBatch(ctx context.Context, records []models.ProgressRecord) error {
	for i := range records {
		if err := f.Create(ctx, &records[i]); err != nil && err != repository.ErrDuplicateRecord {
			return err
		}
	}
	return nil
}

func (f *fakeProgressRepo) Update(_ context.Context, record *models.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpdates > 0 {
		f.failUpdates--
		return repository.ErrVersionConflict
	}

	key := progressKey(record.AssignmentID, record.StudentID)
	stored, ok := f.records[key]
	if !ok || stored.Version != record.Version {
		return repository.ErrVersionConflict
	}

	record.Version++
	f.records[key] = *record
	return nil
}

func (f *fakeProgressRepo) stored(assignmentID, studentID uint) (models.ProgressRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	record, ok := f.records[progressKey(assignmentID, studentID)]
	return record, ok
}

func (f *fakeProgressRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uint]models.Assignment
	nextID      uint

	// cascadeErr makes DeleteCascade fail without touching any state, the
	// way a rolled-back transaction would.
	cascadeErr error
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: map[uint]models.Assignment{}}
}

func (f *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	assignment, ok := f.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) ListByClass(_ context.Context, classID uint) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var assignments []models.Assignment
	for _, assignment := range f.assignments {
		if assignment.ClassID == classID {
			assignments = append(assignments, assignment)
		}
	}
	return assignments, nil
}

func (f *fakeAssignmentRepo) ListActiveByClass(_ context.Context, classID uint) ([]models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var assignments []models.Assignment
	for _, assignment := range f.assignments {
		if assignment.ClassID == classID && !assignment.Archived {
			assignments = append(assignments, assignment)
		}
	}
	return assignments, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	assignment.ID = f.nextID
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.assignments[assignment.ID] = *assignment
	return nil
}

func (f *fakeAssignmentRepo) DeleteCascade(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if f.cascadeErr != nil {
		return f.cascadeErr
	}

	delete(f.assignments, id)
	return nil
}

func (f *fakeAssignmentRepo) add(assignment models.Assignment) models.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()

	if assignment.ID == 0 {
		f.nextID++
		assignment.ID = f.nextID
	} else if assignment.ID > f.nextID {
		f.nextID = assignment.ID
	}
	f.assignments[assignment.ID] = assignment
	return assignment
}

func (f *fakeAssignmentRepo) has(id uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.assignments[id]
	return ok
}

type fakeRosterRepo struct {
	classes map[uint]models.Class
	members map[uint][]uint
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{
		classes: map[uint]models.Class{},
		members: map[uint][]uint{},
	}
}

func (f *fakeRosterRepo) GetClass(_ context.Context, classID uint) (models.Class, error) {
	class, ok := f.classes[classID]
	if !ok {
		return models.Class{}, gorm.ErrRecordNotFound
	}
	return class, nil
}

func (f *fakeRosterRepo) ListStudentIDs(_ context.Context, classID uint) ([]uint, error) {
	return f.members[classID], nil
}

func (f *fakeRosterRepo) IsMember(_ context.Context, classID, studentID uint) (bool, error) {
	for _, id := range f.members[classID] {
		if id == studentID {
			return true, nil
		}
	}
	return false, nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results []models.TestResult

	createErr error
}

func (f *fakeResultRepo) CreateTestResult(_ context.Context, result *models.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeResultRepo) ListTestResults(_ context.Context, assignmentID, studentID uint) ([]models.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var results []models.TestResult
	for _, result := range f.results {
		if result.AssignmentID == assignmentID && result.StudentID == studentID {
			results = append(results, result)
		}
	}
	return results, nil
}

func (f *fakeResultRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []AssignmentCreatedEvent
	err    error
}

func (f *fakeNotifier) AssignmentCreated(_ context.Context, event AssignmentCreatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}
