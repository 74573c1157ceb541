package assignment

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/lock"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/scheduling"
)

// memLocker is a process-local Locker with real mutual exclusion, enough to
// exercise the conflict paths without Redis.
type memLocker struct {
	mu   sync.Mutex
	held map[string]string
	fail bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: map[string]string{}}
}

func (l *memLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return "", lock.ErrUnavailable
	}
	if _, ok := l.held[key]; ok {
		return "", nil
	}
	token := uuid.NewString()
	l.held[key] = token
	return token, nil
}

func (l *memLocker) Release(ctx context.Context, key string, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != token {
		return false, nil
	}
	delete(l.held, key)
	return true, nil
}

type assignmentKey struct {
	shiftID    int64
	engineerID int64
}

type fakeStore struct {
	shifts      map[int64]*domain.Shift
	engineers   map[int64]*domain.Engineer
	definitions map[int64]*domain.RecurringShift
	assignments map[assignmentKey]*domain.Assignment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shifts:      map[int64]*domain.Shift{},
		engineers:   map[int64]*domain.Engineer{},
		definitions: map[int64]*domain.RecurringShift{},
		assignments: map[assignmentKey]*domain.Assignment{},
	}
}

func (f *fakeStore) GetShiftByID(id int64) (*domain.Shift, error) {
	s, ok := f.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeStore) GetEngineerByID(id int64) (*domain.Engineer, error) {
	e, ok := f.engineers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (f *fakeStore) GetRecurringShiftByID(id int64) (*domain.RecurringShift, error) {
	rs, ok := f.definitions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rs, nil
}

func (f *fakeStore) GetAssignment(shiftID, engineerID int64) (*domain.Assignment, error) {
	a, ok := f.assignments[assignmentKey{shiftID, engineerID}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return a, nil
}

func (f *fakeStore) CountAssignments(shiftID int64) (int, error) {
	count := 0
	for k := range f.assignments {
		if k.shiftID == shiftID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) HasOverlappingAssignment(engineerID int64, start, end time.Time, excludeShiftID int64) (bool, error) {
	for k := range f.assignments {
		if k.engineerID != engineerID || k.shiftID == excludeShiftID {
			continue
		}
		other := f.shifts[k.shiftID]
		if other.PlannedStart.Before(end) && other.PlannedEnd.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateAssignment(a *domain.Assignment, status domain.ShiftStatus) error {
	f.assignments[assignmentKey{a.ShiftID, a.EngineerID}] = a
	f.shifts[a.ShiftID].Status = status
	return nil
}

func (f *fakeStore) SwapAssignment(shiftID, fromEngineerID int64, replacement *domain.Assignment, status domain.ShiftStatus, performedStart, performedEnd *time.Time) error {
	delete(f.assignments, assignmentKey{shiftID, fromEngineerID})
	f.assignments[assignmentKey{shiftID, replacement.EngineerID}] = replacement
	shift := f.shifts[shiftID]
	shift.Status = status
	shift.PerformedStart = performedStart
	shift.PerformedEnd = performedEnd
	return nil
}

func (f *fakeStore) UnassignEngineer(shiftID int64, engineerID *int64) (int, error) {
	for k := range f.assignments {
		if k.shiftID != shiftID {
			continue
		}
		if engineerID == nil || k.engineerID == *engineerID {
			delete(f.assignments, k)
		}
	}
	remaining, _ := f.CountAssignments(shiftID)
	f.shifts[shiftID].Status = scheduling.StatusAfterUnassign(remaining)
	return remaining, nil
}

func (f *fakeStore) UpdateShiftPerformed(shiftID int64, performedStart, performedEnd time.Time, status domain.ShiftStatus) error {
	shift := f.shifts[shiftID]
	shift.PerformedStart = &performedStart
	shift.PerformedEnd = &performedEnd
	shift.Status = status
	return nil
}

func fixture() (*fakeStore, *Engine) {
	store := newFakeStore()
	engine := NewEngine(store, newMemLocker(), time.Second)
	engine.now = func() time.Time {
		return time.Date(2025, time.November, 10, 12, 0, 0, 0, time.UTC)
	}

	rsID := int64(1)
	store.definitions[rsID] = &domain.RecurringShift{ID: rsID, RequiredCount: 2, Active: true}
	store.shifts[100] = &domain.Shift{
		ID:               100,
		Date:             time.Date(2025, time.November, 14, 0, 0, 0, 0, time.UTC),
		SectorID:         10,
		RecurringShiftID: &rsID,
		PlannedStart:     time.Date(2025, time.November, 14, 9, 0, 0, 0, time.UTC),
		PlannedEnd:       time.Date(2025, time.November, 14, 17, 0, 0, 0, time.UTC),
		Status:           domain.StatusUnassigned,
	}
	store.engineers[1] = &domain.Engineer{ID: 1, Name: "Sarah Evans", Active: true, SectorIDs: []int64{10, 20}}
	store.engineers[2] = &domain.Engineer{ID: 2, Name: "Jean Martin", Active: true, SectorIDs: []int64{10}}
	store.engineers[3] = &domain.Engineer{ID: 3, Name: "Klaus Weber", Active: true, SectorIDs: []int64{20}}
	store.engineers[4] = &domain.Engineer{ID: 4, Name: "Emma Clark", Active: false, SectorIDs: []int64{10}}

	return store, engine
}

func TestAssign(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	a, err := engine.Assign(ctx, 100, 1, "ops@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if a.CreatedBy != "ops@example.com" {
		t.Errorf("CreatedBy = %q", a.CreatedBy)
	}
	if store.shifts[100].Status != domain.StatusAssigned {
		t.Errorf("shift status = %s", store.shifts[100].Status)
	}
}

func TestAssignRejections(t *testing.T) {
	cases := []struct {
		name       string
		shiftID    int64
		engineerID int64
		want       scheduling.Kind
	}{
		{"missing shift", 999, 1, scheduling.KindShiftNotFound},
		{"missing engineer", 100, 999, scheduling.KindEngineerNotFound},
		{"inactive engineer", 100, 4, scheduling.KindEngineerInactive},
		{"wrong sector", 100, 3, scheduling.KindSectorMismatch},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, engine := fixture()
			_, err := engine.Assign(context.Background(), c.shiftID, c.engineerID, "ops")
			if got := scheduling.KindOf(err); got != c.want {
				t.Fatalf("kind = %s, want %s (err: %v)", got, c.want, err)
			}
		})
	}
}

func TestAssignTwiceRejected(t *testing.T) {
	_, engine := fixture()
	ctx := context.Background()

	if _, err := engine.Assign(ctx, 100, 1, "ops"); err != nil {
		t.Fatal(err)
	}
	_, err := engine.Assign(ctx, 100, 1, "ops")
	if got := scheduling.KindOf(err); got != scheduling.KindAlreadyAssigned {
		t.Fatalf("kind = %s, want ALREADY_ASSIGNED", got)
	}
}

func TestAssignOverlapRejected(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	// second shift overlapping the first by one hour
	store.shifts[101] = &domain.Shift{
		ID:           101,
		SectorID:     10,
		PlannedStart: time.Date(2025, time.November, 14, 16, 0, 0, 0, time.UTC),
		PlannedEnd:   time.Date(2025, time.November, 14, 23, 0, 0, 0, time.UTC),
		Status:       domain.StatusUnassigned,
	}

	if _, err := engine.Assign(ctx, 100, 1, "ops"); err != nil {
		t.Fatal(err)
	}
	_, err := engine.Assign(ctx, 101, 1, "ops")
	if got := scheduling.KindOf(err); got != scheduling.KindOverlappingShift {
		t.Fatalf("kind = %s, want OVERLAPPING_SHIFT", got)
	}
}

func TestAssignBackToBackAllowed(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	// second shift starting exactly when the first ends
	store.shifts[101] = &domain.Shift{
		ID:           101,
		SectorID:     10,
		PlannedStart: time.Date(2025, time.November, 14, 17, 0, 0, 0, time.UTC),
		PlannedEnd:   time.Date(2025, time.November, 14, 23, 0, 0, 0, time.UTC),
		Status:       domain.StatusUnassigned,
	}

	if _, err := engine.Assign(ctx, 100, 1, "ops"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Assign(ctx, 101, 1, "ops"); err != nil {
		t.Fatalf("back-to-back shifts must not count as overlap: %v", err)
	}
}

func TestAssignCapacityReached(t *testing.T) {
	store, engine := fixture()
	store.engineers[5] = &domain.Engineer{ID: 5, Name: "Laura Hall", Active: true, SectorIDs: []int64{10}}
	ctx := context.Background()

	if _, err := engine.Assign(ctx, 100, 1, "ops"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Assign(ctx, 100, 2, "ops"); err != nil {
		t.Fatal(err)
	}

	// the definition requires two engineers, a third is one too many
	_, err := engine.Assign(ctx, 100, 5, "ops")
	if got := scheduling.KindOf(err); got != scheduling.KindCapacityReached {
		t.Fatalf("kind = %s, want CAPACITY_REACHED", got)
	}
}

func TestAssignLockConflict(t *testing.T) {
	_, engine := fixture()
	ctx := context.Background()

	locker := engine.locks.(*memLocker)
	token, err := locker.Acquire(ctx, lock.ShiftKey(100), time.Second)
	if err != nil || token == "" {
		t.Fatal("setup: could not take the lock")
	}

	_, err = engine.Assign(ctx, 100, 1, "ops")
	if got := scheduling.KindOf(err); got != scheduling.KindLockConflict {
		t.Fatalf("kind = %s, want LOCK_CONFLICT", got)
	}

	// released lock frees the shift again
	if _, err := locker.Release(ctx, lock.ShiftKey(100), token); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Assign(ctx, 100, 1, "ops"); err != nil {
		t.Fatal(err)
	}
}

func TestAssignLockBackendDown(t *testing.T) {
	_, engine := fixture()
	engine.locks.(*memLocker).fail = true

	_, err := engine.Assign(context.Background(), 100, 1, "ops")
	if got := scheduling.KindOf(err); got != scheduling.KindLockUnavailable {
		t.Fatalf("kind = %s, want LOCK_UNAVAILABLE", got)
	}
}

func TestReassign(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	if _, err := engine.Assign(ctx, 100, 1, "ops"); err != nil {
		t.Fatal(err)
	}

	a, err := engine.Reassign(ctx, 100, 2, 1, "ops")
	if err != nil {
		t.Fatal(err)
	}
	if a.EngineerID != 2 {
		t.Fatalf("replacement engineer = %d", a.EngineerID)
	}
	if _, err := store.GetAssignment(100, 1); err == nil {
		t.Fatal("source assignment still present")
	}
	if store.shifts[100].Status != domain.StatusAssigned {
		t.Fatalf("shift status = %s", store.shifts[100].Status)
	}
	if store.shifts[100].PerformedStart != nil {
		t.Fatal("future shift must not get performed times")
	}
}

func TestReassignSourceNotAssigned(t *testing.T) {
	_, engine := fixture()

	_, err := engine.Reassign(context.Background(), 100, 2, 1, "ops")
	if got := scheduling.KindOf(err); got != scheduling.KindSourceNotAssigned {
		t.Fatalf("kind = %s, want SOURCE_NOT_ASSIGNED", got)
	}
}

func TestReassignPastShiftCompletes(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	shift := store.shifts[100]
	shift.PlannedStart = time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)
	shift.PlannedEnd = time.Date(2025, time.November, 3, 17, 0, 0, 0, time.UTC)

	if _, err := engine.Assign(ctx, 100, 1, "ops"); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Reassign(ctx, 100, 2, 1, "ops"); err != nil {
		t.Fatal(err)
	}

	if shift.Status != domain.StatusCompleted {
		t.Fatalf("past shift status = %s, want COMPLETED", shift.Status)
	}
	if shift.PerformedStart == nil || !shift.PerformedStart.Equal(shift.PlannedStart) {
		t.Fatal("performed start must copy the planned start")
	}
	if shift.PerformedEnd == nil || !shift.PerformedEnd.Equal(shift.PlannedEnd) {
		t.Fatal("performed end must copy the planned end")
	}
}

func TestUnassignOne(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	_, _ = engine.Assign(ctx, 100, 1, "ops")
	_, _ = engine.Assign(ctx, 100, 2, "ops")

	remaining, err := engine.Unassign(ctx, 100, ptr(int64(1)), "ops")
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 1 {
		t.Fatalf("remaining = %d", remaining)
	}
	if store.shifts[100].Status != domain.StatusAssigned {
		t.Fatalf("status = %s", store.shifts[100].Status)
	}
}

func TestUnassignAll(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	_, _ = engine.Assign(ctx, 100, 1, "ops")
	_, _ = engine.Assign(ctx, 100, 2, "ops")

	remaining, err := engine.Unassign(ctx, 100, nil, "ops")
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Fatalf("remaining = %d", remaining)
	}
	if store.shifts[100].Status != domain.StatusUnassigned {
		t.Fatalf("status = %s, want UNASSIGNED", store.shifts[100].Status)
	}
}

func TestUnassignNotAssigned(t *testing.T) {
	_, engine := fixture()

	_, err := engine.Unassign(context.Background(), 100, ptr(int64(1)), "ops")
	if got := scheduling.KindOf(err); got != scheduling.KindAssignmentNotFound {
		t.Fatalf("kind = %s, want ASSIGNMENT_NOT_FOUND", got)
	}
}

func pastDated(store *fakeStore) *domain.Shift {
	shift := store.shifts[100]
	shift.PlannedStart = time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)
	shift.PlannedEnd = time.Date(2025, time.November, 3, 17, 0, 0, 0, time.UTC)
	return shift
}

func TestMarkPerformed(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	shift := pastDated(store)
	_, _ = engine.Assign(ctx, 100, 1, "ops")

	start := shift.PlannedStart.Add(15 * time.Minute)
	end := shift.PlannedEnd.Add(30 * time.Minute)
	shift, err := engine.MarkPerformed(ctx, 100, start, end)
	if err != nil {
		t.Fatal(err)
	}
	if shift.Status != domain.StatusCompleted {
		t.Fatalf("status = %s", shift.Status)
	}
	if store.shifts[100].PerformedEnd == nil || !store.shifts[100].PerformedEnd.Equal(end) {
		t.Fatal("performed end not persisted")
	}
}

func TestMarkPerformedRejections(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	start := time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)

	// inverted window
	_, err := engine.MarkPerformed(ctx, 100, start, start)
	if got := scheduling.KindOf(err); got != scheduling.KindValidation {
		t.Fatalf("inverted window: kind = %s, want VALIDATION", got)
	}

	// the fixture shift ends Nov 14, four days after now
	_, _ = engine.Assign(ctx, 100, 1, "ops")
	_, err = engine.MarkPerformed(ctx, 100, start, start.Add(8*time.Hour))
	if got := scheduling.KindOf(err); got != scheduling.KindValidation {
		t.Fatalf("future shift: kind = %s, want VALIDATION", got)
	}
	if store.shifts[100].Status == domain.StatusCompleted {
		t.Fatal("future-dated shift reached COMPLETED")
	}

	// past-dated but never assigned
	store2, engine2 := fixture()
	pastDated(store2)
	_, err = engine2.MarkPerformed(ctx, 100, start, start.Add(8*time.Hour))
	if got := scheduling.KindOf(err); got != scheduling.KindValidation {
		t.Fatalf("unassigned shift: kind = %s, want VALIDATION", got)
	}
}

func TestMarkPerformedLockConflict(t *testing.T) {
	store, engine := fixture()
	ctx := context.Background()

	pastDated(store)
	_, _ = engine.Assign(ctx, 100, 1, "ops")

	locker := engine.locks.(*memLocker)
	token, err := locker.Acquire(ctx, lock.ShiftKey(100), time.Second)
	if err != nil || token == "" {
		t.Fatal("setup: could not take the lock")
	}

	start := time.Date(2025, time.November, 3, 9, 0, 0, 0, time.UTC)
	_, err = engine.MarkPerformed(ctx, 100, start, start.Add(8*time.Hour))
	if got := scheduling.KindOf(err); got != scheduling.KindLockConflict {
		t.Fatalf("kind = %s, want LOCK_CONFLICT", got)
	}
}

func TestConcurrentAssignsSerialize(t *testing.T) {
	store, engine := fixture()
	store.engineers[5] = &domain.Engineer{ID: 5, Name: "Laura Hall", Active: true, SectorIDs: []int64{10}}
	store.engineers[6] = &domain.Engineer{ID: 6, Name: "Oliver Wright", Active: true, SectorIDs: []int64{10}}

	var wg sync.WaitGroup
	results := make(chan error, 4)
	for _, id := range []int64{1, 2, 5, 6} {
		wg.Add(1)
		go func(engineerID int64) {
			defer wg.Done()
			_, err := engine.Assign(context.Background(), 100, engineerID, "ops")
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		switch scheduling.KindOf(err) {
		case scheduling.KindLockConflict, scheduling.KindCapacityReached:
		default:
			t.Errorf("unexpected rejection: %v", err)
		}
	}

	count, _ := store.CountAssignments(100)
	if count != succeeded {
		t.Fatalf("store holds %d assignments, %d calls succeeded", count, succeeded)
	}
	if count > 2 {
		t.Fatalf("capacity of 2 exceeded: %d assignments", count)
	}
}

func ptr[T any](v T) *T {
	return &v
}
