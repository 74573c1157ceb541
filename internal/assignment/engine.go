package assignment

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/lock"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/scheduling"
)

// Store is the slice of the shift store the engine needs. All writes that
// touch more than one row happen inside a single store transaction.
type Store interface {
	GetShiftByID(id int64) (*domain.Shift, error)
	GetEngineerByID(id int64) (*domain.Engineer, error)
	GetRecurringShiftByID(id int64) (*domain.RecurringShift, error)
	GetAssignment(shiftID, engineerID int64) (*domain.Assignment, error)
	CountAssignments(shiftID int64) (int, error)
	HasOverlappingAssignment(engineerID int64, start, end time.Time, excludeShiftID int64) (bool, error)
	CreateAssignment(a *domain.Assignment, status domain.ShiftStatus) error
	SwapAssignment(shiftID, fromEngineerID int64, replacement *domain.Assignment, status domain.ShiftStatus, performedStart, performedEnd *time.Time) error
	UnassignEngineer(shiftID int64, engineerID *int64) (int, error)
	UpdateShiftPerformed(shiftID int64, performedStart, performedEnd time.Time, status domain.ShiftStatus) error
}

// Engine validates and applies assignment mutations on a single shift,
// serialized through the per-shift lock key.
type Engine struct {
	store   Store
	locks   lock.Locker
	lockTTL time.Duration
	now     func() time.Time
}

func NewEngine(store Store, locks lock.Locker, lockTTL time.Duration) *Engine {
	return &Engine{
		store:   store,
		locks:   locks,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

// check is one step of the ordered validation pipeline. Each failing step
// maps to exactly one error kind so every rejection stays debuggable.
type check struct {
	passed func() (bool, error)
	kind   scheduling.Kind
	msg    string
}

func runChecks(checks []check) error {
	for _, c := range checks {
		ok, err := c.passed()
		if err != nil {
			return scheduling.Internal(err)
		}
		if !ok {
			return scheduling.Errorf(c.kind, "%s", c.msg)
		}
	}
	return nil
}

// Assign adds one engineer to a shift on behalf of actor.
func (e *Engine) Assign(ctx context.Context, shiftID, engineerID int64, actor string) (*domain.Assignment, error) {
	release, err := e.acquire(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	defer release()

	shift, err := e.loadShift(shiftID)
	if err != nil {
		return nil, err
	}
	engineer, err := e.loadEngineer(engineerID, scheduling.KindEngineerNotFound, "engineer not found")
	if err != nil {
		return nil, err
	}

	checks := []check{
		{
			passed: func() (bool, error) { return engineer.Active, nil },
			kind:   scheduling.KindEngineerInactive,
			msg:    "engineer is not active",
		},
		{
			passed: func() (bool, error) { return slices.Contains(engineer.SectorIDs, shift.SectorID), nil },
			kind:   scheduling.KindSectorMismatch,
			msg:    "engineer is not eligible for this shift's sector",
		},
		{
			passed: func() (bool, error) { return e.notAssigned(shiftID, engineerID) },
			kind:   scheduling.KindAlreadyAssigned,
			msg:    "engineer is already assigned to this shift",
		},
		{
			passed: func() (bool, error) {
				overlaps, err := e.store.HasOverlappingAssignment(engineerID, shift.PlannedStart, shift.PlannedEnd, shiftID)
				return !overlaps, err
			},
			kind: scheduling.KindOverlappingShift,
			msg:  "engineer already holds a shift overlapping this time window",
		},
		{
			passed: func() (bool, error) { return e.hasCapacity(shift) },
			kind:   scheduling.KindCapacityReached,
			msg:    "shift has reached its required engineer count",
		},
	}
	if err := runChecks(checks); err != nil {
		return nil, err
	}

	a := &domain.Assignment{
		ShiftID:    shiftID,
		EngineerID: engineerID,
		CreatedBy:  actor,
	}
	if err := e.store.CreateAssignment(a, scheduling.StatusAfterAssign(shift.Status)); err != nil {
		return nil, scheduling.Internal(err)
	}

	return a, nil
}

// Reassign swaps the shift's assignment from one engineer to another. The
// delete, the create and the status update commit atomically. Reassigning a
// past-dated shift completes it, copying planned times into performed times.
func (e *Engine) Reassign(ctx context.Context, shiftID, engineerID, fromEngineerID int64, actor string) (*domain.Assignment, error) {
	release, err := e.acquire(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	defer release()

	shift, err := e.loadShift(shiftID)
	if err != nil {
		return nil, err
	}

	if _, err := e.store.GetAssignment(shiftID, fromEngineerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.Errorf(scheduling.KindSourceNotAssigned, "source engineer is not assigned to this shift")
		}
		return nil, scheduling.Internal(err)
	}

	target, err := e.loadEngineer(engineerID, scheduling.KindEngineerNotFound, "target engineer not found")
	if err != nil {
		return nil, err
	}

	checks := []check{
		{
			passed: func() (bool, error) { return target.Active, nil },
			kind:   scheduling.KindEngineerInactive,
			msg:    "target engineer is not active",
		},
		{
			passed: func() (bool, error) { return slices.Contains(target.SectorIDs, shift.SectorID), nil },
			kind:   scheduling.KindSectorMismatch,
			msg:    "target engineer is not eligible for this shift's sector",
		},
		{
			passed: func() (bool, error) {
				if engineerID == fromEngineerID {
					return true, nil
				}
				return e.notAssigned(shiftID, engineerID)
			},
			kind: scheduling.KindAlreadyAssigned,
			msg:  "target engineer is already assigned to this shift",
		},
	}
	if err := runChecks(checks); err != nil {
		return nil, err
	}

	replacement := &domain.Assignment{
		ShiftID:    shiftID,
		EngineerID: engineerID,
		CreatedBy:  actor,
	}

	status := domain.StatusAssigned
	var performedStart, performedEnd *time.Time
	if shift.PlannedEnd.Before(e.now()) {
		status = domain.StatusCompleted
		ps, pe := shift.PlannedStart, shift.PlannedEnd
		performedStart, performedEnd = &ps, &pe
	}

	if err := e.store.SwapAssignment(shiftID, fromEngineerID, replacement, status, performedStart, performedEnd); err != nil {
		return nil, scheduling.Internal(err)
	}

	return replacement, nil
}

// Unassign removes one engineer's assignment, or every assignment when
// engineerID is nil. Returns the number of assignments remaining on the
// shift.
func (e *Engine) Unassign(ctx context.Context, shiftID int64, engineerID *int64, actor string) (int, error) {
	release, err := e.acquire(ctx, shiftID)
	if err != nil {
		return 0, err
	}
	defer release()

	if _, err := e.loadShift(shiftID); err != nil {
		return 0, err
	}

	if engineerID != nil {
		if _, err := e.store.GetAssignment(shiftID, *engineerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, scheduling.Errorf(scheduling.KindAssignmentNotFound, "engineer has no assignment on this shift")
			}
			return 0, scheduling.Internal(err)
		}
	}

	remaining, err := e.store.UnassignEngineer(shiftID, engineerID)
	if err != nil {
		return 0, scheduling.Internal(err)
	}

	return remaining, nil
}

// MarkPerformed records the actual worked window and completes the shift.
// Only past-dated shifts can be completed, and the write is serialized
// through the same per-shift lock as the other mutations.
func (e *Engine) MarkPerformed(ctx context.Context, shiftID int64, performedStart, performedEnd time.Time) (*domain.Shift, error) {
	release, err := e.acquire(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	defer release()

	shift, err := e.loadShift(shiftID)
	if err != nil {
		return nil, err
	}
	if !performedEnd.After(performedStart) {
		return nil, scheduling.Errorf(scheduling.KindValidation, "performed end must be after performed start")
	}
	if !shift.PlannedEnd.Before(e.now()) {
		return nil, scheduling.Errorf(scheduling.KindValidation, "shift has not ended yet")
	}
	if !scheduling.CanTransition(shift.Status, domain.StatusCompleted) {
		return nil, scheduling.Errorf(scheduling.KindValidation, "shift in status %s cannot be completed", shift.Status)
	}

	if err := e.store.UpdateShiftPerformed(shiftID, performedStart, performedEnd, domain.StatusCompleted); err != nil {
		return nil, scheduling.Internal(err)
	}

	shift.PerformedStart = &performedStart
	shift.PerformedEnd = &performedEnd
	shift.Status = domain.StatusCompleted
	return shift, nil
}

// acquire takes the per-shift lock before any store read so concurrent
// mutations on the same shift cannot interleave. The returned func releases
// the lock on every exit path.
func (e *Engine) acquire(ctx context.Context, shiftID int64) (func(), error) {
	key := lock.ShiftKey(shiftID)

	token, err := e.locks.Acquire(ctx, key, e.lockTTL)
	if err != nil {
		return nil, scheduling.Errorf(scheduling.KindLockUnavailable, "lock backend unreachable")
	}
	if token == "" {
		return nil, scheduling.Errorf(scheduling.KindLockConflict, "another operation on this shift is in progress")
	}

	return func() {
		_, _ = e.locks.Release(ctx, key, token)
	}, nil
}

func (e *Engine) loadShift(shiftID int64) (*domain.Shift, error) {
	shift, err := e.store.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.Errorf(scheduling.KindShiftNotFound, "shift not found")
		}
		return nil, scheduling.Internal(err)
	}
	return shift, nil
}

func (e *Engine) loadEngineer(engineerID int64, kind scheduling.Kind, msg string) (*domain.Engineer, error) {
	engineer, err := e.store.GetEngineerByID(engineerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.Errorf(kind, "%s", msg)
		}
		return nil, scheduling.Internal(err)
	}
	return engineer, nil
}

func (e *Engine) notAssigned(shiftID, engineerID int64) (bool, error) {
	_, err := e.store.GetAssignment(shiftID, engineerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// hasCapacity enforces the originating definition's required engineer count.
// Shifts without a definition (legacy rows) are unbounded.
func (e *Engine) hasCapacity(shift *domain.Shift) (bool, error) {
	if shift.RecurringShiftID == nil {
		return true, nil
	}

	rs, err := e.store.GetRecurringShiftByID(*shift.RecurringShiftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}
		return false, err
	}
	if rs.RequiredCount <= 0 {
		return true, nil
	}

	count, err := e.store.CountAssignments(shift.ID)
	if err != nil {
		return false, err
	}

	return count < int(rs.RequiredCount), nil
}
