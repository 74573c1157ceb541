package repository

import (
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

func (r *Repository) GetAssignment(shiftID, engineerID int64) (*domain.Assignment, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, created_by, created_at
		FROM assignments
		WHERE shift_id = $1 AND engineer_id = $2
	`

	a := &domain.Assignment{ShiftID: shiftID, EngineerID: engineerID}
	if err := r.dbpool.QueryRowContext(ctx, query, shiftID, engineerID).Scan(&a.ID, &a.CreatedBy, &a.CreatedAt); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *Repository) CountAssignments(shiftID int64) (int, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT COUNT(*) FROM assignments WHERE shift_id = $1`

	var count int
	if err := r.dbpool.QueryRowContext(ctx, query, shiftID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// CreateAssignment inserts the row and moves the shift's status in one
// transaction, so a reader never sees an assignment count at odds with the
// status.
func (r *Repository) CreateAssignment(a *domain.Assignment, status domain.ShiftStatus) error {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO assignments (shift_id, engineer_id, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, query, a.ShiftID, a.EngineerID, a.CreatedBy).Scan(&a.ID, &a.CreatedAt); err != nil {
		return err
	}

	query = `
		UPDATE shifts SET status = $1 WHERE id = $2
	`
	if _, err := tx.ExecContext(ctx, query, status, a.ShiftID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// SwapAssignment atomically replaces one engineer's assignment with another
// and updates the shift status, optionally recording performed times when a
// past-dated shift is completed by the swap.
func (r *Repository) SwapAssignment(shiftID, fromEngineerID int64, replacement *domain.Assignment, status domain.ShiftStatus, performedStart, performedEnd *time.Time) error {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		DELETE FROM assignments WHERE shift_id = $1 AND engineer_id = $2
	`
	if _, err := tx.ExecContext(ctx, query, shiftID, fromEngineerID); err != nil {
		return err
	}

	query = `
		INSERT INTO assignments (shift_id, engineer_id, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, query, replacement.ShiftID, replacement.EngineerID, replacement.CreatedBy).Scan(&replacement.ID, &replacement.CreatedAt); err != nil {
		return err
	}

	if performedStart != nil && performedEnd != nil {
		query = `
			UPDATE shifts SET status = $1, performed_start = $2, performed_end = $3 WHERE id = $4
		`
		if _, err := tx.ExecContext(ctx, query, status, performedStart, performedEnd, shiftID); err != nil {
			return err
		}
	} else {
		query = `
			UPDATE shifts SET status = $1 WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, query, status, shiftID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UnassignEngineer removes one assignment, or all of them when engineerID is
// nil, and settles the shift status on the remaining count within the same
// transaction. Returns how many assignments are left.
func (r *Repository) UnassignEngineer(shiftID int64, engineerID *int64) (int, error) {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if engineerID != nil {
		query := `
			DELETE FROM assignments WHERE shift_id = $1 AND engineer_id = $2
		`
		if _, err := tx.ExecContext(ctx, query, shiftID, *engineerID); err != nil {
			return 0, err
		}
	} else {
		query := `
			DELETE FROM assignments WHERE shift_id = $1
		`
		if _, err := tx.ExecContext(ctx, query, shiftID); err != nil {
			return 0, err
		}
	}

	var remaining int
	query := `SELECT COUNT(*) FROM assignments WHERE shift_id = $1`
	if err := tx.QueryRowContext(ctx, query, shiftID).Scan(&remaining); err != nil {
		return 0, err
	}

	if remaining == 0 {
		query = `
			UPDATE shifts SET status = $1 WHERE id = $2
		`
		if _, err := tx.ExecContext(ctx, query, domain.StatusUnassigned, shiftID); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return remaining, nil
}
