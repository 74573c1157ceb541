package repository

import (
	"database/sql"
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT date, country_code, sector_id, recurring_shift_id, kind, planned_start, planned_end, performed_start, performed_end, status, created_at
		FROM shifts
		WHERE id = $1
	`

	shift := &domain.Shift{ID: id}
	dst := []any{
		&shift.Date,
		&shift.CountryCode,
		&shift.SectorID,
		&shift.RecurringShiftID,
		&shift.Kind,
		&shift.PlannedStart,
		&shift.PlannedEnd,
		&shift.PerformedStart,
		&shift.PerformedEnd,
		&shift.Status,
		&shift.CreatedAt,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return shift, nil
}

func (r *Repository) ShiftExists(recurringShiftID, sectorID int64, date time.Time) (bool, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM shifts
			WHERE recurring_shift_id = $1 AND sector_id = $2 AND date = $3
		)
	`

	var exists bool
	if err := r.dbpool.QueryRowContext(ctx, query, recurringShiftID, sectorID, date).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// InsertShifts writes a generated batch in one transaction. Residual
// duplicates (a racing generation call that won the existence check) are
// dropped by ON CONFLICT DO NOTHING, keeping generation idempotent.
func (r *Repository) InsertShifts(shifts []*domain.Shift) error {
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
		INSERT INTO shifts (date, country_code, sector_id, recurring_shift_id, kind, planned_start, planned_end, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (recurring_shift_id, sector_id, date) DO NOTHING
	`

	for _, s := range shifts {
		params := []any{s.Date, s.CountryCode, s.SectorID, s.RecurringShiftID, s.Kind, s.PlannedStart, s.PlannedEnd, s.Status}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// HasOverlappingAssignment reports whether the engineer already holds an
// assignment whose planned window intersects [start, end). Half-open
// semantics: shifts that merely touch at an endpoint do not conflict.
func (r *Repository) HasOverlappingAssignment(engineerID int64, start, end time.Time, excludeShiftID int64) (bool, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM assignments a
			JOIN shifts s ON s.id = a.shift_id
			WHERE a.engineer_id = $1
			  AND s.id <> $2
			  AND s.planned_start < $4
			  AND s.planned_end > $3
		)
	`

	var exists bool
	if err := r.dbpool.QueryRowContext(ctx, query, engineerID, excludeShiftID, start, end).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) UpdateShiftPerformed(shiftID int64, performedStart, performedEnd time.Time, status domain.ShiftStatus) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE shifts
		SET performed_start = $1, performed_end = $2, status = $3
		WHERE id = $4
	`

	res, err := r.dbpool.ExecContext(ctx, query, performedStart, performedEnd, status, shiftID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ScheduleEntry is one shift of the schedule view with its sector and
// assigned engineers resolved.
type ScheduleEntry struct {
	Shift       domain.Shift       `json:"shift"`
	SectorName  string             `json:"sectorName"`
	Assignments []ScheduleAssignee `json:"assignments"`
}

type ScheduleAssignee struct {
	AssignmentID int64     `json:"assignmentID"`
	EngineerID   int64     `json:"engineerID"`
	EngineerName string    `json:"engineerName"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *Repository) ListSchedule(countryCode string, from, to time.Time) ([]*ScheduleEntry, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			s.id,
			s.date,
			s.country_code,
			s.sector_id,
			s.recurring_shift_id,
			s.kind,
			s.planned_start,
			s.planned_end,
			s.performed_start,
			s.performed_end,
			s.status,
			s.created_at,
			sec.name,
			a.id,
			a.created_at,
			e.id,
			e.name
		FROM shifts s
		JOIN sectors sec ON sec.id = s.sector_id
		LEFT JOIN assignments a ON a.shift_id = s.id
		LEFT JOIN engineers e ON e.id = a.engineer_id
		WHERE s.country_code = $1 AND s.date >= $2 AND s.date <= $3
		ORDER BY s.date, s.sector_id, s.id, a.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, countryCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*ScheduleEntry{}
	byShift := make(map[int64]*ScheduleEntry)

	for rows.Next() {
		var shift domain.Shift
		var sectorName string
		var row struct {
			AssignmentID        sql.NullInt64
			AssignmentCreatedAt sql.NullTime
			EngineerID          sql.NullInt64
			EngineerName        sql.NullString
		}

		dst := []any{
			&shift.ID,
			&shift.Date,
			&shift.CountryCode,
			&shift.SectorID,
			&shift.RecurringShiftID,
			&shift.Kind,
			&shift.PlannedStart,
			&shift.PlannedEnd,
			&shift.PerformedStart,
			&shift.PerformedEnd,
			&shift.Status,
			&shift.CreatedAt,
			&sectorName,
			&row.AssignmentID,
			&row.AssignmentCreatedAt,
			&row.EngineerID,
			&row.EngineerName,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		entry, exists := byShift[shift.ID]
		if !exists {
			entry = &ScheduleEntry{
				Shift:       shift,
				SectorName:  sectorName,
				Assignments: []ScheduleAssignee{},
			}
			byShift[shift.ID] = entry
			entries = append(entries, entry)
		}

		// shifts without assignments come back with a null join side
		if !row.AssignmentID.Valid {
			continue
		}

		entry.Assignments = append(entry.Assignments, ScheduleAssignee{
			AssignmentID: row.AssignmentID.Int64,
			EngineerID:   row.EngineerID.Int64,
			EngineerName: row.EngineerName.String,
			CreatedAt:    row.AssignmentCreatedAt.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
