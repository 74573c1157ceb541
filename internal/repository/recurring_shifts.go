package repository

import (
	"database/sql"
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

func (r *Repository) CreateRecurringShift(rs *domain.RecurringShift) error {
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
		INSERT INTO recurring_shifts (name, start_time, end_time, kind, required_count, country_code, start_date, end_date, auto_extend, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		RETURNING id, created_at
	`
	params := []any{rs.Name, rs.StartTime, rs.EndTime, rs.Kind, rs.RequiredCount, rs.CountryCode, rs.StartDate, rs.EndDate, rs.AutoExtend}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&rs.ID, &rs.CreatedAt); err != nil {
		return err
	}

	for _, day := range rs.Days {
		query = `
			INSERT INTO recurring_shift_days (recurring_shift_id, day)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, rs.ID, day); err != nil {
			return err
		}
	}

	for _, sectorID := range rs.SectorIDs {
		query = `
			INSERT INTO recurring_shift_sectors (recurring_shift_id, sector_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, rs.ID, sectorID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	rs.Active = true
	return nil
}

func (r *Repository) GetRecurringShiftByID(id int64) (*domain.RecurringShift, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			rs.name,
			rs.start_time,
			rs.end_time,
			rs.kind,
			rs.required_count,
			rs.country_code,
			rs.start_date,
			rs.end_date,
			rs.auto_extend,
			rs.active,
			rs.created_at,
			rsd.day,
			rss.sector_id
		FROM recurring_shifts rs
		LEFT JOIN recurring_shift_days rsd ON rs.id = rsd.recurring_shift_id
		LEFT JOIN recurring_shift_sectors rss ON rs.id = rss.recurring_shift_id
		WHERE rs.id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rs := &domain.RecurringShift{ID: id}
	daySeen := make(map[string]bool)
	sectorSeen := make(map[int64]bool)
	found := false

	for rows.Next() {
		var row struct {
			Name          string
			StartTime     string
			EndTime       string
			Kind          string
			RequiredCount int32
			CountryCode   string
			StartDate     time.Time
			EndDate       time.Time
			AutoExtend    bool
			Active        bool
			CreatedAt     time.Time

			Day      sql.NullString
			SectorID sql.NullInt64
		}

		dst := []any{
			&row.Name,
			&row.StartTime,
			&row.EndTime,
			&row.Kind,
			&row.RequiredCount,
			&row.CountryCode,
			&row.StartDate,
			&row.EndDate,
			&row.AutoExtend,
			&row.Active,
			&row.CreatedAt,
			&row.Day,
			&row.SectorID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			found = true
			rs.Name = row.Name
			rs.StartTime = row.StartTime
			rs.EndTime = row.EndTime
			rs.Kind = domain.ShiftKind(row.Kind)
			rs.RequiredCount = row.RequiredCount
			rs.CountryCode = row.CountryCode
			rs.StartDate = row.StartDate
			rs.EndDate = row.EndDate
			rs.AutoExtend = row.AutoExtend
			rs.Active = row.Active
			rs.CreatedAt = row.CreatedAt
			rs.Days = make([]string, 0)
			rs.SectorIDs = make([]int64, 0)
		}

		// the two joins multiply rows, dedupe while collecting
		if row.Day.Valid && !daySeen[row.Day.String] {
			daySeen[row.Day.String] = true
			rs.Days = append(rs.Days, row.Day.String)
		}
		if row.SectorID.Valid && !sectorSeen[row.SectorID.Int64] {
			sectorSeen[row.SectorID.Int64] = true
			rs.SectorIDs = append(rs.SectorIDs, row.SectorID.Int64)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, sql.ErrNoRows
	}

	return rs, nil
}

func (r *Repository) ListRecurringShifts(countryCode string) ([]*domain.RecurringShift, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, start_time, end_time, kind, required_count, country_code, start_date, end_date, auto_extend, active, created_at
		FROM recurring_shifts
		WHERE active = true AND ($1 = '' OR country_code = $1)
		ORDER BY name
	`

	rows, err := r.dbpool.QueryContext(ctx, query, countryCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []*domain.RecurringShift{}
	for rows.Next() {
		var rs domain.RecurringShift
		dst := []any{
			&rs.ID,
			&rs.Name,
			&rs.StartTime,
			&rs.EndTime,
			&rs.Kind,
			&rs.RequiredCount,
			&rs.CountryCode,
			&rs.StartDate,
			&rs.EndDate,
			&rs.AutoExtend,
			&rs.Active,
			&rs.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, &rs)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) ListSectorIDsForRecurringShift(id int64) ([]int64, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	// joining sectors drops ids that no longer resolve to a real sector
	query := `
		SELECT s.id
		FROM recurring_shift_sectors rss
		JOIN sectors s ON s.id = rss.sector_id
		WHERE rss.recurring_shift_id = $1
		ORDER BY s.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var sectorID int64
		if err := rows.Scan(&sectorID); err != nil {
			return nil, err
		}
		ids = append(ids, sectorID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *Repository) ExtendRecurringShift(id int64, newEndDate time.Time) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE recurring_shifts SET end_date = $1 WHERE id = $2
	`

	res, err := r.dbpool.ExecContext(ctx, query, newEndDate, id)
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

// DeleteRecurringShiftCascade soft-deletes the definition and removes its
// generated shifts from `from` onward, assignments first. Returns the number
// of shifts removed.
func (r *Repository) DeleteRecurringShiftCascade(id int64, from time.Time) (int64, error) {
	ctx, cancel := r.txContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		DELETE FROM assignments
		WHERE shift_id IN (
			SELECT id FROM shifts WHERE recurring_shift_id = $1 AND date >= $2
		)
	`
	if _, err := tx.ExecContext(ctx, query, id, from); err != nil {
		return 0, err
	}

	query = `
		DELETE FROM shifts WHERE recurring_shift_id = $1 AND date >= $2
	`
	res, err := tx.ExecContext(ctx, query, id, from)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	query = `
		UPDATE recurring_shifts SET active = false WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return deleted, nil
}
