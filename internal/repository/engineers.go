package repository

import (
	"database/sql"
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

func (r *Repository) GetEngineerByID(id int64) (*domain.Engineer, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT e.name, e.email, e.role, e.active, e.country_code, e.created_at, es.sector_id
		FROM engineers e
		LEFT JOIN engineer_sectors es ON es.engineer_id = e.id
		WHERE e.id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	engineer := &domain.Engineer{ID: id, SectorIDs: []int64{}}
	found := false

	for rows.Next() {
		var sectorID sql.NullInt64
		dst := []any{
			&engineer.Name,
			&engineer.Email,
			&engineer.Role,
			&engineer.Active,
			&engineer.CountryCode,
			&engineer.CreatedAt,
			&sectorID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		if sectorID.Valid {
			engineer.SectorIDs = append(engineer.SectorIDs, sectorID.Int64)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, sql.ErrNoRows
	}

	return engineer, nil
}

// EngineerOverview is the engineers listing: one engineer with their
// assignments falling inside the requested date range.
type EngineerOverview struct {
	Engineer    domain.Engineer      `json:"engineer"`
	Assignments []EngineerAssignment `json:"assignments"`
}

type EngineerAssignment struct {
	AssignmentID int64     `json:"assignmentID"`
	ShiftID      int64     `json:"shiftID"`
	ShiftDate    time.Time `json:"shiftDate"`
	SectorID     int64     `json:"sectorID"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (r *Repository) ListEngineers(countryCode string, sectorID *int64, from, to time.Time) ([]*EngineerOverview, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	// the parenthesized join keeps engineers without in-range assignments
	// in the result with a null assignment side
	query := `
		SELECT
			e.id,
			e.name,
			e.email,
			e.role,
			e.active,
			e.country_code,
			e.created_at,
			a.id,
			a.created_at,
			s.id,
			s.date,
			s.sector_id
		FROM engineers e
		LEFT JOIN (assignments a JOIN shifts s ON s.id = a.shift_id AND s.date >= $2 AND s.date <= $3)
			ON a.engineer_id = e.id
		WHERE e.country_code = $1
		  AND e.active = true
		  AND ($4::bigint IS NULL OR EXISTS (
			SELECT 1 FROM engineer_sectors es WHERE es.engineer_id = e.id AND es.sector_id = $4
		  ))
		ORDER BY e.name, e.id, a.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, countryCode, from, to, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overviews := []*EngineerOverview{}
	byEngineer := make(map[int64]*EngineerOverview)

	for rows.Next() {
		var engineer domain.Engineer
		var row struct {
			AssignmentID        sql.NullInt64
			AssignmentCreatedAt sql.NullTime
			ShiftID             sql.NullInt64
			ShiftDate           sql.NullTime
			ShiftSectorID       sql.NullInt64
		}

		dst := []any{
			&engineer.ID,
			&engineer.Name,
			&engineer.Email,
			&engineer.Role,
			&engineer.Active,
			&engineer.CountryCode,
			&engineer.CreatedAt,
			&row.AssignmentID,
			&row.AssignmentCreatedAt,
			&row.ShiftID,
			&row.ShiftDate,
			&row.ShiftSectorID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		overview, exists := byEngineer[engineer.ID]
		if !exists {
			overview = &EngineerOverview{
				Engineer:    engineer,
				Assignments: []EngineerAssignment{},
			}
			byEngineer[engineer.ID] = overview
			overviews = append(overviews, overview)
		}

		if !row.AssignmentID.Valid {
			continue
		}

		overview.Assignments = append(overview.Assignments, EngineerAssignment{
			AssignmentID: row.AssignmentID.Int64,
			ShiftID:      row.ShiftID.Int64,
			ShiftDate:    row.ShiftDate.Time,
			SectorID:     row.ShiftSectorID.Int64,
			CreatedAt:    row.AssignmentCreatedAt.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// attach sector memberships in a second pass, the listing join above
	// would otherwise multiply assignment rows per sector
	for _, overview := range overviews {
		sectorIDs, err := r.listEngineerSectorIDs(overview.Engineer.ID)
		if err != nil {
			return nil, err
		}
		overview.Engineer.SectorIDs = sectorIDs
	}

	return overviews, nil
}

func (r *Repository) listEngineerSectorIDs(engineerID int64) ([]int64, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT sector_id FROM engineer_sectors WHERE engineer_id = $1 ORDER BY sector_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, engineerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *Repository) CreateEngineer(e *domain.Engineer) error {
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
		INSERT INTO engineers (name, email, role, active, country_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, query, e.Name, e.Email, e.Role, e.Active, e.CountryCode).Scan(&e.ID, &e.CreatedAt); err != nil {
		return err
	}

	for _, sectorID := range e.SectorIDs {
		query = `
			INSERT INTO engineer_sectors (engineer_id, sector_id)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, e.ID, sectorID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
