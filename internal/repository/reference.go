package repository

import (
	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

func (r *Repository) CreateCountry(c *domain.Country) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO countries (code, name, timezone)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO NOTHING
	`

	if _, err := r.dbpool.ExecContext(ctx, query, c.Code, c.Name, c.Timezone); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateSector(s *domain.Sector) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO sectors (name, country_code, active)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := r.dbpool.QueryRowContext(ctx, query, s.Name, s.CountryCode, s.Active).Scan(&s.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) ListSectors(countryCode string) ([]*domain.Sector, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, name, country_code, active
		FROM sectors
		WHERE ($1 = '' OR country_code = $1)
		ORDER BY name
	`

	rows, err := r.dbpool.QueryContext(ctx, query, countryCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sectors := []*domain.Sector{}
	for rows.Next() {
		var s domain.Sector
		if err := rows.Scan(&s.ID, &s.Name, &s.CountryCode, &s.Active); err != nil {
			return nil, err
		}
		sectors = append(sectors, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sectors, nil
}
