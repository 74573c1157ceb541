package repository

import (
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
)

func (r *Repository) GetHolidayDates(countryCode string, from, to time.Time) ([]time.Time, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT date FROM holidays
		WHERE country_code = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	rows, err := r.dbpool.QueryContext(ctx, query, countryCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return dates, nil
}

func (r *Repository) CreateHoliday(h *domain.Holiday) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO holidays (country_code, date, label)
		VALUES ($1, $2, $3)
		ON CONFLICT (country_code, date) DO NOTHING
	`

	if _, err := r.dbpool.ExecContext(ctx, query, h.CountryCode, h.Date, h.Label); err != nil {
		return err
	}

	return nil
}
