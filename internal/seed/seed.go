package seed

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/generator"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/repository"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/utils"
)

var countries = []domain.Country{
	{Code: "US", Name: "United States", Timezone: "America/New_York"},
	{Code: "UK", Name: "United Kingdom", Timezone: "Europe/London"},
	{Code: "FR", Name: "France", Timezone: "Europe/Paris"},
	{Code: "DE", Name: "Germany", Timezone: "Europe/Berlin"},
	{Code: "CN", Name: "China", Timezone: "Asia/Shanghai"},
}

// fixed-date public holidays, repeated for every seeded year
var holidays = []struct {
	countryCode string
	month       time.Month
	day         int
	label       string
}{
	{"US", time.January, 1, "New Year's Day"},
	{"US", time.July, 4, "Independence Day"},
	{"US", time.December, 25, "Christmas Day"},
	{"UK", time.January, 1, "New Year's Day"},
	{"UK", time.December, 25, "Christmas Day"},
	{"UK", time.December, 26, "Boxing Day"},
	{"FR", time.January, 1, "Jour de l'An"},
	{"FR", time.July, 14, "Fête Nationale"},
	{"FR", time.December, 25, "Noël"},
	{"DE", time.January, 1, "Neujahr"},
	{"DE", time.October, 3, "Tag der Deutschen Einheit"},
	{"DE", time.December, 25, "Weihnachten"},
	{"CN", time.January, 1, "元旦"},
	{"CN", time.October, 1, "国庆节"},
}

var sectors = []domain.Sector{
	{Name: "Healthcare", CountryCode: "US", Active: true},
	{Name: "Finance", CountryCode: "US", Active: true},
	{Name: "Retail", CountryCode: "US", Active: true},
	{Name: "Healthcare", CountryCode: "UK", Active: true},
	{Name: "Finance", CountryCode: "UK", Active: true},
	{Name: "Healthcare", CountryCode: "FR", Active: true},
	{Name: "Finance", CountryCode: "FR", Active: true},
	{Name: "Healthcare", CountryCode: "DE", Active: true},
	{Name: "Manufacturing", CountryCode: "DE", Active: true},
	{Name: "Manufacturing", CountryCode: "CN", Active: true},
	{Name: "Retail", CountryCode: "CN", Active: true},
}

// SeedReferenceData inserts the baseline countries, holidays and sectors.
// Inserts are idempotent, so re-running the seed is safe. Returns sector ids
// grouped by country for the follow-up engineer and definition seeds.
func SeedReferenceData(repo *repository.Repository) map[string][]int64 {
	for i := range countries {
		if err := repo.CreateCountry(&countries[i]); err != nil {
			slog.Error("failed to insert country", "code", countries[i].Code, "error", err)
		}
	}

	years := []int{2025, 2026, 2027}
	for _, h := range holidays {
		for _, year := range years {
			holiday := &domain.Holiday{
				CountryCode: h.countryCode,
				Date:        time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC),
				Label:       h.label,
			}
			if err := repo.CreateHoliday(holiday); err != nil {
				slog.Error("failed to insert holiday", "label", h.label, "error", err)
			}
		}
	}

	sectorsByCountry := map[string][]int64{}
	for i := range sectors {
		s := sectors[i]
		if err := repo.CreateSector(&s); err != nil {
			slog.Error("failed to insert sector", "name", s.Name, "error", err)
			continue
		}
		sectorsByCountry[s.CountryCode] = append(sectorsByCountry[s.CountryCode], s.ID)
	}

	slog.Info("reference data seeded",
		"countries", len(countries),
		"holidays", len(holidays)*len(years),
		"sectors", len(sectors))

	return sectorsByCountry
}

// SeedEngineers inserts n random engineers per seeded country.
func SeedEngineers(repo *repository.Repository, sectorsByCountry map[string][]int64, n int) {
	inserted := 0
	for code, sectorIDs := range sectorsByCountry {
		if len(sectorIDs) == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			engineer := utils.RandomEngineer(code, "fieldops.example.com", sectorIDs)
			if err := repo.CreateEngineer(engineer); err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.ConstraintName == "engineers_email_key" {
					// generated username collided, just roll again next round
					continue
				}
				slog.Error("failed to insert engineer", "name", engineer.Name, "error", err)
				continue
			}
			inserted++
		}
	}

	slog.Info("engineers seeded", "count", inserted)
}

// SeedDefinitions inserts n random recurring definitions per country and
// expands each into shift instances for the next three months.
func SeedDefinitions(repo *repository.Repository, gen *generator.Service, sectorsByCountry map[string][]int64, n int) {
	dayPatterns := [][]string{
		{domain.DayMon, domain.DayTue, domain.DayWed, domain.DayThu, domain.DayFri},
		{domain.DaySat, domain.DaySun},
		{domain.DayMon, domain.DayWed, domain.DayFri, domain.DayPublicHoliday},
		{domain.DaySat, domain.DaySun, domain.DayPublicHoliday},
	}
	kinds := []domain.ShiftKind{domain.KindOnSite, domain.KindRemote}

	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 3, 0)

	inserted, generated := 0, 0
	for code, sectorIDs := range sectorsByCountry {
		if len(sectorIDs) == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			start, end := utils.RandomTimeWindow()
			rs := &domain.RecurringShift{
				Name:          code + " coverage " + utils.RandomID(3, 3),
				StartTime:     start,
				EndTime:       end,
				Kind:          kinds[i%len(kinds)],
				Days:          dayPatterns[i%len(dayPatterns)],
				RequiredCount: int32(i%3 + 1),
				CountryCode:   code,
				SectorIDs:     utils.RandomSubset(sectorIDs),
				StartDate:     startDate,
				EndDate:       endDate,
			}
			if err := repo.CreateRecurringShift(rs); err != nil {
				slog.Error("failed to insert definition", "name", rs.Name, "error", err)
				continue
			}
			inserted++

			count, err := gen.Generate(rs.ID, rs.StartDate, rs.EndDate)
			if err != nil {
				slog.Error("failed to generate shifts", "definition", rs.ID, "error", err)
				continue
			}
			generated += count
		}
	}

	slog.Info("definitions seeded", "definitions", inserted, "shifts", generated)
}
