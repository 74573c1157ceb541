package generator

import (
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/scheduling"
)

// Store is the slice of the shift store the generator needs.
type Store interface {
	GetRecurringShiftByID(id int64) (*domain.RecurringShift, error)
	ListSectorIDsForRecurringShift(id int64) ([]int64, error)
	GetHolidayDates(countryCode string, from, to time.Time) ([]time.Time, error)
	ShiftExists(recurringShiftID, sectorID int64, date time.Time) (bool, error)
	InsertShifts(shifts []*domain.Shift) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Generate expands the definition into dated shift instances for every day
// in [windowStart, windowEnd] whose weekday token (or holiday + PH token)
// matches, fanning out over the definition's sectors. Instances that already
// exist for (definition, sector, date) are skipped, so overlapping windows
// are safe to generate twice. Returns the number of instances queued for
// insertion. A missing or inactive definition is a no-op, not an error.
func (s *Service) Generate(definitionID int64, windowStart, windowEnd time.Time) (int, error) {
	rs, err := s.store.GetRecurringShiftByID(definitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, scheduling.Internal(err)
	}
	if !rs.Active {
		return 0, nil
	}

	windowStart = dayStart(windowStart)
	windowEnd = dayStart(windowEnd)

	if windowEnd.After(MaxWindowEnd(windowStart)) {
		return 0, scheduling.Errorf(scheduling.KindRangeTooLarge, "date range cannot exceed 6 months")
	}

	sectorIDs, err := s.store.ListSectorIDsForRecurringShift(rs.ID)
	if err != nil {
		return 0, scheduling.Internal(err)
	}
	if len(sectorIDs) == 0 {
		return 0, nil
	}

	holidays, err := s.store.GetHolidayDates(rs.CountryCode, windowStart, windowEnd)
	if err != nil {
		return 0, scheduling.Internal(err)
	}
	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[h.UTC().Format(time.DateOnly)] = struct{}{}
	}

	var batch []*domain.Shift
	for day := windowStart; !day.After(windowEnd); day = day.AddDate(0, 0, 1) {
		_, isHoliday := holidaySet[day.Format(time.DateOnly)]
		if !matchesDay(rs.Days, day, isHoliday) {
			continue
		}

		instances, err := s.instancesForDay(rs, sectorIDs, day)
		if err != nil {
			return 0, err
		}
		batch = append(batch, instances...)
	}

	if len(batch) > 0 {
		if err := s.store.InsertShifts(batch); err != nil {
			return 0, scheduling.Internal(err)
		}
	}

	return len(batch), nil
}

// GenerateOneShot creates the instances of a one-shot definition for exactly
// one caller-supplied date, skipping the weekday filter entirely.
func (s *Service) GenerateOneShot(definitionID int64, date time.Time) (int, error) {
	rs, err := s.store.GetRecurringShiftByID(definitionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, scheduling.Internal(err)
	}
	if !rs.Active {
		return 0, nil
	}

	sectorIDs, err := s.store.ListSectorIDsForRecurringShift(rs.ID)
	if err != nil {
		return 0, scheduling.Internal(err)
	}
	if len(sectorIDs) == 0 {
		return 0, nil
	}

	batch, err := s.instancesForDay(rs, sectorIDs, dayStart(date))
	if err != nil {
		return 0, err
	}

	if len(batch) > 0 {
		if err := s.store.InsertShifts(batch); err != nil {
			return 0, scheduling.Internal(err)
		}
	}

	return len(batch), nil
}

// instancesForDay fans one matched day out over the eligible sectors,
// checking each (definition, sector, date) individually so concurrent
// generation over overlapping windows stays idempotent.
func (s *Service) instancesForDay(rs *domain.RecurringShift, sectorIDs []int64, day time.Time) ([]*domain.Shift, error) {
	plannedStart, plannedEnd, err := PlannedWindow(day, rs.StartTime, rs.EndTime)
	if err != nil {
		return nil, scheduling.Errorf(scheduling.KindValidation, "invalid shift time window: %v", err)
	}

	var instances []*domain.Shift
	for _, sectorID := range sectorIDs {
		exists, err := s.store.ShiftExists(rs.ID, sectorID, day)
		if err != nil {
			return nil, scheduling.Internal(err)
		}
		if exists {
			continue
		}

		rsID := rs.ID
		instances = append(instances, &domain.Shift{
			Date:             day,
			CountryCode:      rs.CountryCode,
			SectorID:         sectorID,
			RecurringShiftID: &rsID,
			Kind:             rs.Kind,
			PlannedStart:     plannedStart,
			PlannedEnd:       plannedEnd,
			Status:           domain.StatusUnassigned,
		})
	}

	return instances, nil
}

func matchesDay(days []string, day time.Time, isHoliday bool) bool {
	token := day.Weekday().String()[:3]
	if slices.Contains(days, token) {
		return true
	}
	return isHoliday && slices.Contains(days, domain.DayPublicHoliday)
}

// MaxWindowEnd is the last day a window starting at windowStart may cover.
func MaxWindowEnd(windowStart time.Time) time.Time {
	d := windowStart.UTC()
	return time.Date(d.Year(), d.Month()+6, d.Day(), 23, 59, 59, 0, time.UTC)
}

// PlannedWindow combines a calendar day with the definition's wall-clock
// window. An end earlier than the start spans midnight and lands on the
// next day.
func PlannedWindow(day time.Time, startTime, endTime string) (time.Time, time.Time, error) {
	start, err := time.Parse(domain.TimeOfDayLayout, startTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(domain.TimeOfDayLayout, endTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	day = dayStart(day)
	plannedStart := day.Add(time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute)
	plannedEnd := day.Add(time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute)

	if end.Hour()*60+end.Minute() < start.Hour()*60+start.Minute() {
		plannedEnd = plannedEnd.AddDate(0, 0, 1)
	}

	return plannedStart, plannedEnd, nil
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
