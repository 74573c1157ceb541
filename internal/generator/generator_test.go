package generator

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/fieldops-dev/shift-scheduler/backend/internal/domain"
	"github.com/fieldops-dev/shift-scheduler/backend/internal/scheduling"
)

type fakeStore struct {
	definitions map[int64]*domain.RecurringShift
	sectors     map[int64][]int64
	holidays    []time.Time
	existing    map[string]bool
	inserted    []*domain.Shift
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		definitions: map[int64]*domain.RecurringShift{},
		sectors:     map[int64][]int64{},
		existing:    map[string]bool{},
	}
}

func existsKey(recurringShiftID, sectorID int64, date time.Time) string {
	return fmt.Sprintf("%d/%d/%s", recurringShiftID, sectorID, date.Format(time.DateOnly))
}

func (f *fakeStore) GetRecurringShiftByID(id int64) (*domain.RecurringShift, error) {
	rs, ok := f.definitions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return rs, nil
}

func (f *fakeStore) ListSectorIDsForRecurringShift(id int64) ([]int64, error) {
	return f.sectors[id], nil
}

func (f *fakeStore) GetHolidayDates(countryCode string, from, to time.Time) ([]time.Time, error) {
	return f.holidays, nil
}

func (f *fakeStore) ShiftExists(recurringShiftID, sectorID int64, date time.Time) (bool, error) {
	return f.existing[existsKey(recurringShiftID, sectorID, date)], nil
}

func (f *fakeStore) InsertShifts(shifts []*domain.Shift) error {
	f.inserted = append(f.inserted, shifts...)
	return nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weekendDefinition(store *fakeStore) *domain.RecurringShift {
	rs := &domain.RecurringShift{
		ID:          1,
		Name:        "weekend coverage",
		StartTime:   "09:00",
		EndTime:     "17:00",
		Kind:        domain.KindOnSite,
		Days:        []string{domain.DaySat, domain.DaySun},
		CountryCode: "UK",
		Active:      true,
	}
	store.definitions[rs.ID] = rs
	store.sectors[rs.ID] = []int64{10, 20}
	return rs
}

func TestGenerateWeekendWindow(t *testing.T) {
	store := newFakeStore()
	weekendDefinition(store)
	svc := NewService(store)

	// November 2025 has 5 Saturdays and 5 Sundays
	n, err := svc.Generate(1, date(2025, time.November, 1), date(2025, time.November, 30))
	if err != nil {
		t.Fatal(err)
	}
	if n != 20 {
		t.Fatalf("generated %d instances, want 20 (10 days x 2 sectors)", n)
	}
	if len(store.inserted) != 20 {
		t.Fatalf("inserted %d instances, want 20", len(store.inserted))
	}

	for _, s := range store.inserted {
		wd := s.Date.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			t.Errorf("instance on %s falls on a %s", s.Date.Format(time.DateOnly), wd)
		}
		if s.Status != domain.StatusUnassigned {
			t.Errorf("instance created with status %s", s.Status)
		}
		if s.PlannedStart.Hour() != 9 || s.PlannedEnd.Hour() != 17 {
			t.Errorf("planned window %s-%s", s.PlannedStart, s.PlannedEnd)
		}
	}
}

func TestGenerateSkipsExistingInstances(t *testing.T) {
	store := newFakeStore()
	weekendDefinition(store)
	// the first Saturday already has instances for both sectors
	store.existing[existsKey(1, 10, date(2025, time.November, 1))] = true
	store.existing[existsKey(1, 20, date(2025, time.November, 1))] = true
	svc := NewService(store)

	n, err := svc.Generate(1, date(2025, time.November, 1), date(2025, time.November, 30))
	if err != nil {
		t.Fatal(err)
	}
	if n != 18 {
		t.Fatalf("generated %d instances, want 18", n)
	}
}

func TestGenerateRejectsOversizedWindow(t *testing.T) {
	store := newFakeStore()
	weekendDefinition(store)
	svc := NewService(store)

	_, err := svc.Generate(1, date(2025, time.January, 1), date(2025, time.August, 1))
	if scheduling.KindOf(err) != scheduling.KindRangeTooLarge {
		t.Fatalf("expected RANGE_TOO_LARGE, got %v", err)
	}
}

func TestGenerateHolidayToken(t *testing.T) {
	store := newFakeStore()
	rs := &domain.RecurringShift{
		ID:          2,
		StartTime:   "08:00",
		EndTime:     "16:00",
		Days:        []string{domain.DayPublicHoliday},
		CountryCode: "FR",
		Active:      true,
	}
	store.definitions[rs.ID] = rs
	store.sectors[rs.ID] = []int64{30}
	// July 14 2025 is a Monday
	store.holidays = []time.Time{date(2025, time.July, 14)}
	svc := NewService(store)

	n, err := svc.Generate(2, date(2025, time.July, 1), date(2025, time.July, 31))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("generated %d instances, want 1", n)
	}
	if got := store.inserted[0].Date; !got.Equal(date(2025, time.July, 14)) {
		t.Fatalf("instance on %s, want the holiday", got.Format(time.DateOnly))
	}
}

func TestGenerateOvernightWindow(t *testing.T) {
	store := newFakeStore()
	rs := &domain.RecurringShift{
		ID:          3,
		StartTime:   "22:00",
		EndTime:     "06:00",
		Days:        []string{domain.DayFri},
		CountryCode: "DE",
		Active:      true,
	}
	store.definitions[rs.ID] = rs
	store.sectors[rs.ID] = []int64{40}
	svc := NewService(store)

	// Nov 7 2025 is a Friday
	n, err := svc.Generate(3, date(2025, time.November, 7), date(2025, time.November, 7))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("generated %d instances, want 1", n)
	}

	s := store.inserted[0]
	wantStart := time.Date(2025, time.November, 7, 22, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.November, 8, 6, 0, 0, 0, time.UTC)
	if !s.PlannedStart.Equal(wantStart) || !s.PlannedEnd.Equal(wantEnd) {
		t.Fatalf("planned window %s - %s, want %s - %s", s.PlannedStart, s.PlannedEnd, wantStart, wantEnd)
	}
}

func TestGenerateInactiveOrMissingDefinition(t *testing.T) {
	store := newFakeStore()
	rs := weekendDefinition(store)
	rs.Active = false
	svc := NewService(store)

	n, err := svc.Generate(1, date(2025, time.November, 1), date(2025, time.November, 30))
	if err != nil || n != 0 {
		t.Fatalf("inactive definition: n=%d err=%v", n, err)
	}

	n, err = svc.Generate(999, date(2025, time.November, 1), date(2025, time.November, 30))
	if err != nil || n != 0 {
		t.Fatalf("missing definition: n=%d err=%v", n, err)
	}
}

func TestGenerateOneShotIgnoresWeekdayFilter(t *testing.T) {
	store := newFakeStore()
	rs := &domain.RecurringShift{
		ID:          4,
		StartTime:   "10:00",
		EndTime:     "14:00",
		Days:        []string{},
		CountryCode: "US",
		Active:      true,
	}
	store.definitions[rs.ID] = rs
	store.sectors[rs.ID] = []int64{50}
	svc := NewService(store)

	// a Wednesday, no day token would ever match
	n, err := svc.GenerateOneShot(4, date(2025, time.November, 5))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("generated %d instances, want 1", n)
	}
}

func TestPlannedWindowRejectsBadFormat(t *testing.T) {
	if _, _, err := PlannedWindow(date(2025, time.November, 5), "9am", "17:00"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMaxWindowEnd(t *testing.T) {
	end := MaxWindowEnd(date(2025, time.January, 15))
	if end.Before(date(2025, time.July, 15)) {
		t.Fatalf("six month cap too early: %s", end)
	}
	if end.After(date(2025, time.July, 16)) {
		t.Fatalf("six month cap too late: %s", end)
	}
}
