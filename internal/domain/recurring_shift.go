package domain

import "time"

// Weekday tokens a recurring shift can apply to. DayPublicHoliday is the
// special token that matches any holiday of the shift's country regardless
// of weekday.
const (
	DayMon           = "Mon"
	DayTue           = "Tue"
	DayWed           = "Wed"
	DayThu           = "Thu"
	DayFri           = "Fri"
	DaySat           = "Sat"
	DaySun           = "Sun"
	DayPublicHoliday = "PH"
)

// TimeOfDayLayout is the wall-clock format for StartTime/EndTime.
const TimeOfDayLayout = "15:04"

// RecurringShift is the template shift instances are generated from.
// An empty Days set marks a one-shot definition whose single instance date
// is supplied at creation time.
type RecurringShift struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	Kind          ShiftKind `json:"kind"`
	Days          []string  `json:"days"`
	RequiredCount int32     `json:"requiredCount"`
	CountryCode   string    `json:"countryCode"`
	SectorIDs     []int64   `json:"sectorIDs"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	AutoExtend    bool      `json:"autoExtend"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
}
