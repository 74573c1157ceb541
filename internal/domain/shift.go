package domain

import "time"

type ShiftStatus string

const (
	StatusUnassigned ShiftStatus = "UNASSIGNED"
	StatusAssigned   ShiftStatus = "ASSIGNED"
	StatusCompleted  ShiftStatus = "COMPLETED"
)

type ShiftKind string

const (
	KindOnSite ShiftKind = "ONSITE"
	KindRemote ShiftKind = "REMOTE"
)

// Shift is one concrete, dated occurrence generated from a recurring shift
// or created directly as a one-shot. Planned times are UTC instants; performed
// times stay nil until the shift is completed.
type Shift struct {
	ID               int64       `json:"id"`
	Date             time.Time   `json:"date"`
	CountryCode      string      `json:"countryCode"`
	SectorID         int64       `json:"sectorID"`
	RecurringShiftID *int64      `json:"recurringShiftID"`
	Kind             ShiftKind   `json:"kind"`
	PlannedStart     time.Time   `json:"plannedStart"`
	PlannedEnd       time.Time   `json:"plannedEnd"`
	PerformedStart   *time.Time  `json:"performedStart"`
	PerformedEnd     *time.Time  `json:"performedEnd"`
	Status           ShiftStatus `json:"status"`
	CreatedAt        time.Time   `json:"createdAt"`
}
