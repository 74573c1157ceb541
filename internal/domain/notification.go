package domain

import "time"

const (
	EventAssigned   = "assigned"
	EventReassigned = "reassigned"
	EventUnassigned = "unassigned"
)

// AssignmentEvent is the message published to the notification queue whenever
// an assignment changes. The notifier worker renders it into a mail.
type AssignmentEvent struct {
	Type         string    `json:"type"`
	ShiftID      int64     `json:"shiftID"`
	ShiftDate    time.Time `json:"shiftDate"`
	EngineerName string    `json:"engineerName"`
	To           string    `json:"to"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurredAt"`
}
