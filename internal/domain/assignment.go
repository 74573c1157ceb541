package domain

import "time"

// Assignment links one engineer to one shift. Unique per (shiftID, engineerID).
type Assignment struct {
	ID         int64     `json:"id"`
	ShiftID    int64     `json:"shiftID"`
	EngineerID int64     `json:"engineerID"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}
