package domain

import "time"

// Engineer is read-only from the scheduling core's perspective; rows are
// maintained by the people-management surface.
type Engineer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CountryCode string    `json:"countryCode"`
	SectorIDs   []int64   `json:"sectorIDs"`
	CreatedAt   time.Time `json:"createdAt"`
}
