package domain

import "time"

type Country struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type Sector struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	Active      bool   `json:"active"`
}

type Holiday struct {
	ID          int64     `json:"id"`
	CountryCode string    `json:"countryCode"`
	Date        time.Time `json:"date"`
	Label       string    `json:"label"`
}
