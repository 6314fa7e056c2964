package domain

import "time"

// Place is a venue keyed by the search provider's identifier.
type Place struct {
	ID         int64
	ExternalID string
	Name       string
	Address    string
	Category   *string
	Lat, Lon   float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PlaceCandidate is a validated place that may or may not exist yet.
type PlaceCandidate struct {
	ExternalID string
	Name       string
	Address    string
	Category   *string
	Lat, Lon   float64
}

// Read models

type PlaceDetail struct {
	ID          int64    `json:"id"`
	ExternalID  string   `json:"naver_place_id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Category    *string  `json:"category"`
	AvgRating   *float64 `json:"avg_rating"`
	ReviewCount int      `json:"review_count"`
}

type PlaceSummary struct {
	ID          int64   `json:"id"`
	ExternalID  string  `json:"naver_place_id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Category    *string `json:"category"`
	ReviewCount int     `json:"review_count"`
}

type PlaceList struct {
	Places []PlaceSummary `json:"places"`
}
