package domain

import "time"

// Review is a stored rating for one place. CredentialDigest never leaves the
// write path; read paths use ReviewView.
type Review struct {
	ID               int64
	PlaceID          int64
	Nickname         string
	CredentialDigest string
	Rating           float64
	Text             *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type ReviewView struct {
	ID        int64     `json:"id"`
	PlaceID   int64     `json:"place_id"`
	Nickname  string    `json:"nickname"`
	Rating    float64   `json:"rating"`
	Text      *string   `json:"review_text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewList struct {
	Reviews []ReviewView `json:"reviews"`
}

// ReviewCreated is the success payload of the ingestion pipeline.
type ReviewCreated struct {
	ReviewID    int64  `json:"reviewId"`
	PlaceID     int64  `json:"placeId"`
	RedirectURL string `json:"redirectUrl"`
}

// ReviewEvent is emitted after a review has been persisted.
type ReviewEvent struct {
	Type       string    `json:"type"`
	ReviewID   int64     `json:"review_id"`
	PlaceID    int64     `json:"place_id"`
	ExternalID string    `json:"naver_place_id"`
	Rating     float64   `json:"rating"`
	Timestamp  time.Time `json:"timestamp"`
}
