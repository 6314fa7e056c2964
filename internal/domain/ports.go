package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicate           = errors.New("duplicate key")
	ErrProviderRateLimited = errors.New("search provider: rate limited")
)

type PlaceRepository interface {
	// Write paths; InsertPlace fails with ErrDuplicate on an external id clash.
	InsertPlace(ctx context.Context, p PlaceCandidate) (int64, error)

	// Read paths; single-row lookups fail with ErrNotFound.
	FindPlaceIDByExternalID(ctx context.Context, externalID string) (int64, error)
	GetPlace(ctx context.Context, id int64) (Place, error)
	ListPlacesWithReviewCounts(ctx context.Context) ([]PlaceSummary, error)
}

type ReviewRepository interface {
	InsertReview(ctx context.Context, r Review) (int64, error)
	ListRatings(ctx context.Context, placeID int64) ([]float64, error)
	// ListReviews returns newest first.
	ListReviews(ctx context.Context, placeID int64) ([]ReviewView, error)
}

// SearchProvider returns the raw provider response body for a local search.
type SearchProvider interface {
	SearchLocal(ctx context.Context, query string, display int) ([]byte, error)
}

type CredentialHasher interface {
	Hash(secret string) (string, error)
	Verify(digest, secret string) bool
}

type ReviewPublisher interface {
	PublishReview(ctx context.Context, ev ReviewEvent) error
}
