package app_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"placereview/internal/domain"
)

// ---- fakes ----

var errStorage = errors.New("storage unavailable")

// fakeStore implements both repositories in memory. Err fields force a
// failure of the matching call; calls counts every repository call.
type fakeStore struct {
	mu      sync.Mutex
	places  []domain.Place
	reviews []domain.Review
	calls   int

	findErr         error
	insertPlaceErr  error
	getErr          error
	listPlacesErr   error
	insertReviewErr error
	ratingsErr      error
	listReviewsErr  error

	// the first gateN lookups block until all of them have arrived, which
	// lets concurrent upserts all miss before any of them inserts
	gate        chan struct{}
	gateN       int
	gateArrived int
}

func newGatedStore(n int) *fakeStore {
	return &fakeStore{gate: make(chan struct{}), gateN: n}
}

func (f *fakeStore) FindPlaceIDByExternalID(_ context.Context, ext string) (int64, error) {
	f.mu.Lock()
	f.calls++
	gated := f.gate != nil && f.gateArrived < f.gateN
	if gated {
		f.gateArrived++
		if f.gateArrived == f.gateN {
			close(f.gate)
		}
	}
	gate := f.gate
	f.mu.Unlock()
	if gated {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return 0, f.findErr
	}
	for _, p := range f.places {
		if p.ExternalID == ext {
			return p.ID, nil
		}
	}
	return 0, domain.ErrNotFound
}

func (f *fakeStore) InsertPlace(_ context.Context, c domain.PlaceCandidate) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.insertPlaceErr != nil {
		return 0, f.insertPlaceErr
	}
	for _, p := range f.places {
		if p.ExternalID == c.ExternalID {
			return 0, domain.ErrDuplicate
		}
	}
	id := int64(len(f.places) + 1)
	f.places = append(f.places, domain.Place{
		ID: id, ExternalID: c.ExternalID, Name: c.Name, Address: c.Address,
		Category: c.Category, Lat: c.Lat, Lon: c.Lon,
	})
	return id, nil
}

func (f *fakeStore) GetPlace(_ context.Context, id int64) (domain.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.getErr != nil {
		return domain.Place{}, f.getErr
	}
	for _, p := range f.places {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Place{}, domain.ErrNotFound
}

func (f *fakeStore) ListPlacesWithReviewCounts(_ context.Context) ([]domain.PlaceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listPlacesErr != nil {
		return nil, f.listPlacesErr
	}
	var out []domain.PlaceSummary
	for _, p := range f.places {
		n := 0
		for _, r := range f.reviews {
			if r.PlaceID == p.ID {
				n++
			}
		}
		out = append(out, domain.PlaceSummary{
			ID: p.ID, ExternalID: p.ExternalID, Name: p.Name, Address: p.Address,
			Latitude: p.Lat, Longitude: p.Lon, Category: p.Category, ReviewCount: n,
		})
	}
	return out, nil
}

func (f *fakeStore) InsertReview(_ context.Context, r domain.Review) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.insertReviewErr != nil {
		return 0, f.insertReviewErr
	}
	r.ID = int64(len(f.reviews) + 1)
	r.CreatedAt = time.Date(2024, 1, 1, 0, 0, int(r.ID), 0, time.UTC)
	r.UpdatedAt = r.CreatedAt
	f.reviews = append(f.reviews, r)
	return r.ID, nil
}

func (f *fakeStore) ListRatings(_ context.Context, placeID int64) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.ratingsErr != nil {
		return nil, f.ratingsErr
	}
	var out []float64
	for _, r := range f.reviews {
		if r.PlaceID == placeID {
			out = append(out, r.Rating)
		}
	}
	return out, nil
}

func (f *fakeStore) ListReviews(_ context.Context, placeID int64) ([]domain.ReviewView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listReviewsErr != nil {
		return nil, f.listReviewsErr
	}
	var out []domain.ReviewView
	for i := len(f.reviews) - 1; i >= 0; i-- {
		r := f.reviews[i]
		if r.PlaceID == placeID {
			out = append(out, domain.ReviewView{
				ID: r.ID, PlaceID: r.PlaceID, Nickname: r.Nickname, Rating: r.Rating,
				Text: r.Text, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
			})
		}
	}
	return out, nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("entropy exhausted") }
func (failingHasher) Verify(string, string) bool  { return false }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ReviewEvent
	err    error
}

func (p *recordingPublisher) PublishReview(_ context.Context, ev domain.ReviewEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type fakeProvider struct {
	body  []byte
	err   error
	query string
	n     int
}

func (p *fakeProvider) SearchLocal(_ context.Context, query string, display int) ([]byte, error) {
	p.query, p.n = query, display
	return p.body, p.err
}

func pstr(s string) *string     { return &s }
func pfloat(f float64) *float64 { return &f }
