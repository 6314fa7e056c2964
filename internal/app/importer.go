package app

import (
	"context"

	"placereview/internal/domain"
)

// ImportReport counts the hits of one imported query.
type ImportReport struct {
	Imported int
	Failed   int
}

// ImportSearchResults runs one search and registers every hit as a place
// without a review. Upsert failures are counted, not returned; only a failed
// search fails the import.
func (s *Services) ImportSearchResults(ctx context.Context, query string) domain.Result[ImportReport] {
	results, f := s.Search.SearchPlaces(ctx, query).Unwrap()
	if f != nil {
		return domain.FailWith[ImportReport](f)
	}

	var rep ImportReport
	for _, it := range results.Items {
		if !s.Places.Upsert(ctx, CandidateFromSearch(it)).Ok() {
			rep.Failed++
			continue
		}
		rep.Imported++
	}
	return domain.Success(rep)
}

// CandidateFromSearch maps a normalized search hit onto a place candidate.
func CandidateFromSearch(it domain.SearchResultItem) domain.PlaceCandidate {
	c := domain.PlaceCandidate{
		ExternalID: it.ExternalID,
		Name:       it.Title,
		Address:    it.Address,
		Lat:        it.Latitude,
		Lon:        it.Longitude,
	}
	if it.Category != "" {
		cat := it.Category
		c.Category = &cat
	}
	return c
}
