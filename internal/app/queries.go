package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"placereview/internal/domain"
)

// QueryService serves the read paths. Ids are validated before storage is
// touched.
type QueryService struct {
	places  domain.PlaceRepository
	reviews domain.ReviewRepository
}

func NewQueryService(p domain.PlaceRepository, r domain.ReviewRepository) *QueryService {
	return &QueryService{places: p, reviews: r}
}

func (s *QueryService) GetPlaceByID(ctx context.Context, id int64) domain.Result[domain.PlaceDetail] {
	if f := ValidateID(id).Failure(); f != nil {
		return domain.FailWith[domain.PlaceDetail](f)
	}

	p, err := s.places.GetPlace(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Fail[domain.PlaceDetail](domain.KindPlaceNotFound, "Place not found", nil)
	}
	if err != nil {
		log.Error().Err(err).Int64("place_id", id).Msg("place fetch failed")
		return domain.Fail[domain.PlaceDetail](domain.KindPlaceFetch, "Failed to fetch place", nil)
	}

	ratings, err := s.reviews.ListRatings(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("place_id", id).Msg("rating fetch failed")
		return domain.Fail[domain.PlaceDetail](domain.KindPlaceFetch, "Failed to fetch place", nil)
	}
	count, avg := aggregateRatings(ratings)

	return domain.Success(domain.PlaceDetail{
		ID:          p.ID,
		ExternalID:  p.ExternalID,
		Name:        p.Name,
		Address:     p.Address,
		Latitude:    p.Lat,
		Longitude:   p.Lon,
		Category:    p.Category,
		AvgRating:   avg,
		ReviewCount: count,
	})
}

func (s *QueryService) GetReviewsByPlaceID(ctx context.Context, id int64) domain.Result[domain.ReviewList] {
	if f := ValidateID(id).Failure(); f != nil {
		return domain.FailWith[domain.ReviewList](f)
	}
	rs, err := s.reviews.ListReviews(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("place_id", id).Msg("reviews fetch failed")
		return domain.Fail[domain.ReviewList](domain.KindReviewsFetch, "Failed to fetch reviews", nil)
	}
	if rs == nil {
		rs = []domain.ReviewView{}
	}
	return domain.Success(domain.ReviewList{Reviews: rs})
}

func (s *QueryService) GetPlacesWithReviews(ctx context.Context) domain.Result[domain.PlaceList] {
	ps, err := s.places.ListPlacesWithReviewCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("places fetch failed")
		return domain.Fail[domain.PlaceList](domain.KindPlacesFetch, "Failed to fetch places", nil)
	}
	if ps == nil {
		ps = []domain.PlaceSummary{}
	}
	return domain.Success(domain.PlaceList{Places: ps})
}

// aggregateRatings returns the count and arithmetic mean; the mean is nil
// when there are no ratings.
func aggregateRatings(rs []float64) (int, *float64) {
	if len(rs) == 0 {
		return 0, nil
	}
	var sum float64
	for _, r := range rs {
		sum += r
	}
	avg := sum / float64(len(rs))
	return len(rs), &avg
}
