package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"placereview/internal/adapters/observability"
	"placereview/internal/domain"
)

// ReviewService is the single write path: validate, upsert place, hash the
// credential, insert the review. Each step short-circuits on failure.
type ReviewService struct {
	validator *Validator
	places    *PlaceUpserter
	reviews   domain.ReviewRepository
	hasher    domain.CredentialHasher
	publisher domain.ReviewPublisher
	now       func() time.Time
}

func NewReviewService(v *Validator, p *PlaceUpserter, r domain.ReviewRepository, h domain.CredentialHasher, pub domain.ReviewPublisher) *ReviewService {
	return &ReviewService{validator: v, places: p, reviews: r, hasher: h, publisher: pub, now: time.Now}
}

func (s *ReviewService) CreateReview(ctx context.Context, req CreateReviewRequest) domain.Result[domain.ReviewCreated] {
	res := s.createReview(ctx, req)
	outcome := "ok"
	if f := res.Failure(); f != nil {
		outcome = string(f.Code)
	}
	observability.ObserveReviewIngest(outcome)
	return res
}

func (s *ReviewService) createReview(ctx context.Context, req CreateReviewRequest) domain.Result[domain.ReviewCreated] {
	// 1) Validate; nothing has been written yet.
	sub, f := s.validator.CreateReview(req).Unwrap()
	if f != nil {
		log.Debug().Interface("detail", f.Detail).Msg("review payload rejected")
		return domain.FailWith[domain.ReviewCreated](f)
	}

	// 2) Place id must exist before the review insert. A place created here is
	// kept even if a later step fails.
	placeID, f := s.places.Upsert(ctx, sub.Place).Unwrap()
	if f != nil {
		return domain.FailWith[domain.ReviewCreated](f)
	}

	// 3) Credential digest.
	digest, f := HashCredential(s.hasher, sub.Password).Unwrap()
	if f != nil {
		return domain.FailWith[domain.ReviewCreated](f)
	}

	// 4) Review row.
	reviewID, err := s.reviews.InsertReview(ctx, domain.Review{
		PlaceID:          placeID,
		Nickname:         sub.Nickname,
		CredentialDigest: digest,
		Rating:           sub.Rating,
		Text:             sub.Text,
	})
	if err != nil {
		log.Error().Err(err).Int64("place_id", placeID).Msg("review insert failed")
		return domain.Fail[domain.ReviewCreated](domain.KindReviewInsert, "Failed to save review", nil)
	}

	log.Info().Int64("review_id", reviewID).Int64("place_id", placeID).Msg("review created")
	s.publish(ctx, domain.ReviewEvent{
		Type:       "review_created",
		ReviewID:   reviewID,
		PlaceID:    placeID,
		ExternalID: sub.Place.ExternalID,
		Rating:     sub.Rating,
		Timestamp:  s.now().UTC(),
	})

	return domain.Success(domain.ReviewCreated{
		ReviewID:    reviewID,
		PlaceID:     placeID,
		RedirectURL: PlaceDetailPath(placeID),
	})
}

// publish is best effort; the review is already committed.
func (s *ReviewService) publish(ctx context.Context, ev domain.ReviewEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReview(ctx, ev); err != nil {
		log.Warn().Err(err).Int64("review_id", ev.ReviewID).Msg("review event publish failed")
	}
}

// PlaceDetailPath is the client route of a place detail view.
func PlaceDetailPath(placeID int64) string {
	return fmt.Sprintf("/places/%d", placeID)
}
