package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"placereview/internal/adapters/observability"
	"placereview/internal/domain"
)

// PlaceUpserter is the get-or-create engine keyed by external id. Existing
// rows are never modified (first write wins).
type PlaceUpserter struct {
	repo domain.PlaceRepository
}

func NewPlaceUpserter(r domain.PlaceRepository) *PlaceUpserter {
	return &PlaceUpserter{repo: r}
}

func (u *PlaceUpserter) Upsert(ctx context.Context, c domain.PlaceCandidate) domain.Result[int64] {
	// 1) Existing row wins; its attributes are left as they are.
	id, err := u.repo.FindPlaceIDByExternalID(ctx, c.ExternalID)
	switch {
	case err == nil:
		observability.ObservePlaceUpsert("existing")
		return domain.Success(id)
	case !errors.Is(err, domain.ErrNotFound):
		return upsertFailure(c, "lookup", err)
	}

	// 2) First sighting.
	id, err = u.repo.InsertPlace(ctx, c)
	if err == nil {
		observability.ObservePlaceUpsert("created")
		return domain.Success(id)
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return upsertFailure(c, "insert", err)
	}

	// 3) Lost the race against a concurrent insert; the unique key picked
	// the winner, so return its id.
	id, err = u.repo.FindPlaceIDByExternalID(ctx, c.ExternalID)
	if err != nil {
		return upsertFailure(c, "requery", err)
	}
	observability.ObservePlaceUpsert("race")
	log.Debug().Str("external_id", c.ExternalID).Int64("place_id", id).Msg("place insert lost race; reusing winner")
	return domain.Success(id)
}

func upsertFailure(c domain.PlaceCandidate, step string, err error) domain.Result[int64] {
	log.Error().Err(err).
		Str("external_id", c.ExternalID).
		Str("step", step).
		Msg("place upsert failed")
	return domain.Fail[int64](domain.KindPlaceUpsert, "Failed to save place", nil)
}
