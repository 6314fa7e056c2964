package app

import "placereview/internal/domain"

// Deps are the collaborators a Services bundle is built from. Search and
// Publisher may be nil.
type Deps struct {
	Places    domain.PlaceRepository
	Reviews   domain.ReviewRepository
	Search    domain.SearchProvider
	Hasher    domain.CredentialHasher
	Publisher domain.ReviewPublisher
}

// Services is built once at startup and shared by reference with the
// handlers. It holds no mutable state of its own.
type Services struct {
	Places  *PlaceUpserter
	Reviews *ReviewService
	Queries *QueryService
	Search  *SearchService
}

func NewServices(d Deps) *Services {
	v := NewValidator()
	places := NewPlaceUpserter(d.Places)
	return &Services{
		Places:  places,
		Reviews: NewReviewService(v, places, d.Reviews, d.Hasher, d.Publisher),
		Queries: NewQueryService(d.Places, d.Reviews),
		Search:  NewSearchService(d.Search, v),
	}
}
