package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"placereview/internal/domain"
)

// SearchLimit is the number of provider hits requested and returned.
const SearchLimit = 5

// Provider coordinates are WGS84 degrees scaled by 1e7.
const coordScale = 10_000_000

var (
	markupTag   = regexp.MustCompile(`<[^>]*>`)
	placeLinkID = regexp.MustCompile(`place/(\d+)`)
)

type SearchService struct {
	provider  domain.SearchProvider
	validator *Validator
}

// NewSearchService accepts a nil provider; searches then fail with
// CONFIG_ERROR.
func NewSearchService(p domain.SearchProvider, v *Validator) *SearchService {
	return &SearchService{provider: p, validator: v}
}

func (s *SearchService) SearchPlaces(ctx context.Context, query string) domain.Result[domain.SearchResults] {
	q, f := s.validator.SearchQuery(query).Unwrap()
	if f != nil {
		return domain.FailWith[domain.SearchResults](f)
	}
	if s.provider == nil {
		log.Error().Msg("search provider credentials not configured")
		return domain.Fail[domain.SearchResults](domain.KindConfig, "API credentials not configured", nil)
	}

	body, err := s.provider.SearchLocal(ctx, q, SearchLimit)
	if err != nil {
		if errors.Is(err, domain.ErrProviderRateLimited) {
			return domain.Fail[domain.SearchResults](domain.KindRateLimited, "Rate limit exceeded", nil)
		}
		log.Error().Err(err).Msg("search provider failed")
		return domain.Fail[domain.SearchResults](domain.KindProviderFailed, "Search provider request failed", nil)
	}
	if !gjson.ValidBytes(body) {
		log.Error().Int("bytes", len(body)).Msg("search provider returned invalid JSON")
		return domain.Fail[domain.SearchResults](domain.KindProviderFailed, "Search provider returned an invalid response", nil)
	}

	return domain.Success(domain.SearchResults{Items: NormalizeSearchItems(body, SearchLimit)})
}

// NormalizeSearchItems converts the provider "items" array. Malformed items
// and items without coordinates are skipped one by one.
func NormalizeSearchItems(body []byte, limit int) []domain.SearchResultItem {
	out := make([]domain.SearchResultItem, 0, limit)
	gjson.GetBytes(body, "items").ForEach(func(_, it gjson.Result) bool {
		if len(out) >= limit {
			return false
		}
		if item, ok := normalizeItem(it); ok {
			out = append(out, item)
		}
		return true
	})
	return out
}

func normalizeItem(it gjson.Result) (domain.SearchResultItem, bool) {
	if !it.IsObject() {
		return domain.SearchResultItem{}, false
	}
	fields := map[string]string{}
	for _, k := range []string{"title", "address", "category", "mapx", "mapy", "link"} {
		v := it.Get(k)
		if v.Type != gjson.String {
			return domain.SearchResultItem{}, false
		}
		fields[k] = v.Str
	}

	lon, okX := scaledCoord(fields["mapx"])
	lat, okY := scaledCoord(fields["mapy"])
	if !okX || !okY || lat == 0 || lon == 0 || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return domain.SearchResultItem{}, false
	}

	title := StripMarkup(fields["title"])
	addr := StripMarkup(fields["address"])
	return domain.SearchResultItem{
		Title:      title,
		Address:    addr,
		Category:   StripMarkup(fields["category"]),
		Latitude:   lat,
		Longitude:  lon,
		ExternalID: ExternalIDFromLink(fields["link"], title, addr),
	}, true
}

func scaledCoord(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v / coordScale, true
}

// StripMarkup removes tags, decodes entities, and strips again so an encoded
// tag cannot survive decoding.
func StripMarkup(s string) string {
	s = markupTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = markupTag.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ExternalIDFromLink extracts the numeric id after "place/". Otherwise it
// derives a stable "h_"-prefixed sha1 from the link, or from title and
// address when the provider sent no link.
func ExternalIDFromLink(link, title, address string) string {
	if m := placeLinkID.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	seed := strings.TrimSpace(link)
	if seed == "" {
		seed = title + "|" + address
	}
	sum := sha1.Sum([]byte(seed))
	return "h_" + hex.EncodeToString(sum[:])
}
