package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"placereview/internal/app"
	"placereview/internal/domain"
)

const (
	maxBodyBytes = 64 << 10
	qrSize       = 256
)

type Handlers struct {
	S             *app.Services
	Limiter       RateLimiter
	PublicBaseURL string
}

type errorEnvelope struct {
	Error *domain.Failure `json:"error"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/api", func(r chi.Router) {
		r.With(RateLimit(h.Limiter)).Post("/reviews", h.createReview)
		r.Get("/places/with-reviews", h.listPlaces)
		r.Get("/places/{placeId}", h.getPlace)
		r.Get("/places/{placeId}/reviews", h.listReviews)
		r.Get("/places/{placeId}/qr", h.placeQR)
		r.Get("/search/places", h.searchPlaces)
	})
}

func writeFailure(w http.ResponseWriter, f *domain.Failure) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.Status)
	if err := json.NewEncoder(w).Encode(errorEnvelope{Error: f}); err != nil {
		log.Error().Err(err).Msg("write JSON error response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// respond writes a read result with a weak ETag and answers 304 when the
// client already holds that version.
func respond[T any](w http.ResponseWriter, r *http.Request, res domain.Result[T]) {
	data, f := res.Unwrap()
	if f != nil {
		writeFailure(w, f)
		return
	}
	etag, body := calcETagAndBody(data)
	if body == nil {
		writeFailure(w, domain.NewFailure(domain.KindInternal, "Failed to encode response", nil))
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write response body")
	}
}

func (h *Handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var req app.CreateReviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, decodeFailure(err))
		return
	}

	data, f := h.S.Reviews.CreateReview(r.Context(), req).Unwrap()
	if f != nil {
		writeFailure(w, f)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api"+app.PlaceDetailPath(data.PlaceID))
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to write createReview body")
	}
}

// decodeFailure keeps INVALID_JSON for bodies that do not parse. Parsable
// bodies with a wrongly typed value are validation errors.
func decodeFailure(err error) *domain.Failure {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return app.TypeMismatch(te.Field, jsonType(te.Type))
	}
	log.Debug().Err(err).Msg("review body is not valid JSON")
	msg := "Request body must be valid JSON"
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		msg = "Request body is too large"
	}
	return domain.NewFailure(domain.KindInvalidJSON, msg, nil)
}

func jsonType(t reflect.Type) string {
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return t.String()
	}
}

func (h *Handlers) listPlaces(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.S.Queries.GetPlacesWithReviews(r.Context()))
}

func (h *Handlers) getPlace(w http.ResponseWriter, r *http.Request) {
	id, f := app.ParseID(chi.URLParam(r, "placeId")).Unwrap()
	if f != nil {
		writeFailure(w, f)
		return
	}
	respond(w, r, h.S.Queries.GetPlaceByID(r.Context(), id))
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, f := app.ParseID(chi.URLParam(r, "placeId")).Unwrap()
	if f != nil {
		writeFailure(w, f)
		return
	}
	respond(w, r, h.S.Queries.GetReviewsByPlaceID(r.Context(), id))
}

func (h *Handlers) searchPlaces(w http.ResponseWriter, r *http.Request) {
	res := h.S.Search.SearchPlaces(r.Context(), r.URL.Query().Get("query"))
	if f := res.Failure(); f != nil && f.Code == domain.KindRateLimited {
		w.Header().Set("Retry-After", "1")
	}
	respond(w, r, res)
}

// placeQR renders a PNG QR code linking to the public place page.
func (h *Handlers) placeQR(w http.ResponseWriter, r *http.Request) {
	id, f := app.ParseID(chi.URLParam(r, "placeId")).Unwrap()
	if f != nil {
		writeFailure(w, f)
		return
	}
	if f := h.S.Queries.GetPlaceByID(r.Context(), id).Failure(); f != nil {
		writeFailure(w, f)
		return
	}

	link := strings.TrimRight(h.PublicBaseURL, "/") + app.PlaceDetailPath(id)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Int64("place_id", id).Msg("qr encode failed")
		writeFailure(w, domain.NewFailure(domain.KindInternal, "Failed to render QR code", nil))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="place-%d.png"`, id))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Error().Err(err).Msg("failed to write qr body")
	}
}
