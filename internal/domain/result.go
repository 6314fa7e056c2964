package domain

import (
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "VALIDATION_ERROR"
	KindInvalidJSON    ErrorKind = "INVALID_JSON"
	KindInvalidID      ErrorKind = "INVALID_ID"
	KindPlaceNotFound  ErrorKind = "PLACE_NOT_FOUND"
	KindRateLimited    ErrorKind = "RATE_LIMIT_EXCEEDED"
	KindPlaceUpsert    ErrorKind = "PLACE_UPSERT_FAILED"
	KindPasswordHash   ErrorKind = "PASSWORD_HASH_FAILED"
	KindReviewInsert   ErrorKind = "REVIEW_INSERT_FAILED"
	KindPlaceFetch     ErrorKind = "PLACE_FETCH_FAILED"
	KindPlacesFetch    ErrorKind = "PLACES_FETCH_FAILED"
	KindReviewsFetch   ErrorKind = "REVIEWS_FETCH_FAILED"
	KindProviderFailed ErrorKind = "PROVIDER_FAILED"
	KindConfig         ErrorKind = "CONFIG_ERROR"
	KindInternal       ErrorKind = "INTERNAL_ERROR"
)

var kindStatus = map[ErrorKind]int{
	KindValidation:     http.StatusBadRequest,
	KindInvalidJSON:    http.StatusBadRequest,
	KindInvalidID:      http.StatusBadRequest,
	KindPlaceNotFound:  http.StatusNotFound,
	KindRateLimited:    http.StatusTooManyRequests,
	KindPlaceUpsert:    http.StatusInternalServerError,
	KindPasswordHash:   http.StatusInternalServerError,
	KindReviewInsert:   http.StatusInternalServerError,
	KindPlaceFetch:     http.StatusInternalServerError,
	KindPlacesFetch:    http.StatusInternalServerError,
	KindReviewsFetch:   http.StatusInternalServerError,
	KindProviderFailed: http.StatusBadGateway,
	KindConfig:         http.StatusInternalServerError,
	KindInternal:       http.StatusInternalServerError,
}

// Status returns the HTTP status bound to the kind (500 for unknown kinds).
func (k ErrorKind) Status() int {
	if s, ok := kindStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Failure is the error variant of Result. Detail carries structured data such
// as field-level validation errors and is safe to show to end users.
type Failure struct {
	Status  int       `json:"-"`
	Code    ErrorKind `json:"code"`
	Message string    `json:"message"`
	Detail  any       `json:"detail,omitempty"`
}

func NewFailure(code ErrorKind, message string, detail any) *Failure {
	return &Failure{Status: code.Status(), Code: code, Message: message, Detail: detail}
}

func (f *Failure) Error() string { return fmt.Sprintf("%s (%d): %s", f.Code, f.Status, f.Message) }

// Result is either Success{data} or Failure. The zero value is a success
// holding the zero T.
type Result[T any] struct {
	data    T
	failure *Failure
}

func Success[T any](v T) Result[T] { return Result[T]{data: v} }

func Fail[T any](code ErrorKind, message string, detail any) Result[T] {
	return Result[T]{failure: NewFailure(code, message, detail)}
}

// FailWith re-types an existing failure, typically to propagate it from one
// pipeline step to the caller.
func FailWith[T any](f *Failure) Result[T] { return Result[T]{failure: f} }

func (r Result[T]) Ok() bool          { return r.failure == nil }
func (r Result[T]) Data() T           { return r.data }
func (r Result[T]) Failure() *Failure { return r.failure }

// Unwrap returns both variants; exactly one is meaningful.
func (r Result[T]) Unwrap() (T, *Failure) { return r.data, r.failure }

// Status is the HTTP status the boundary should answer with.
func (r Result[T]) Status() int {
	if r.failure != nil {
		return r.failure.Status
	}
	return http.StatusOK
}
