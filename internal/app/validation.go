package app

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"placereview/internal/domain"
)

// Inbound payloads. Numbers are pointers so a missing field is distinguishable
// from an explicit zero.

type PlaceInput struct {
	ExternalID string   `json:"naver_place_id" validate:"required,max=128"`
	Name       string   `json:"name" validate:"required,max=200"`
	Address    string   `json:"address" validate:"required,max=300"`
	Latitude   *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Category   *string  `json:"category,omitempty" validate:"omitempty,max=100"`
}

type ReviewInput struct {
	Nickname string   `json:"nickname" validate:"required,max=20"`
	Password string   `json:"password" validate:"required,pin4"`
	Rating   *float64 `json:"rating" validate:"required,gte=1,lte=5,halfstep"`
	Text     *string  `json:"review_text,omitempty" validate:"omitempty,max=500"`
}

type CreateReviewRequest struct {
	Place  *PlaceInput  `json:"place" validate:"required"`
	Review *ReviewInput `json:"review" validate:"required"`
}

type searchQuery struct {
	Query string `json:"query" validate:"required,max=100"`
}

// ReviewSubmission is a CreateReviewRequest that passed validation.
type ReviewSubmission struct {
	Place    domain.PlaceCandidate
	Nickname string
	Password string
	Rating   float64
	Text     *string
}

// FieldError is one entry of the VALIDATION_ERROR detail.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

var pin4 = regexp.MustCompile(`^[0-9]{4}$`)

// Validator wraps a configured validator.Validate; safe for concurrent use.
type Validator struct{ v *validator.Validate }

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("pin4", func(fl validator.FieldLevel) bool {
		return pin4.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("halfstep", func(fl validator.FieldLevel) bool {
		d := fl.Field().Float() * 2
		return d == math.Trunc(d)
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(PlaceInput)
		// (0,0) is the provider's "no coordinate" marker.
		if p.Latitude != nil && p.Longitude != nil && *p.Latitude == 0 && *p.Longitude == 0 {
			sl.ReportError(p.Latitude, "latitude", "Latitude", "nonzero_coords", "")
		}
	}, PlaceInput{})
	return &Validator{v: v}
}

// CreateReview normalizes (trims) and checks a review creation payload. The
// caller's request is left untouched.
func (v *Validator) CreateReview(req CreateReviewRequest) domain.Result[ReviewSubmission] {
	if req.Place != nil {
		pc := *req.Place
		req.Place = &pc
		req.Place.ExternalID = strings.TrimSpace(req.Place.ExternalID)
		req.Place.Name = strings.TrimSpace(req.Place.Name)
		req.Place.Address = strings.TrimSpace(req.Place.Address)
		if req.Place.Category != nil && strings.TrimSpace(*req.Place.Category) == "" {
			req.Place.Category = nil
		}
	}
	if req.Review != nil {
		rc := *req.Review
		req.Review = &rc
		req.Review.Nickname = strings.TrimSpace(req.Review.Nickname)
		if req.Review.Text != nil && *req.Review.Text == "" {
			req.Review.Text = nil
		}
	}

	if err := v.v.Struct(req); err != nil {
		return domain.FailWith[ReviewSubmission](validationFailure("Invalid request data", err))
	}

	p, r := req.Place, req.Review
	return domain.Success(ReviewSubmission{
		Place: domain.PlaceCandidate{
			ExternalID: p.ExternalID,
			Name:       p.Name,
			Address:    p.Address,
			Category:   p.Category,
			Lat:        *p.Latitude,
			Lon:        *p.Longitude,
		},
		Nickname: r.Nickname,
		Password: r.Password,
		Rating:   *r.Rating,
		Text:     r.Text,
	})
}

// SearchQuery returns the trimmed query or a VALIDATION_ERROR.
func (v *Validator) SearchQuery(q string) domain.Result[string] {
	in := searchQuery{Query: strings.TrimSpace(q)}
	if err := v.v.Struct(in); err != nil {
		return domain.FailWith[string](validationFailure("Search query is required", err))
	}
	return domain.Success(in.Query)
}

// ValidateID accepts strictly positive ids.
func ValidateID(id int64) domain.Result[int64] {
	if id <= 0 {
		return domain.Fail[int64](domain.KindInvalidID, "Invalid place ID", nil)
	}
	return domain.Success(id)
}

// ParseID parses a path parameter and applies ValidateID.
func ParseID(raw string) domain.Result[int64] {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return domain.Fail[int64](domain.KindInvalidID, "Invalid place ID", nil)
	}
	return ValidateID(id)
}

func validationFailure(msg string, err error) *domain.Failure {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewFailure(domain.KindValidation, msg, nil)
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return domain.NewFailure(domain.KindValidation, msg, out)
}

// TypeMismatch is the VALIDATION_ERROR for a well-formed payload whose value
// at field has the wrong JSON type. An empty field means the whole body.
func TypeMismatch(field, want string) *domain.Failure {
	name := field
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		name = field[i+1:]
	}
	if name == "" {
		name = "body"
	}
	return domain.NewFailure(domain.KindValidation, "Invalid request data", []FieldError{{
		Field:   field,
		Rule:    "type",
		Message: name + " must be of type " + want,
	}})
}

// fieldPath drops the root struct name: "CreateReviewRequest.review.rating" -> "review.rating".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fe.Field() + " must be " + fe.Param() + " characters or less"
		}
		return fe.Field() + " must be at most " + fe.Param()
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "lte":
		return fe.Field() + " must be at most " + fe.Param()
	case "pin4":
		return fe.Field() + " must be exactly 4 digits"
	case "halfstep":
		return fe.Field() + " must be in 0.5 increments"
	case "nonzero_coords":
		return "latitude and longitude cannot both be zero"
	default:
		return fe.Field() + " is invalid"
	}
}
