package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	goplayground "github.com/go-playground/validator/v10"

	"github.com/ratemystudyspots/studyspots/internal/domain"
	"github.com/ratemystudyspots/studyspots/internal/filter"
	"github.com/ratemystudyspots/studyspots/internal/service"
	"github.com/ratemystudyspots/studyspots/pkg/httputil"
	"github.com/ratemystudyspots/studyspots/pkg/validator"
)

func init() {
	validMinRating := func(fl goplayground.FieldLevel) bool {
		_, ok := filter.ParseMinRating(fl.Field().String())
		return ok
	}
	if err := validator.Register("min_rating", validMinRating, `must be "all" or an integer`); err != nil {
		panic(err)
	}
}

// ReviewHandler serves the review endpoints of a single study spot.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler returns a ReviewHandler backed by svc.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// AmenitiesRequest holds the optional 1-5 amenity sub-ratings.
type AmenitiesRequest struct {
	NoiseLevel         *int `json:"noise_level" validate:"omitempty,min=1,max=5"`
	OutletAvailability *int `json:"outlet_availability" validate:"omitempty,min=1,max=5"`
	WifiStrength       *int `json:"wifi_strength" validate:"omitempty,min=1,max=5"`
	Lighting           *int `json:"lighting" validate:"omitempty,min=1,max=5"`
}

// SubmitReviewRequest is the body of POST /api/v1/spots/{spotKey}/reviews.
// Tags are limited after trimming and deduplication by the review service.
type SubmitReviewRequest struct {
	Author    string            `json:"author" validate:"required,max=100"`
	Text      string            `json:"text" validate:"required,max=5000"`
	Rating    int               `json:"rating" validate:"required,min=1,max=5"`
	Tags      []string          `json:"tags"`
	Amenities *AmenitiesRequest `json:"amenities"`
}

// ListReviewsQuery holds the query parameters of the review list.
type ListReviewsQuery struct {
	MinRating string `query:"min_rating" validate:"omitempty,min_rating"`
	Sort      string `query:"sort" validate:"omitempty,oneof=newest oldest highest lowest"`
}

func (req *SubmitReviewRequest) input(spotKey string) *service.SubmitReviewInput {
	in := &service.SubmitReviewInput{
		SpotKey: spotKey,
		Author:  req.Author,
		Text:    req.Text,
		Rating:  req.Rating,
		Tags:    req.Tags,
	}
	if a := req.Amenities; a != nil {
		in.Amenities = &domain.Amenities{
			NoiseLevel:         a.NoiseLevel,
			OutletAvailability: a.OutletAvailability,
			WifiStrength:       a.WifiStrength,
			Lighting:           a.Lighting,
		}
	}
	return in
}

// ListReviews handles GET /api/v1/spots/{spotKey}/reviews
// @Summary List reviews of a study spot
// @Tags reviews
// @Produce json
// @Param spotKey path string true "Spot key"
// @Param min_rating query string false "Minimum rating or all"
// @Param sort query string false "Sort order" Enums(newest,oldest,highest,lowest)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/spots/{spotKey}/reviews [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := ListReviewsQuery{MinRating: q.Get("min_rating"), Sort: q.Get("sort")}
	if err := validator.Validate(query); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	reviews, err := h.service.ListReviews(r.Context(), chi.URLParam(r, "spotKey"), query.MinRating, query.Sort)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviews})
}

// GetReview handles GET /api/v1/spots/{spotKey}/reviews/{author}
// @Summary Get one author's review of a study spot
// @Tags reviews
// @Param author path string true "Author name or author key"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/spots/{spotKey}/reviews/{author} [get]
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.service.GetReview(r.Context(), chi.URLParam(r, "spotKey"), chi.URLParam(r, "author"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// SubmitReview handles POST /api/v1/spots/{spotKey}/reviews. A second
// submission by the same author replaces the first.
// @Summary Submit a review
// @Tags reviews
// @Accept json
// @Param request body SubmitReviewRequest true "Review to submit"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/spots/{spotKey}/reviews [post]
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	review, err := h.service.SubmitReview(r.Context(), req.input(chi.URLParam(r, "spotKey")))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// DeleteReview handles DELETE /api/v1/spots/{spotKey}/reviews/{author}. The
// review store cannot delete, so a known spot always gets 501.
// @Summary Delete a review
// @Tags reviews
// @Failure 404 {object} map[string]interface{}
// @Failure 501 {object} map[string]interface{}
// @Router /api/v1/spots/{spotKey}/reviews/{author} [delete]
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteReview(r.Context(), chi.URLParam(r, "spotKey"), chi.URLParam(r, "author")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
