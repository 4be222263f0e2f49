package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ratemystudyspots/studyspots/internal/filter"
	"github.com/ratemystudyspots/studyspots/internal/service"
	"github.com/ratemystudyspots/studyspots/pkg/httputil"
	"github.com/ratemystudyspots/studyspots/pkg/pagination"
	"github.com/ratemystudyspots/studyspots/pkg/validator"
)

// SpotHandler handles HTTP requests for the study-spot directory.
type SpotHandler struct {
	directory *service.DirectoryService
	logger    *slog.Logger
}

// NewSpotHandler creates a new spot HTTP handler.
func NewSpotHandler(directory *service.DirectoryService, logger *slog.Logger) *SpotHandler {
	return &SpotHandler{
		directory: directory,
		logger:    logger,
	}
}

// --- Request DTOs ---

// ListSpotsQuery holds the directory query parameters.
type ListSpotsQuery struct {
	Search   string `query:"search" validate:"max=100"`
	Type     string `query:"type" validate:"max=100"`
	Capacity string `query:"capacity" validate:"omitempty,oneof=all small medium large"`
	Sort     string `query:"sort" validate:"omitempty,oneof=catalog rating capacity name"`
}

// SpotDetailQuery holds the review filter of the detail view.
type SpotDetailQuery struct {
	MinRating string `query:"min_rating" validate:"omitempty,min_rating"`
	Sort      string `query:"sort" validate:"omitempty,oneof=newest oldest highest lowest"`
}

// --- Handlers ---

// ListSpots handles GET /api/v1/spots
// @Summary List study spots
// @Description Returns the paginated directory with aggregated ratings, filtered and sorted
// @Tags spots
// @Produce json
// @Param search query string false "Substring of building, room number or space type"
// @Param type query string false "Space type or all"
// @Param capacity query string false "Capacity bucket" Enums(all,small,medium,large)
// @Param sort query string false "Sort order" Enums(catalog,rating,capacity,name)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page (max 100)" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/spots [get]
func (h *SpotHandler) ListSpots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := ListSpotsQuery{
		Search:   q.Get("search"),
		Type:     q.Get("type"),
		Capacity: q.Get("capacity"),
		Sort:     q.Get("sort"),
	}
	if err := validator.Validate(query); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	params := pagination.FromRequest(r)

	spots, err := h.directory.Search(r.Context(), filter.SpotQuery{
		Search:   query.Search,
		Type:     query.Type,
		Capacity: query.Capacity,
	}, query.Sort)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page := pagination.Slice(spots, params)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(page, len(spots), params),
	})
}

// ListSpaceTypes handles GET /api/v1/spots/types
// @Summary List space types
// @Description Returns "all" followed by the distinct space types of the catalog
// @Tags spots
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/spots/types [get]
func (h *SpotHandler) ListSpaceTypes(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.directory.SpaceTypes()})
}

// GetSpot handles GET /api/v1/spots/{spotKey}
// @Summary Get study spot detail
// @Description Returns the spot with its rating summary, star breakdown, reviews and similar spots
// @Tags spots
// @Produce json
// @Param spotKey path string true "Spot key"
// @Param min_rating query string false "Minimum review rating or all"
// @Param sort query string false "Review order" Enums(newest,oldest,highest,lowest)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/spots/{spotKey} [get]
func (h *SpotHandler) GetSpot(w http.ResponseWriter, r *http.Request) {
	spotKey := chi.URLParam(r, "spotKey")

	query := SpotDetailQuery{
		MinRating: r.URL.Query().Get("min_rating"),
		Sort:      r.URL.Query().Get("sort"),
	}
	if err := validator.Validate(query); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	detail, err := h.directory.GetSpotDetail(r.Context(), spotKey, query.MinRating, query.Sort)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}
