package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ratemystudyspots/studyspots/internal/service"
	"github.com/ratemystudyspots/studyspots/pkg/health"
	"github.com/ratemystudyspots/studyspots/pkg/middleware"
)

// RouterConfig holds the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	ServiceName string
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
	// DirectoryMaxAge is the Cache-Control max-age, in seconds, of the
	// catalog-only endpoints. Zero disables the header.
	DirectoryMaxAge int
}

// NewRouter creates a chi router with all study-spot routes registered.
func NewRouter(
	directory *service.DirectoryService,
	reviews *service.ReviewService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(cfg.CORS))

	// Health, metrics and profiling
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	spotHandler := NewSpotHandler(directory, logger)
	reviewHandler := NewReviewHandler(reviews, logger)

	r.Route("/api/v1/spots", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", spotHandler.ListSpots)
		r.With(middleware.CacheControl(cfg.DirectoryMaxAge)).Get("/types", spotHandler.ListSpaceTypes)

		r.Route("/{spotKey}", func(r chi.Router) {
			r.Use(middleware.SpotScope("spotKey"))

			r.Get("/", spotHandler.GetSpot)
			r.Group(func(r chi.Router) {
				r.Use(middleware.NoStore)
				r.Get("/reviews", reviewHandler.ListReviews)
				r.Post("/reviews", reviewHandler.SubmitReview)
				r.Get("/reviews/{author}", reviewHandler.GetReview)
				r.Delete("/reviews/{author}", reviewHandler.DeleteReview)
			})
		})
	})

	return r
}
