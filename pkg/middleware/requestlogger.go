package middleware

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ratemystudyspots/studyspots/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, derived from
// base with the correlation and trace ids already in the context. Mount it
// after RequestLogging and Tracing. Handlers read it with logger.FromContext.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			next.ServeHTTP(w, r.WithContext(logger.NewContext(ctx, logger.WithContext(ctx, base))))
		})
	}
}

// SpotScope tags the context and the request logger with the spot key taken
// from the chi URL parameter param.
func SpotScope(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := chi.URLParam(r, param)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			l := logger.FromContext(ctx).With(slog.String("spot_key", key))
			ctx = logger.NewContext(logger.WithSpotKey(ctx, key), l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
