package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl returns a middleware that marks GET and HEAD responses as
// publicly cacheable for maxAge seconds. A non-positive maxAge disables it.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	if maxAge <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	value := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore returns a middleware that forbids caching of responses. It is used
// for routes whose content changes on every review submission.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
