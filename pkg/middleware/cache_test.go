package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCacheControl_Methods(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "public, max-age=300"},
		{http.MethodHead, "public, max-age=300"},
		{http.MethodPost, ""},
		{http.MethodDelete, ""},
	}

	handler := CacheControl(300)(okHandler())
	for _, tc := range tests {
		t.Run(tc.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tc.method, "/api/v1/spots/types", nil))
			assert.Equal(t, tc.want, rec.Header().Get("Cache-Control"))
		})
	}
}

func TestCacheControl_ZeroMaxAgeDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	CacheControl(0)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestNoStore(t *testing.T) {
	rec := httptest.NewRecorder()
	NoStore(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/spots/gerstein-1200/reviews", nil))

	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, http.StatusOK, rec.Code)
}
