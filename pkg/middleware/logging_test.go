package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratemystudyspots/studyspots/pkg/logger"
)

func serveLogged(t *testing.T, status int, header string) (map[string]any, *httptest.ResponseRecorder, string) {
	t.Helper()
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seen string
	r := chi.NewRouter()
	r.Use(RequestLogging(l))
	r.Get("/api/v1/spots/{spotKey}", func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
		w.WriteHeader(status)
		_, _ = w.Write([]byte("{}"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/spots/gerstein-1200", nil)
	if header != "" {
		req.Header.Set(CorrelationIDHeader, header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry, rec, seen
}

func TestRequestLogging_AccessLine(t *testing.T) {
	entry, rec, seen := serveLogged(t, http.StatusOK, "corr-123")

	assert.Equal(t, "corr-123", rec.Header().Get(CorrelationIDHeader))
	assert.Equal(t, "corr-123", seen)
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "/api/v1/spots/gerstein-1200", entry["path"])
	assert.Equal(t, "/api/v1/spots/{spotKey}", entry["route"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(2), entry["bytes"])
	assert.Equal(t, "corr-123", entry["correlation_id"])
}

func TestRequestLogging_LevelFollowsStatus(t *testing.T) {
	for status, level := range map[int]string{
		http.StatusCreated:             "INFO",
		http.StatusUnprocessableEntity: "WARN",
		http.StatusServiceUnavailable:  "ERROR",
	} {
		entry, _, _ := serveLogged(t, status, "")
		assert.Equal(t, level, entry["level"], "status %d", status)
	}
}

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	for name, header := range map[string]string{
		"missing":  "",
		"too long": strings.Repeat("a", maxCorrelationIDLen+1),
		"spaces":   "two words",
		"newline":  "abc\ndef",
	} {
		t.Run(name, func(t *testing.T) {
			_, rec, seen := serveLogged(t, http.StatusOK, header)

			got := rec.Header().Get(CorrelationIDHeader)
			_, err := uuid.Parse(got)
			assert.NoError(t, err)
			assert.Equal(t, got, seen)
		})
	}
}
