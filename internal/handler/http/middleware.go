package http

import (
	"mime"
	"net/http"

	"github.com/ratemystudyspots/studyspots/pkg/httputil"
)

// ContentTypeJSON rejects requests that carry a body in anything but JSON with
// 415. Bodiless requests pass regardless of method.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBody(r) && !isJSON(r.Header.Get("Content-Type")) {
			httputil.WriteErrorCode(w, r, http.StatusUnsupportedMediaType,
				"UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return r.ContentLength > 0
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
