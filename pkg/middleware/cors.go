package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware. Empty fields take the defaults
// noted on each.
type CORSConfig struct {
	// AllowedOrigins may contain "*" to allow any origin.
	AllowedOrigins []string
	// AllowedMethods defaults to GET, POST, DELETE, OPTIONS.
	AllowedMethods []string
	// AllowedHeaders defaults to Accept, Content-Type, X-Correlation-ID.
	AllowedHeaders []string
	// ExposedHeaders defaults to X-Correlation-ID when nil. Set it to an empty
	// slice to expose nothing.
	ExposedHeaders []string
	// MaxAge is the preflight cache lifetime in seconds, 3600 by default.
	MaxAge           int
	AllowCredentials bool
	// Environment "development" allows every origin.
	Environment string
}

type corsPolicy struct {
	anyOrigin bool
	origins   []string
	static    http.Header
}

func newCORSPolicy(cfg CORSConfig) *corsPolicy {
	orDefault := func(v, def []string) []string {
		if len(v) == 0 {
			return def
		}
		return v
	}
	exposed := cfg.ExposedHeaders
	if exposed == nil {
		exposed = []string{CorrelationIDHeader}
	}
	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = 3600
	}

	static := http.Header{}
	static.Set("Access-Control-Allow-Methods", strings.Join(orDefault(cfg.AllowedMethods,
		[]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}), ", "))
	static.Set("Access-Control-Allow-Headers", strings.Join(orDefault(cfg.AllowedHeaders,
		[]string{"Accept", "Content-Type", CorrelationIDHeader}), ", "))
	if len(exposed) > 0 {
		static.Set("Access-Control-Expose-Headers", strings.Join(exposed, ", "))
	}
	static.Set("Access-Control-Max-Age", strconv.Itoa(maxAge))
	if cfg.AllowCredentials {
		static.Set("Access-Control-Allow-Credentials", "true")
	}

	return &corsPolicy{
		anyOrigin: cfg.Environment == "development" || slices.Contains(cfg.AllowedOrigins, "*"),
		origins:   cfg.AllowedOrigins,
		static:    static,
	}
}

func (p *corsPolicy) apply(h http.Header, origin string) {
	switch {
	case p.anyOrigin:
		h.Set("Access-Control-Allow-Origin", "*")
	case origin != "" && slices.Contains(p.origins, origin):
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
	}
	for k, v := range p.static {
		h[k] = slices.Clone(v)
	}
}

// CORS sets the cross-origin headers on every response and answers OPTIONS
// preflights with 204 without reaching the router.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy.apply(w.Header(), r.Header.Get("Origin"))
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
