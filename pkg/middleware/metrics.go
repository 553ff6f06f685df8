package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/promatch-inc/promatch-engine/pkg/metrics"
)

// Metrics returns middleware that records request duration per route.
// The route pattern from the ServeMux is used as the path label so that
// per-resource IDs don't explode label cardinality.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			path := r.Pattern
			if path == "" {
				path = r.URL.Path
			}

			metrics.RecordHTTPRequestDuration(
				r.Method,
				path,
				strconv.Itoa(wrapped.statusCode),
				time.Since(start),
			)
		})
	}
}
