package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/infrastructure/metrics"
)

// Metrics returns a middleware that records HTTP metrics on m. Paths are
// labelled with the matched chi route pattern to keep cardinality bounded.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			path := routePattern(r)
			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return normalizePath(r.URL.Path)
}

// normalizePath replaces the identifier segment of known resource paths.
// /api/v1/transactions/txn_01ABC -> /api/v1/transactions/{id}
func normalizePath(path string) string {
	prefixes := []struct{ prefix, param string }{
		{"/api/v1/transactions/", "{id}"},
		{"/api/v1/companies/", "{company}"},
	}

	for _, p := range prefixes {
		if !strings.HasPrefix(path, p.prefix) {
			continue
		}
		rest := path[len(p.prefix):]
		if rest == "" || rest == "recent" || rest == "export" || rest == "delete" {
			return path
		}
		segment, suffix, _ := strings.Cut(rest, "/")
		if segment == "" {
			return path
		}
		if suffix != "" {
			suffix = "/" + suffix
		}
		return p.prefix + p.param + suffix
	}

	return path
}
