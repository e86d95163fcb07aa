package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/5w1tchy/books-crud/internal/metrics"
)

// routeLabel keeps label cardinality bounded: ids collapse into the pattern.
func routeLabel(path string) string {
	switch {
	case path == "/books", path == "/healthz", path == "/readyz", path == "/metrics":
		return path
	case strings.HasPrefix(path, "/books/"):
		return "/books/{bookid}"
	}
	return "unmatched"
}

func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.Begin()
			defer m.End()

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			m.Observe(routeLabel(r.URL.Path), r.Method, sw.code(), time.Since(start))
		})
	}
}
