package middlewares

import (
	"net/http"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
)

// BodySizeLimit caps request bodies on POST, PUT and PATCH. A declared
// Content-Length over the limit is refused before the handler runs;
// otherwise the handler sees *http.MaxBytesError while reading.
func BodySizeLimit(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.ContentLength > limit {
					httpx.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
