package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/5w1tchy/books-crud/internal/api/handlers"
	"github.com/5w1tchy/books-crud/internal/api/handlers/books"
	"github.com/5w1tchy/books-crud/internal/metrics"
)

const readyTimeout = 2 * time.Second

// Deps are the collaborators the routes need. A nil Metrics leaves
// /metrics unmounted; Ready is what /readyz probes.
type Deps struct {
	Books   books.Store
	Log     *slog.Logger
	Metrics *metrics.Metrics
	Ready   map[string]handlers.Pinger
}

func Router(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Books: collection, ?bookid= item form and /books/{bookid} item form.
	// No method in the pattern; the handler answers 405 itself.
	bh := books.Handler(d.Books, d.Log)
	mux.Handle("/books", bh)
	mux.Handle("/books/{bookid}", bh)

	mux.HandleFunc("GET /healthz", handlers.Healthz)
	mux.Handle("GET /readyz", handlers.Readyz(readyTimeout, d.Ready))
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	mux.HandleFunc("/", handlers.NotFound)
	return mux
}
