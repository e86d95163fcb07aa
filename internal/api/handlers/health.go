package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
)

// Pinger is anything readiness can probe: the book store, Redis.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Healthz reports that the process is up. It touches no dependency.
func Healthz(w http.ResponseWriter, r *http.Request) {
	resp := httpx.NewResponse()
	resp.SetHTTPStatusCode(http.StatusOK)
	resp.SetSuccess(true)
	resp.AddMessage("ok")
	_ = resp.Send(w)
}

// Readyz pings every dependency and answers 503 naming the ones that failed.
func Readyz(timeout time.Duration, checks map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		var down []string
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				down = append(down, name+" unavailable")
			}
		}

		resp := httpx.NewResponse()
		if len(down) > 0 {
			resp.SetHTTPStatusCode(http.StatusServiceUnavailable)
			resp.SetSuccess(false)
			for _, m := range down {
				resp.AddMessage(m)
			}
		} else {
			resp.SetHTTPStatusCode(http.StatusOK)
			resp.SetSuccess(true)
			resp.AddMessage("ready")
		}
		_ = resp.Send(w)
	}
}

// NotFound answers every path no route claims.
func NotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(w, http.StatusNotFound, "Endpoint not found")
}
