package router_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/5w1tchy/books-crud/internal/api/handlers"
	"github.com/5w1tchy/books-crud/internal/api/router"
	"github.com/5w1tchy/books-crud/internal/metrics"
	"github.com/5w1tchy/books-crud/internal/models"
	storebooks "github.com/5w1tchy/books-crud/internal/store/books"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyStore has no books.
type emptyStore struct{}

func (emptyStore) List(context.Context) ([]models.Book, error) { return nil, nil }
func (emptyStore) Get(context.Context, int64) (models.Book, error) {
	return models.Book{}, storebooks.ErrNotFound
}
func (emptyStore) Create(_ context.Context, b models.Book) (models.Book, error) { return b, nil }
func (emptyStore) Update(context.Context, int64, []string, func(*models.Book) error) (models.Book, error) {
	return models.Book{}, storebooks.ErrNotFound
}
func (emptyStore) Delete(context.Context, int64) error { return storebooks.ErrNotFound }

func newRouter() http.Handler {
	return router.Router(router.Deps{
		Books:   emptyStore{},
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics.New(),
		Ready: map[string]handlers.Pinger{
			"database": handlers.PingFunc(func(context.Context) error { return nil }),
		},
	})
}

func serve(t *testing.T, h http.Handler, method, target string) (int, []string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var env struct {
		Messages []string `json:"messages"`
	}
	if rec.Header().Get("Content-Type") == "application/json;charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env.Messages
}

func TestRoutes(t *testing.T) {
	h := newRouter()
	tests := []struct {
		method, target string
		code           int
		msg            string
	}{
		{http.MethodGet, "/books", http.StatusOK, ""},
		{http.MethodGet, "/books?bookid=7", http.StatusNotFound, "Book not found"},
		{http.MethodGet, "/books/7", http.StatusNotFound, "Book not found"},
		{http.MethodDelete, "/books/7", http.StatusNotFound, "Book not found"},
		{http.MethodHead, "/books", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/authors", http.StatusNotFound, "Endpoint not found"},
		{http.MethodGet, "/books/7/cover", http.StatusNotFound, "Endpoint not found"},
		{http.MethodGet, "/healthz", http.StatusOK, "ok"},
		{http.MethodGet, "/readyz", http.StatusOK, "ready"},
	}
	for _, tt := range tests {
		code, msgs := serve(t, h, tt.method, tt.target)
		assert.Equal(t, tt.code, code, "%s %s", tt.method, tt.target)
		if tt.msg != "" {
			assert.Equal(t, []string{tt.msg}, msgs, "%s %s", tt.method, tt.target)
		}
	}
}

func TestMetricsRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
