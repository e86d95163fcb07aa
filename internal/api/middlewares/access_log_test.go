package middlewares_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/books-crud/internal/api/middlewares"
	"github.com/5w1tchy/books-crud/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("{}"))
	})

	req := httptest.NewRequest(http.MethodGet, "/books?bookid=999", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	mw.RequestID(mw.AccessLog(log)(next)).ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "rid-1", entry["request_id"])
	assert.Equal(t, "/books", entry["path"])
	assert.EqualValues(t, 404, entry["status"])
	assert.EqualValues(t, 2, entry["bytes"])
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	h := mw.Metrics(m)(okHandler())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/12", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/13", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `books_http_requests_total{code="200",method="GET",route="/books/{bookid}"} 2`)
}

func TestMetricsMiddleware_InventedMethods(t *testing.T) {
	m := metrics.New()
	h := mw.Metrics(m)(okHandler())
	for _, method := range []string{"JUNK0", "JUNK1", "JUNK2"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/books", nil))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `books_http_requests_total{code="200",method="other",route="/books"} 3`)
	assert.NotContains(t, body, "JUNK")
}
