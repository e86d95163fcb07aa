package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/books-crud/internal/api/middlewares"
	"github.com/google/uuid"
)

func TestRequestID_GeneratesUUID(t *testing.T) {
	var seen string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = mw.RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrapped := mw.RequestID(handler)

	req := httptest.NewRequest("GET", "/books", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	rid := rec.Header().Get("X-Request-ID")
	if rid == "" || rid != seen {
		t.Fatalf("header %q and context %q should match and be set", rid, seen)
	}
	if _, err := uuid.Parse(rid); err != nil {
		t.Errorf("generated id is not a UUID: %q", rid)
	}
}

func TestRequestID_UsesProvidedID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := mw.GetRequestID(r); got != "custom-request-id" {
			t.Errorf("GetRequestID = %q", got)
		}
	})

	wrapped := mw.RequestID(handler)

	req := httptest.NewRequest("GET", "/books", nil)
	req.Header.Set("X-Request-ID", "custom-request-id")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "custom-request-id" {
		t.Errorf("Expected custom-request-id, got %s", rec.Header().Get("X-Request-ID"))
	}
}

func TestRequestID_RejectsInvalidID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	wrapped := mw.RequestID(handler)

	req := httptest.NewRequest("GET", "/books", nil)
	req.Header.Set("X-Request-ID", "invalid@#$%id")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	rid := rec.Header().Get("X-Request-ID")
	if rid == "invalid@#$%id" {
		t.Error("Should have rejected invalid request ID")
	}
	if rid == "" {
		t.Error("Should have generated new request ID")
	}
}

func TestRequestIDFrom_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/books", nil)
	if got := mw.RequestIDFrom(req.Context()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}
