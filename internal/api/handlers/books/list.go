package books

import (
	"context"
	"net/http"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
)

func (h *handler) list(ctx context.Context) *httpx.Response {
	books, err := h.store.List(ctx)
	if err != nil {
		return h.failure(ctx, "list books", err, msgGetBooksFailed)
	}
	resp := withBooks(success(http.StatusOK, ""), books...)
	resp.SetCacheable(true)
	return resp
}
