package books

import (
	"context"
	"errors"
	"net/http"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
	"github.com/5w1tchy/books-crud/internal/apperr"
	storebooks "github.com/5w1tchy/books-crud/internal/store/books"
)

func (h *handler) get(ctx context.Context, id int64) *httpx.Response {
	b, err := h.store.Get(ctx, id)
	if errors.Is(err, storebooks.ErrNotFound) {
		return httpx.Error(apperr.Status(err), msgNotFound)
	}
	if err != nil {
		return h.failure(ctx, "get book", err, msgGetBookFailed)
	}
	resp := withBooks(success(http.StatusOK, ""), b)
	resp.SetCacheable(true)
	return resp
}
