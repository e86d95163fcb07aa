package books

import (
	"context"
	"errors"
	"net/http"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
	"github.com/5w1tchy/books-crud/internal/apperr"
	storebooks "github.com/5w1tchy/books-crud/internal/store/books"
)

func (h *handler) delete(ctx context.Context, id int64) *httpx.Response {
	err := h.store.Delete(ctx, id)
	if errors.Is(err, storebooks.ErrNotFound) {
		return httpx.Error(apperr.Status(err), msgNotFound)
	}
	if err != nil {
		return h.failure(ctx, "delete book", err, msgDeleteFailed)
	}
	return success(http.StatusOK, msgDeleted)
}
