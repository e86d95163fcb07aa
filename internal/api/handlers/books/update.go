package books

import (
	"context"
	"errors"
	"net/http"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
	"github.com/5w1tchy/books-crud/internal/apperr"
	"github.com/5w1tchy/books-crud/internal/models"
	storebooks "github.com/5w1tchy/books-crud/internal/store/books"
)

// update serves PUT and PATCH alike: only the fields in the body change.
func (h *handler) update(ctx context.Context, id int64, req request) *httpx.Response {
	body, resp := jsonBody(req)
	if resp != nil {
		return resp
	}
	given := present(body)
	if len(given) == 0 {
		return httpx.Error(http.StatusBadRequest, msgNoFields)
	}

	// Validate against a scratch book so bad input never reaches the store.
	var probe models.Book
	if err := applyAll(&probe, given, body); err != nil {
		return rejected(err)
	}

	updated, err := h.store.Update(ctx, id, names(given), func(b *models.Book) error {
		return applyAll(b, given, body)
	})
	switch {
	case err == nil:
		return withBooks(success(http.StatusOK, msgUpdated), updated)
	case errors.Is(err, storebooks.ErrNotFound):
		return httpx.Error(apperr.Status(err), msgNoUpdateTarget)
	case errors.Is(err, storebooks.ErrNotModified):
		return httpx.Error(http.StatusBadRequest, msgNotModified)
	case errors.Is(err, storebooks.ErrReload):
		return h.failure(ctx, "update book", err, msgReloadUpdated)
	}
	if resp, ok := invalid(err); ok {
		return resp
	}
	return h.failure(ctx, "update book", err, msgUpdateFailed)
}
