package books

import (
	"context"
	"errors"
	"net/http"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
	"github.com/5w1tchy/books-crud/internal/models"
	storebooks "github.com/5w1tchy/books-crud/internal/store/books"
)

func (h *handler) create(ctx context.Context, req request) *httpx.Response {
	body, resp := jsonBody(req)
	if resp != nil {
		return resp
	}

	// Every missing field is reported, not just the first.
	given := present(body)
	if len(given) < len(bookFields) {
		resp := httpx.NewResponse()
		resp.SetHTTPStatusCode(http.StatusBadRequest)
		resp.SetSuccess(false)
		have := make(map[string]bool, len(given))
		for _, f := range given {
			have[f.name] = true
		}
		for _, f := range bookFields {
			if !have[f.name] {
				resp.AddMessage(f.missing)
			}
		}
		return resp
	}

	var b models.Book
	if err := applyAll(&b, bookFields, body); err != nil {
		return rejected(err)
	}
	if err := b.SetEtag(models.GenerateEtag()); err != nil {
		return rejected(err)
	}

	created, err := h.store.Create(ctx, b)
	switch {
	case err == nil:
		return withBooks(success(http.StatusCreated, msgCreated), created)
	case errors.Is(err, storebooks.ErrNotInserted):
		return h.failure(ctx, "create book", err, msgAddFailed)
	case errors.Is(err, storebooks.ErrReload):
		return h.failure(ctx, "create book", err, msgReloadCreated)
	}
	if resp, ok := invalid(err); ok {
		return resp
	}
	return h.failure(ctx, "create book", err, msgInsertFailed)
}
