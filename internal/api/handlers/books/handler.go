package books

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
	"github.com/5w1tchy/books-crud/internal/api/middlewares"
	"github.com/5w1tchy/books-crud/internal/apperr"
	"github.com/5w1tchy/books-crud/internal/models"
)

type handler struct {
	store Store
	log   *slog.Logger
}

// Handler serves /books and /books/{bookid}. Every request ends in exactly
// one envelope.
func Handler(store Store, log *slog.Logger) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	h := &handler{store: store, log: log}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.serve(r.Context(), fromHTTP(r))
		if err := resp.Send(w); err != nil {
			h.log.WarnContext(r.Context(), "response not sent",
				"request_id", middlewares.RequestIDFrom(r.Context()), "err", err)
		}
	}
}

func (h *handler) serve(ctx context.Context, req request) *httpx.Response {
	if req.item {
		id, ok := models.ParseID(req.rawID)
		if !ok {
			return httpx.Error(http.StatusBadRequest, msgBadID)
		}
		switch req.method {
		case http.MethodGet:
			return h.get(ctx, id)
		case http.MethodPut, http.MethodPatch:
			return h.update(ctx, id, req)
		case http.MethodDelete:
			return h.delete(ctx, id)
		}
		return notAllowed(allowItem)
	}

	if req.unknownQuery {
		return httpx.Error(http.StatusNotFound, msgEndpointNotFound)
	}
	switch req.method {
	case http.MethodGet:
		return h.list(ctx)
	case http.MethodPost:
		return h.create(ctx, req)
	}
	return notAllowed(allowCollection)
}

func notAllowed(allow string) *httpx.Response {
	resp := httpx.Error(apperr.Status(apperr.ErrMethodNotAllowed), msgMethodNotAllowed)
	resp.SetHeader("Allow", allow)
	return resp
}

// jsonBody runs the content-type and body checks shared by POST, PUT and
// PATCH. A nil response means the body is usable.
func jsonBody(req request) (map[string]json.RawMessage, *httpx.Response) {
	if !isJSON(req.contentType) {
		return nil, httpx.Error(http.StatusBadRequest, msgNotJSONContent)
	}
	if req.bodyErr != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(req.bodyErr, &tooLarge) {
			return nil, httpx.Error(http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		}
		return nil, httpx.Error(http.StatusBadRequest, msgInvalidJSON)
	}
	body, ok := decodeBody(req.body)
	if !ok {
		return nil, httpx.Error(http.StatusBadRequest, msgInvalidJSON)
	}
	return body, nil
}

func invalid(err error) (*httpx.Response, bool) {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return nil, false
	}
	if status := apperr.Status(err); status == http.StatusBadRequest {
		return httpx.Error(status, verr.Message), true
	}
	return nil, false
}

func rejected(err error) *httpx.Response {
	if resp, ok := invalid(err); ok {
		return resp
	}
	return httpx.Error(http.StatusBadRequest, err.Error())
}

// failure logs a store error and picks the client message. Connection loss
// and corrupt rows get their own messages on every path.
func (h *handler) failure(ctx context.Context, op string, err error, msg string) *httpx.Response {
	attrs := []any{"op", op, "request_id", middlewares.RequestIDFrom(ctx), "err", err}
	var qerr *apperr.QueryError
	if errors.As(err, &qerr) && qerr.SQLState != "" {
		attrs = append(attrs, "sqlstate", qerr.SQLState)
	}
	h.log.ErrorContext(ctx, "book store failure", attrs...)

	status := apperr.Status(err)
	if status < http.StatusInternalServerError {
		status = http.StatusInternalServerError
	}
	if apperr.IsConnection(err) {
		return httpx.Error(status, msgDBConnection)
	}
	var verr *models.ValidationError
	if errors.Is(err, apperr.ErrCorrupt) && errors.As(err, &verr) {
		return httpx.Error(status, verr.Message)
	}
	return httpx.Error(status, msg)
}

func success(status int, msg string) *httpx.Response {
	resp := httpx.NewResponse()
	resp.SetHTTPStatusCode(status)
	resp.SetSuccess(true)
	if msg != "" {
		resp.AddMessage(msg)
	}
	return resp
}

func withBooks(resp *httpx.Response, books ...models.Book) *httpx.Response {
	resp.SetPayload(httpx.NewBookInfo(books...))
	return resp
}
