package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
	"github.com/5w1tchy/books-crud/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fallbackBody = `{"statusCode":500,"success":false,"messages":["Response creation error"]}`

func TestSend_SuccessWithPayload(t *testing.T) {
	id := int64(1)
	b, err := models.NewBook(&id, "Programming", "Java Programming", 430, "English", "4444444444")
	require.NoError(t, err)

	resp := httpx.NewResponse()
	resp.SetHTTPStatusCode(http.StatusOK)
	resp.SetSuccess(true)
	resp.SetCacheable(true)
	resp.SetPayload(httpx.NewBookInfo(b))

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Send(rec))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "max-age=60", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json;charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		`{"statusCode":200,"success":true,"bookInfo":{"no. of books":1,"books":[{"id":1,"category":"Programming","title":"Java Programming","pagecount":430,"language":"English","etag":"4444444444"}]}}`,
		rec.Body.String())
}

func TestSend_MessagesOnlyWhenAdded(t *testing.T) {
	resp := httpx.NewResponse()
	resp.SetHTTPStatusCode(http.StatusOK)
	resp.SetSuccess(true)

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Send(rec))
	assert.Equal(t, `{"statusCode":200,"success":true}`, rec.Body.String())
	assert.Equal(t, "no-cache, no-store", rec.Header().Get("Cache-Control"))
}

func TestSend_MessagesKeepOrder(t *testing.T) {
	resp := httpx.Error(http.StatusBadRequest, "first", "second")
	resp.AddMessage("third")

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Send(rec))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `{"statusCode":400,"success":false,"messages":["first","second","third"]}`, rec.Body.String())
}

func TestSend_FallbackWhenIncomplete(t *testing.T) {
	tests := []struct {
		name  string
		build func() *httpx.Response
	}{
		{"no status code", func() *httpx.Response {
			r := httpx.NewResponse()
			r.SetSuccess(true)
			return r
		}},
		{"no success flag", func() *httpx.Response {
			r := httpx.NewResponse()
			r.SetHTTPStatusCode(http.StatusCreated)
			r.AddMessage("Book created")
			r.SetPayload(httpx.NewBookInfo())
			return r
		}},
		{"status code out of range", func() *httpx.Response {
			r := httpx.NewResponse()
			r.SetHTTPStatusCode(42)
			r.SetSuccess(true)
			return r
		}},
		{"nothing set", httpx.NewResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.build()
			resp.SetCacheable(true)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())

			rec := httptest.NewRecorder()
			require.NoError(t, resp.Send(rec))
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, fallbackBody, rec.Body.String())
		})
	}
}

func TestSend_OnlyOnce(t *testing.T) {
	resp := httpx.Error(http.StatusNotFound, "Book not found")

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Send(rec))
	first := rec.Body.String()

	assert.ErrorIs(t, resp.Send(rec), httpx.ErrAlreadySent)
	assert.Equal(t, first, rec.Body.String())
}

func TestSend_ExtraHeaders(t *testing.T) {
	resp := httpx.Error(http.StatusMethodNotAllowed, "Request method not allowed")
	resp.SetHeader("Allow", "GET, POST")

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Send(rec))
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestNewBookInfo_Empty(t *testing.T) {
	resp := httpx.NewResponse()
	resp.SetHTTPStatusCode(http.StatusOK)
	resp.SetSuccess(true)
	resp.SetPayload(httpx.NewBookInfo())

	rec := httptest.NewRecorder()
	require.NoError(t, resp.Send(rec))
	assert.Equal(t, `{"statusCode":200,"success":true,"bookInfo":{"no. of books":0,"books":[]}}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteError(rec, http.StatusTooManyRequests, "Too many requests")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, `{"statusCode":429,"success":false,"messages":["Too many requests"]}`, rec.Body.String())
}
