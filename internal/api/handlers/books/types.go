package books

import (
	"context"
	"io"
	"net/http"

	"github.com/5w1tchy/books-crud/internal/models"
)

// Store is the persistence the handler needs. *storebooks.Store satisfies it.
type Store interface {
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, id int64) (models.Book, error)
	Create(ctx context.Context, b models.Book) (models.Book, error)
	Update(ctx context.Context, id int64, fields []string, apply func(*models.Book) error) (models.Book, error)
	Delete(ctx context.Context, id int64) error
}

// request is everything serve looks at, lifted off the *http.Request once.
type request struct {
	method       string
	item         bool
	rawID        string
	unknownQuery bool
	contentType  string
	body         []byte
	bodyErr      error
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// fromHTTP reads the id from the /books/{bookid} path or the bookid query
// parameter. Query keys other than bookid only matter on the collection.
func fromHTTP(r *http.Request) request {
	req := request{
		method:      r.Method,
		contentType: r.Header.Get("Content-Type"),
	}

	q := r.URL.Query()
	if id := r.PathValue("bookid"); id != "" {
		req.item, req.rawID = true, id
	} else if _, ok := q["bookid"]; ok {
		req.item, req.rawID = true, q.Get("bookid")
	}
	for k := range q {
		if k != "bookid" {
			req.unknownQuery = true
			break
		}
	}

	if hasBody(r.Method) && r.Body != nil {
		req.body, req.bodyErr = io.ReadAll(r.Body)
	}
	return req
}
