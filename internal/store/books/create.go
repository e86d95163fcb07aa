package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/books-crud/internal/apperr"
	"github.com/5w1tchy/books-crud/internal/models"
	"github.com/5w1tchy/books-crud/internal/store/dbx"
)

const insertBook = `INSERT INTO books (category, title, pagecount, language, etag)
VALUES ($1, $2, CAST($3::text AS INTEGER), $4, $5)
RETURNING id`

var (
	ErrNotInserted = errors.New("insert returned no row")
	ErrReload      = errors.New("reload after write failed")
)

// pageCountArg binds the page count as text; the database does the integer
// conversion so a non-numeric value fails there rather than here.
func pageCountArg(v any) string {
	return fmt.Sprint(v)
}

// Create inserts b and returns the row as stored. The reload runs inside the
// insert transaction on the primary.
func (s *Store) Create(ctx context.Context, b models.Book) (models.Book, error) {
	var out models.Book
	err := dbx.WithinTx(ctx, s.write, func(tx *sql.Tx) error {
		var id int64
		err := dbx.Get(ctx, tx, insertBook,
			b.Category(), b.Title(), pageCountArg(b.PageCount()), b.Language(), b.Etag(),
		).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotInserted
		}
		if err != nil {
			return apperr.Classify("insert book", err)
		}

		out, err = getBook(ctx, tx, "reload book", selectByID, id)
		return reloadErr(err)
	})
	if err != nil {
		return models.Book{}, settle("create book", err)
	}
	return out, nil
}

func reloadErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrReload
	case apperr.IsConnection(err):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrReload, err)
	}
}
