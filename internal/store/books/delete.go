package books

import (
	"context"

	"github.com/5w1tchy/books-crud/internal/apperr"
	"github.com/5w1tchy/books-crud/internal/store/dbx"
)

const deleteBook = `DELETE FROM books WHERE id = $1`

func (s *Store) Delete(ctx context.Context, id int64) error {
	n, err := dbx.Exec(ctx, s.write, deleteBook, id)
	if err != nil {
		return apperr.Classify("delete book", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
