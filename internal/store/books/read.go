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

const (
	selectBooks    = `SELECT id, category, title, pagecount, language, etag FROM books`
	listBooks      = selectBooks + ` ORDER BY id`
	selectByID     = selectBooks + ` WHERE id = $1`
	selectForWrite = selectByID + ` FOR UPDATE`
)

// scanBook hydrates one row through the entity setters. NULLs are handed to
// the setters as zero values so a damaged row reports which field is wrong.
func scanBook(row dbx.Scanner) (models.Book, error) {
	var (
		id                              int64
		category, title, language, etag sql.NullString
		pageCount                       sql.NullInt64
	)
	if err := row.Scan(&id, &category, &title, &pageCount, &language, &etag); err != nil {
		return models.Book{}, err
	}
	var pc any
	if pageCount.Valid {
		pc = pageCount.Int64
	}
	b, err := models.NewBook(&id, category.String, title.String, pc, language.String, etag.String)
	if err != nil {
		return models.Book{}, fmt.Errorf("%w: id %d: %w", ErrCorruptRow, id, err)
	}
	return b, nil
}

func getBook(ctx context.Context, g dbx.Getter, op, query string, id int64) (models.Book, error) {
	b, err := scanBook(dbx.Get(ctx, g, query, id))
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, sql.ErrNoRows):
		return models.Book{}, ErrNotFound
	case errors.Is(err, ErrCorruptRow):
		return models.Book{}, err
	default:
		return models.Book{}, apperr.Classify(op, err)
	}
}

// List returns every book ordered by id.
func (s *Store) List(ctx context.Context) ([]models.Book, error) {
	out, err := dbx.Collect(ctx, s.read, listBooks, scanBook)
	if err != nil {
		if errors.Is(err, ErrCorruptRow) {
			return nil, err
		}
		return nil, apperr.Classify("list books", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (models.Book, error) {
	return getBook(ctx, s.read, "get book", selectByID, id)
}

// Ping checks both pools.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.write.PingContext(ctx); err != nil {
		return apperr.Classify("ping primary", err)
	}
	if s.read != s.write {
		if err := s.read.PingContext(ctx); err != nil {
			return apperr.Classify("ping replica", err)
		}
	}
	return nil
}
