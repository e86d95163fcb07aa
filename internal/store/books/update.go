package books

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/5w1tchy/books-crud/internal/apperr"
	"github.com/5w1tchy/books-crud/internal/models"
	"github.com/5w1tchy/books-crud/internal/store/dbx"
)

// Updatable columns in the order they appear in SET clauses.
var columns = []string{
	models.FieldCategory,
	models.FieldTitle,
	models.FieldPageCount,
	models.FieldLanguage,
}

func columnArg(b *models.Book, col string) any {
	switch col {
	case models.FieldCategory:
		return b.Category()
	case models.FieldTitle:
		return b.Title()
	case models.FieldPageCount:
		return pageCountArg(b.PageCount())
	case models.FieldLanguage:
		return b.Language()
	}
	return nil
}

// buildUpdate writes an UPDATE for the requested columns. The IS DISTINCT
// FROM guard makes an update that changes nothing affect zero rows.
func buildUpdate(b *models.Book, id int64, fields []string) (string, []any) {
	want := make(map[string]bool, len(fields))
	for _, f := range fields {
		want[f] = true
	}

	var set, guard []string
	var args []any
	for _, col := range columns {
		if !want[col] {
			continue
		}
		args = append(args, columnArg(b, col))
		val := fmt.Sprintf("$%d", len(args))
		if col == models.FieldPageCount {
			val = fmt.Sprintf("CAST($%d::text AS INTEGER)", len(args))
		}
		set = append(set, col+" = "+val)
		guard = append(guard, col+" IS DISTINCT FROM "+val)
	}
	if len(set) == 0 {
		return "", nil
	}
	args = append(args, id)
	q := fmt.Sprintf("UPDATE books SET %s WHERE id = $%d AND (%s)",
		strings.Join(set, ", "), len(args), strings.Join(guard, " OR "))
	return q, args
}

// Update locks the row, lets apply run the entity setters on it, then writes
// the listed columns. ErrNotFound means no such row; ErrNotModified means the
// stored values already matched.
func (s *Store) Update(ctx context.Context, id int64, fields []string, apply func(*models.Book) error) (models.Book, error) {
	var out models.Book
	err := dbx.WithinTx(ctx, s.write, func(tx *sql.Tx) error {
		b, err := getBook(ctx, tx, "lock book", selectForWrite, id)
		if err != nil {
			return err
		}
		if err := apply(&b); err != nil {
			return err
		}

		q, args := buildUpdate(&b, id, fields)
		if q == "" {
			return ErrNotModified
		}
		n, err := dbx.Exec(ctx, tx, q, args...)
		if err != nil {
			return apperr.Classify("update book", err)
		}
		if n == 0 {
			return ErrNotModified
		}

		out, err = getBook(ctx, tx, "reload book", selectByID, id)
		return reloadErr(err)
	})
	if err != nil {
		return models.Book{}, settle("update book", err)
	}
	return out, nil
}
