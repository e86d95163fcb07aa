package books

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/5w1tchy/books-crud/internal/apperr"
	"github.com/5w1tchy/books-crud/internal/models"
)

var (
	ErrNotFound    = fmt.Errorf("book %w", apperr.ErrNotFound)
	ErrNotModified = errors.New("book not modified")
	ErrCorruptRow  = fmt.Errorf("stored book %w", apperr.ErrCorrupt)
)

// Store reads from the replica pool and writes to the primary. Reads that
// follow a write in the same request go to the primary so replication lag
// cannot hide the row.
type Store struct {
	read  *sql.DB
	write *sql.DB
}

// New builds a Store. A nil read pool means all traffic goes to write.
func New(read, write *sql.DB) *Store {
	if read == nil {
		read = write
	}
	return &Store{read: read, write: write}
}

// settle types an error that escaped a transaction. Errors raised inside the
// transaction are already typed; begin/commit failures are not.
func settle(op string, err error) error {
	var verr *models.ValidationError
	switch {
	case err == nil,
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, ErrNotModified),
		errors.Is(err, ErrCorruptRow),
		errors.Is(err, ErrReload),
		errors.Is(err, ErrNotInserted),
		errors.As(err, &verr):
		return err
	}
	return apperr.Classify(op, err)
}
