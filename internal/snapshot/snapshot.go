// Package snapshot exports the whole books table as one JSON object in an
// S3-compatible bucket.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/5w1tchy/books-crud/internal/api/httpx"
	"github.com/5w1tchy/books-crud/internal/models"
)

type Lister interface {
	List(ctx context.Context) ([]models.Book, error)
}

type Bucket interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignDownload(ctx context.Context, key string) (string, error)
	Prune(ctx context.Context, prefix string, keep int, match func(key string) bool) ([]string, error)
}

// Document is the object written to the bucket. BookInfo has the same shape
// as the payload of GET /books.
type Document struct {
	ExportedAt time.Time      `json:"exportedAt"`
	BookInfo   httpx.BookInfo `json:"bookInfo"`
}

type Result struct {
	Key    string
	Count  int
	URL    string
	Pruned []string
}

type Exporter struct {
	Books  Lister
	Bucket Bucket
	Prefix string
	// Keep is the number of snapshots retained under Prefix; 0 keeps all.
	Keep int
	Log  *slog.Logger
	Now  func() time.Time
}

const (
	keyStem   = "books-"
	keyLayout = "20060102T150405.000Z"
	keyExt    = ".json"
)

// Key names a snapshot so that keys sort by export time. The stamp carries
// milliseconds so back-to-back runs get distinct keys.
func Key(prefix string, at time.Time) string {
	return prefix + keyStem + at.UTC().Format(keyLayout) + keyExt
}

// IsKey reports whether key has the form Key(prefix, t) produces.
func IsKey(prefix, key string) bool {
	stamp, ok := strings.CutPrefix(key, prefix+keyStem)
	if !ok {
		return false
	}
	if stamp, ok = strings.CutSuffix(stamp, keyExt); !ok || len(stamp) != len(keyLayout) {
		return false
	}
	_, err := time.Parse(keyLayout, stamp)
	return err == nil
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Exporter) Run(ctx context.Context) (Result, error) {
	log := e.Log
	if log == nil {
		log = slog.Default()
	}

	books, err := e.Books.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("snapshot: list books: %w", err)
	}

	at := e.now()
	body, err := json.Marshal(Document{ExportedAt: at.UTC(), BookInfo: httpx.NewBookInfo(books...)})
	if err != nil {
		return Result{}, fmt.Errorf("snapshot: encode: %w", err)
	}

	res := Result{Key: Key(e.Prefix, at), Count: len(books)}
	if err := e.Bucket.Put(ctx, res.Key, "application/json", body); err != nil {
		return Result{}, fmt.Errorf("snapshot: upload: %w", err)
	}
	log.Info("snapshot uploaded", "key", res.Key, "books", res.Count, "bytes", len(body))

	if res.URL, err = e.Bucket.PresignDownload(ctx, res.Key); err != nil {
		return res, fmt.Errorf("snapshot: presign: %w", err)
	}

	// A failed prune leaves an extra object behind; the upload still counts.
	isSnapshot := func(key string) bool { return IsKey(e.Prefix, key) }
	if res.Pruned, err = e.Bucket.Prune(ctx, e.Prefix+keyStem, e.Keep, isSnapshot); err != nil {
		log.Warn("snapshot prune failed", "prefix", e.Prefix, "err", err)
	} else if len(res.Pruned) > 0 {
		log.Info("snapshots pruned", "removed", len(res.Pruned), "keep", e.Keep)
	}
	return res, nil
}
