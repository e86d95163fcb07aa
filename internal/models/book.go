package models

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	maxCategoryLen = 255
	maxTitleLen    = 255
	maxLanguageLen = 20
	EtagLen        = 10

	etagAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Book is a single row of the books table. Zero value has no id and no fields.
type Book struct {
	id        *int64
	category  string
	title     string
	pageCount any
	language  string
	etag      string
}

// NewBook runs every setter in column order and stops at the first failure.
// A nil id builds a book that has not been stored yet.
func NewBook(id *int64, category, title string, pageCount any, language, etag string) (Book, error) {
	var b Book
	if err := b.SetID(id); err != nil {
		return Book{}, err
	}
	if err := b.SetCategory(category); err != nil {
		return Book{}, err
	}
	if err := b.SetTitle(title); err != nil {
		return Book{}, err
	}
	if err := b.SetPageCount(pageCount); err != nil {
		return Book{}, err
	}
	if err := b.SetLanguage(language); err != nil {
		return Book{}, err
	}
	if err := b.SetEtag(etag); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (b *Book) ID() (int64, bool) {
	if b.id == nil {
		return 0, false
	}
	return *b.id, true
}

func (b *Book) Category() string { return b.category }
func (b *Book) Title() string    { return b.title }
func (b *Book) PageCount() any   { return b.pageCount }
func (b *Book) Language() string { return b.language }
func (b *Book) Etag() string     { return b.etag }

// SetID assigns the store id once. nil is accepted and leaves the id as it is.
func (b *Book) SetID(id *int64) error {
	if id == nil {
		return nil
	}
	if *id <= 0 || b.id != nil {
		return invalid(FieldID)
	}
	v := *id
	b.id = &v
	return nil
}

func (b *Book) SetCategory(category string) error {
	category, ok := bounded(category, 1, maxCategoryLen)
	if !ok {
		return invalid(FieldCategory)
	}
	b.category = category
	return nil
}

func (b *Book) SetTitle(title string) error {
	title, ok := bounded(title, 1, maxTitleLen)
	if !ok {
		return invalid(FieldTitle)
	}
	b.title = title
	return nil
}

// SetPageCount only rejects a missing value; the column type is the real guard.
func (b *Book) SetPageCount(pageCount any) error {
	if pageCount == nil {
		return invalid(FieldPageCount)
	}
	b.pageCount = pageCount
	return nil
}

func (b *Book) SetLanguage(language string) error {
	language, ok := bounded(language, 1, maxLanguageLen)
	if !ok {
		return invalid(FieldLanguage)
	}
	b.language = language
	return nil
}

func (b *Book) SetEtag(etag string) error {
	if utf8.RuneCountInString(etag) != EtagLen {
		return invalid(FieldEtag)
	}
	b.etag = strings.ToUpper(etag)
	return nil
}

// Representation is the JSON shape of a book. Field order matches the table.
type Representation struct {
	ID        *int64 `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	PageCount any    `json:"pagecount"`
	Language  string `json:"language"`
	Etag      string `json:"etag"`
}

func (b *Book) Representation() Representation {
	return Representation{
		ID:        b.id,
		Category:  b.category,
		Title:     b.title,
		PageCount: b.pageCount,
		Language:  b.language,
		Etag:      b.etag,
	}
}

// GenerateEtag draws EtagLen symbols from 0-9A-Z. Not suitable as a secret.
func GenerateEtag() string {
	var sb strings.Builder
	sb.Grow(EtagLen)
	for range EtagLen {
		sb.WriteByte(etagAlphabet[rand.IntN(len(etagAlphabet))])
	}
	return sb.String()
}

// ParseID reads a book id supplied by a client. Blank and non-numeric input fail;
// the range check is left to SetID.
func ParseID(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func bounded(s string, min, max int) (string, bool) {
	s = norm.NFC.String(s)
	n := utf8.RuneCountInString(s)
	return s, n >= min && n <= max
}
