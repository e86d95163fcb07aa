package books

import (
	"bytes"
	"encoding/json"
	"mime"

	"github.com/5w1tchy/books-crud/internal/models"
)

// field binds a JSON key to its column, its mandatory-field message and the
// decoder that feeds the entity setter. Order is the order fields are applied.
type field struct {
	name    string
	missing string
	apply   func(b *models.Book, raw json.RawMessage) error
}

var bookFields = []field{
	{models.FieldCategory, "Category field is mandatory and must be provided", text(models.FieldCategory, (*models.Book).SetCategory)},
	{models.FieldTitle, "Title field is mandatory and must be provided", text(models.FieldTitle, (*models.Book).SetTitle)},
	{models.FieldPageCount, "Page Count field is mandatory and must be provided", scalar(models.FieldPageCount, (*models.Book).SetPageCount)},
	{models.FieldLanguage, "Language field is mandatory and must be provided", text(models.FieldLanguage, (*models.Book).SetLanguage)},
}

func text(name string, set func(*models.Book, string) error) func(*models.Book, json.RawMessage) error {
	return func(b *models.Book, raw json.RawMessage) error {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return models.Invalid(name)
		}
		return set(b, s)
	}
}

// scalar accepts any JSON string, number or boolean. Numbers keep their
// literal form.
func scalar(name string, set func(*models.Book, any) error) func(*models.Book, json.RawMessage) error {
	return func(b *models.Book, raw json.RawMessage) error {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return models.Invalid(name)
		}
		switch v.(type) {
		case map[string]any, []any:
			return models.Invalid(name)
		}
		return set(b, v)
	}
}

// present reports which fields the body carries. A JSON null counts as absent.
func present(body map[string]json.RawMessage) []field {
	var out []field
	for _, f := range bookFields {
		if raw, ok := body[f.name]; ok && !isNull(raw) {
			out = append(out, f)
		}
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func names(fs []field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.name
	}
	return out
}

func applyAll(b *models.Book, fs []field, body map[string]json.RawMessage) error {
	for _, f := range fs {
		if err := f.apply(b, body[f.name]); err != nil {
			return err
		}
	}
	return nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// decodeBody requires a JSON object at the top level.
func decodeBody(body []byte) (map[string]json.RawMessage, bool) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}
