package models

const (
	FieldID        = "id"
	FieldCategory  = "category"
	FieldTitle     = "title"
	FieldPageCount = "pagecount"
	FieldLanguage  = "language"
	FieldEtag      = "etag"
)

var fieldMessages = map[string]string{
	FieldID:        "Book ID error",
	FieldCategory:  "Book Category error",
	FieldTitle:     "Book title error",
	FieldPageCount: "book page count error",
	FieldLanguage:  "Book language error",
	FieldEtag:      "Etag error",
}

// ValidationError reports a field that broke the book contract.
// Message is safe to show to clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Invalid returns the ValidationError a setter would return for field.
// Callers use it when a value is rejected before it reaches a setter,
// e.g. a JSON number where a string is expected.
func Invalid(field string) error { return invalid(field) }

func invalid(field string) *ValidationError {
	msg, ok := fieldMessages[field]
	if !ok {
		msg = "Book " + field + " error"
	}
	return &ValidationError{Field: field, Message: msg}
}
