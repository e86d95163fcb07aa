package books

// Client-facing messages. Store detail never reaches the client; it is logged.
const (
	msgBadID            = "Book ID cannot be blank or must be numeric"
	msgNotFound         = "Book not found"
	msgEndpointNotFound = "Endpoint not found"
	msgMethodNotAllowed = "Request method not allowed"
	msgDBConnection     = "Database connection error"

	msgGetBookFailed  = "Failed to get book"
	msgGetBooksFailed = "Failed to get books"

	msgNotJSONContent = "Content Type header not set to JSON"
	msgInvalidJSON    = "Request body is not valid JSON"
	msgBodyTooLarge   = "Request body too large"

	msgCreated        = "Book created"
	msgInsertFailed   = "Failed to insert new book into database - check submitted data for errors"
	msgAddFailed      = "Failed to add new book"
	msgReloadCreated  = "Failed to retrieve book after creation"
	msgNoFields       = "No book fields provided"
	msgNoUpdateTarget = "No book found to update"
	msgNotModified    = "Book not updated - given values may be the same as the stored values"
	msgUpdateFailed   = "Failed to update book - check your data for errors"
	msgReloadUpdated  = "Failed to retrieve book after update"
	msgUpdated        = "Book updated"
	msgDeleted        = "Book deleted"
	msgDeleteFailed   = "Failed to delete book"
)

const (
	allowCollection = "GET, POST"
	allowItem       = "GET, PUT, PATCH, DELETE"
)
