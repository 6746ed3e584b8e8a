package services

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a record belongs to another profile.
	ErrForbidden = errors.New("access denied")
	// ErrInvalidState is returned when an operation is not allowed in the record's current status.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrInvalidCredentials is returned when an API key does not resolve to an active profile.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDocumentTooLarge is returned when an upload exceeds the configured size.
	ErrDocumentTooLarge = errors.New("document too large")
	// ErrUnsupportedDocument is returned for files that are neither images nor PDFs.
	ErrUnsupportedDocument = errors.New("unsupported document format")
)
