package domain

import "errors"

var (
	// ErrEmptyQuery signals empty or whitespace-only text given to the encoder.
	ErrEmptyQuery = errors.New("empty query text")
	// ErrInvalidQuery signals out-of-range search parameters.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUserNotFound signals a missing user.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyExists signals a duplicate resource (documents dedup by URL).
	ErrAlreadyExists = errors.New("already exists")
	// ErrVectorDimMismatch signals a stored vector whose dimension differs
	// from the encoder output. Recovered per entry by skipping it.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrQuotaExceeded signals a user over the request quota for the window.
	ErrQuotaExceeded = errors.New("request quota exceeded")
	// ErrEncoderUnavailable signals an embedding provider failure.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
	// ErrStoreUnavailable signals a document store failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
