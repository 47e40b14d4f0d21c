package rag

import "errors"

var (
	// ErrCollectionNotFound is returned when a query names a collection that was never populated.
	ErrCollectionNotFound = errors.New("rag: collection not found")
	// ErrNoAnswer is returned when no summary can be derived from the retrieved documents.
	ErrNoAnswer = errors.New("rag: no answer derivable from retrieved documents")
	// ErrEmptyQuery is returned before any external call when the query text is blank.
	ErrEmptyQuery = errors.New("rag: query text required")
	// ErrInvalidK is returned before any external call when the result count is not positive.
	ErrInvalidK = errors.New("rag: result count must be positive")
)
