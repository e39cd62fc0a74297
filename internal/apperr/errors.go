// Package apperr defines the error kinds shared by the deck service, the
// REST API and the MCP tools.
package apperr

import "errors"

var (
	// ErrNotFound: the deck, a fragment or a card index does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the card changed since the caller read it.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput: a malformed range, patch or query.
	ErrInvalidInput = errors.New("invalid input")
)
