package core

import "errors"

// Error taxonomy shared by every layer. Storage and handlers wrap these with
// fmt.Errorf("...: %w", err); the HTTP layer maps them to status codes.
// Ownership mismatches surface as ErrNotFound on purpose so that callers
// cannot probe for the existence of other users' records.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrConflict        = errors.New("already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnimplemented   = errors.New("not implemented")
	ErrInvalidDate     = errors.New("invalid date")
)
