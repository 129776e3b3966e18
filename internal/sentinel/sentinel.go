// Package sentinel lists the errors stores report. Services match them
// with errors.Is and map each to a domain error code once.
package sentinel

import "errors"

var (
	// ErrNotFound means no record matched the id, or it belongs to
	// another owner.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyUsed means a unique value (verification hash, identity
	// id) is taken.
	ErrAlreadyUsed = errors.New("already used")
	// ErrInvalidState means the stored record cannot make the requested
	// transition.
	ErrInvalidState = errors.New("invalid state")
)
