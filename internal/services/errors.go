package services

import "errors"

// Domain error taxonomy. Handlers map these to HTTP statuses once; the
// distinctions are user-actionable and must never be collapsed into a
// generic error on the way up.
var (
	// ErrNotFound: the referenced inventory, item, or history entry does
	// not exist. 404.
	ErrNotFound = errors.New("not found")

	// ErrNotUndoable: the entry was already undone, or is itself an undo
	// entry. 400.
	ErrNotUndoable = errors.New("entry cannot be undone")

	// ErrConflict: live state has drifted incompatibly with reversing the
	// entry (target deleted, uniqueness violation on recreate, concurrent
	// double-undo). 409.
	ErrConflict = errors.New("conflict with current state")

	// ErrInsufficientFunds: the change would drive a denomination negative. 400.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidInput: request-level validation failure. 400.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized: missing or wrong passphrase/token. 401.
	ErrUnauthorized = errors.New("unauthorized")
)
