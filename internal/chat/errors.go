package chat

import "errors"

var (
	// ErrValidation is returned when a required field is missing or empty.
	// Fire-and-forget callers swallow it; request/response callers surface it
	// to the direct caller only.
	ErrValidation = errors.New("missing or empty required field")

	// ErrNotFound is returned when an operation references a message id that
	// does not exist.
	ErrNotFound = errors.New("message not found")
)
