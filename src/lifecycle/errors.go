package lifecycle

import "errors"

var (
	// ErrPositionNotFound covers both an absent position and one owned by
	// another user. the two are indistinguishable to the caller.
	ErrPositionNotFound = errors.New("position not found")

	// ErrAccountNotOwned means the referenced account does not exist for
	// the acting user.
	ErrAccountNotOwned = errors.New("account not found or does not belong to you")

	// ErrAlreadyClosed means the position already reached its terminal
	// status and cannot be closed or rolled again.
	ErrAlreadyClosed = errors.New("position is already closed")

	// ErrValidation wraps malformed input terms.
	ErrValidation = errors.New("invalid position terms")
)
