package ledger

import "errors"

var (
	// ErrEntryNotFound indicates an index or id outside the ledger.
	ErrEntryNotFound = errors.New("time entry not found")
	// ErrInvalidInput indicates a bad time string or a missing field.
	ErrInvalidInput = errors.New("invalid time entry input")
)
