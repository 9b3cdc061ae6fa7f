package contract

import "errors"

// Failure reasons surfaced to callers. Every error returned by a transaction wraps exactly one of
// these, so clients and tests can classify failures with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidState = errors.New("invalid state")

	// ErrLedger marks failures of the hosting peer (state access, timestamps, events).
	ErrLedger = errors.New("ledger error")
)
