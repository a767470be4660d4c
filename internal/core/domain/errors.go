package domain

import "errors"

var (
	// ErrLookupFailure covers transport and decode failures of the
	// elevation provider. Recoverable: the session resets and reports it.
	ErrLookupFailure = errors.New("elevation lookup failed")

	// ErrResultMismatch means the provider returned a different number of
	// elevations than samples requested (or a hole in the batch).
	ErrResultMismatch = errors.New("elevation result count mismatch")

	// ErrEmptyInput means a summary was requested for an empty profile.
	ErrEmptyInput = errors.New("profile is empty")

	// ErrSessionNotFound means the session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
)
