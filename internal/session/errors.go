package session

import "errors"

// Sentinel errors for the session package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrSessionIDRequired is returned when an operation is attempted
	// without a session ID.
	ErrSessionIDRequired = errors.New("session ID is required")

	// ErrCorruptSessionState is returned when a persisted session record
	// exists but cannot be parsed. The store never silently recreates such
	// a record; an operator must decide whether to discard it.
	ErrCorruptSessionState = errors.New("corrupt session state")
)
