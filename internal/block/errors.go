package block

import "errors"

// Sentinel errors for the block package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrSessionIDRequired is returned when a record is appended without a
	// session ID.
	ErrSessionIDRequired = errors.New("session ID is required")

	// ErrNoActiveBlock is returned when clearing a session with no active
	// block records.
	ErrNoActiveBlock = errors.New("no active block")
)
