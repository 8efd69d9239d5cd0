package router

import "errors"

// Sentinel errors for the router package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrUnknownEvent is returned when an event type is not recognized.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrUnknownCategory is returned when a tool event carries an
	// unrecognized tool category.
	ErrUnknownCategory = errors.New("unknown tool category")

	// ErrMissingVerdict is returned when an audit_verdict event carries no
	// verdict payload at all. (A present but malformed payload is not an
	// error; it fails closed as CANNOT_ASSESS.)
	ErrMissingVerdict = errors.New("audit_verdict event has no verdict payload")
)
