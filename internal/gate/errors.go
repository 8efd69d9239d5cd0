package gate

import "errors"

// Sentinel errors for the gate package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrUnknownGate is returned when a gate name is not in the registry.
	ErrUnknownGate = errors.New("unknown gate")

	// ErrDuplicateGate is returned when a registry is built with the same
	// gate registered twice.
	ErrDuplicateGate = errors.New("duplicate gate definition")

	// ErrUnknownOpenEvent is returned when no registered gate opens on the
	// given event name.
	ErrUnknownOpenEvent = errors.New("no gate opens on event")
)
