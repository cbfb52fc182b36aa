package headtrack

import "errors"

// Sentinel errors for common failure conditions.
var (
	// ErrDetectorUnavailable is returned by Start when the landmark
	// detector does not become ready within the configured bound.
	ErrDetectorUnavailable = errors.New("headtrack: detector unavailable")

	// ErrSourceUnavailable is returned by Start when the capture source
	// cannot be opened.
	ErrSourceUnavailable = errors.New("headtrack: capture source unavailable")
)
