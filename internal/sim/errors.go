package sim

import "errors"

// Sentinel errors for the simulator core. Callers match with errors.Is;
// constructors wrap these with parameter context.
var (
	// ErrInvalidParameter indicates a construction parameter outside its
	// valid domain (bad grid dimensions, non-positive rates). Fatal at
	// construction; values are never clamped.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrOutOfRange indicates an az-transform query beyond the loaded
	// track's coverage. Surfaced per tick; the tick skips scanning rather
	// than extrapolate.
	ErrOutOfRange = errors.New("query out of range")

	// ErrSchedulingMismatch indicates a tick/scan-rate ratio that does not
	// divide the azimuth grid evenly. Rejected at construction so the
	// full-coverage invariant cannot be broken by silent truncation.
	ErrSchedulingMismatch = errors.New("scheduling mismatch")
)
