package reconcile

import "errors"

// Sentinel kinds for reconciliation errors.
var (
	// ErrDataFormat marks a value that is present but unusable, such as a
	// reward that is not a number. Absent values are never errors.
	ErrDataFormat    = errors.New("data format error")
	ErrUnknownSource = errors.New("unknown source kind")
	ErrInvalidLayout = errors.New("invalid script layout")
)
