package report

import "errors"

// ErrNilWriter is returned when a Reporter is built without an output.
var ErrNilWriter = errors.New("report writer is nil")
