package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrFetch        = errors.New("fetch failed")
	ErrMetricsWrite = errors.New("metrics export failed")
)
