package extract

import "errors"

// Sentinel kinds for extraction errors.
var (
	ErrMalformedFragment   = errors.New("malformed fragment")
	ErrLastUpdatedNotFound = errors.New("last updated marker not found")
)
