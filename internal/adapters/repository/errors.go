package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound    = errors.New("peer not found")
	ErrEmptyPeerID = errors.New("empty peer id")
)
