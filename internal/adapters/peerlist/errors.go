package peerlist

import "errors"

// ErrFileNotFound is returned when the peer list file does not exist.
var ErrFileNotFound = errors.New("peer list file not found")
