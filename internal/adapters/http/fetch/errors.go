package fetch

import "errors"

// Sentinel kinds for fetch errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected http status")
	ErrScriptNotFound   = errors.New("script asset not found")
	ErrDecode           = errors.New("decode response")
	ErrEmptyURL         = errors.New("url is empty")
	ErrBodyTooLarge     = errors.New("response body too large")
)
