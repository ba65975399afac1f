package classify

import "errors"

// ErrUnknownStrategy is returned for a strategy name that is not supported.
var ErrUnknownStrategy = errors.New("unknown classification strategy")
