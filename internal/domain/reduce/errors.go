package reduce

import "errors"

// Sentinel kinds for reduction errors.
var (
	ErrUnknownStrategy = errors.New("unknown reduction strategy")
)
