package hull

import "errors"

// Sentinel kinds for hull errors.
var (
	ErrTooFewPoints = errors.New("too few points for a hull")
	ErrDegenerate   = errors.New("degenerate hull geometry")
)
