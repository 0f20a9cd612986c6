package vizcheck

import "errors"

// Sentinel errors for the check run.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrUnhealthy        = errors.New("service unhealthy")
	ErrChecksFailed     = errors.New("geometry checks failed")
)
