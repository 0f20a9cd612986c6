package vizcheck

// Tolerance for point-in-hull tests; the hull is computed in the same
// float64 space as the points.
const containmentEpsilon = 1e-9

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)
