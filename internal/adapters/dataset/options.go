package dataset

type options struct {
	excluded []string
}

// Option configures a Source.
type Option func(*options)

// WithExcludedFields drops columns from the biometric field set.
func WithExcludedFields(names []string) Option {
	return func(o *options) {
		o.excluded = append([]string(nil), names...)
	}
}
