package reduce

type options struct {
	topK   int
	headN  int
	fields []int
}

// Option configures a reducer built by New.
type Option func(*options)

// WithTopK sets how many changes TopChange keeps besides the first measurement.
func WithTopK(k int) Option {
	return func(o *options) {
		if k >= 0 {
			o.topK = k
		}
	}
}

// WithHeadN sets how many leading measurements Head keeps.
func WithHeadN(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.headN = n
		}
	}
}

// WithFields restricts the change magnitude to the given value indexes.
func WithFields(indexes []int) Option {
	return func(o *options) {
		if indexes != nil {
			o.fields = append([]int(nil), indexes...)
		}
	}
}
