// Package reduce picks a small, representative subsequence of an
// individual's chronological measurements.
package reduce

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/okian/biofitviz/internal/domain/model"
	"gonum.org/v1/gonum/floats"
)

// Strategy names accepted by New.
const (
	StrategyTopChange = "top_change"
	StrategyHead      = "head"
	StrategyAll       = "all"
)

// Default strategy parameters.
const (
	defaultTopK  = 3
	defaultHeadN = 8
)

// Reducer selects a chronologically ordered subsequence that always starts
// with the earliest measurement. Implementations never modify their input.
type Reducer interface {
	Reduce(seq []model.Measurement) []model.Measurement
	Name() string
}

// New returns the reducer registered under name.
func New(name string, opts ...Option) (Reducer, error) {
	o := options{topK: defaultTopK, headN: defaultHeadN}
	for _, opt := range opts {
		opt(&o)
	}
	switch name {
	case StrategyTopChange:
		return &TopChange{K: o.topK, Fields: o.fields}, nil
	case StrategyHead:
		return &Head{N: o.headN}, nil
	case StrategyAll:
		return All{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
}

// chronological returns a stable-sorted copy of seq ordered by week. A
// measurement without a week sorts last.
func chronological(seq []model.Measurement) []model.Measurement {
	out := slices.Clone(seq)
	slices.SortStableFunc(out, func(a, b model.Measurement) int {
		an, bn := math.IsNaN(a.Week), math.IsNaN(b.Week)
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		}
		return cmp.Compare(a.Week, b.Week)
	})
	return out
}

// TopChange keeps the first measurement plus the K measurements whose
// biometric fields moved the most since the preceding measurement.
type TopChange struct {
	K int
	// Fields indexes Measurement.Values; nil means every value.
	Fields []int
}

// Name implements Reducer.
func (r *TopChange) Name() string { return StrategyTopChange }

// Reduce implements Reducer.
func (r *TopChange) Reduce(seq []model.Measurement) []model.Measurement {
	sorted := chronological(seq)
	if len(sorted) <= 1 {
		return sorted
	}

	type ranked struct {
		pos       int
		magnitude float64
	}
	rest := make([]ranked, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		rest = append(rest, ranked{pos: i, magnitude: r.changeMagnitude(sorted[i-1], sorted[i])})
	}
	// Stable sort keeps earlier positions first among equal magnitudes.
	slices.SortStableFunc(rest, func(a, b ranked) int {
		return cmp.Compare(b.magnitude, a.magnitude)
	})
	if r.K >= 0 && len(rest) > r.K {
		rest = rest[:r.K]
	}

	picked := make([]int, 0, len(rest)+1)
	picked = append(picked, 0)
	for _, c := range rest {
		picked = append(picked, c.pos)
	}
	slices.Sort(picked)

	out := make([]model.Measurement, len(picked))
	for i, pos := range picked {
		out[i] = sorted[pos]
	}
	return out
}

// changeMagnitude sums the absolute field-wise first difference. Missing
// differences (NaN) count as zero; an infinite jump stays infinite.
func (r *TopChange) changeMagnitude(prev, cur model.Measurement) float64 {
	a, b := r.pick(prev.Values), r.pick(cur.Values)
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	diff := make([]float64, n)
	floats.SubTo(diff, b[:n], a[:n])
	for i, d := range diff {
		if math.IsNaN(d) {
			diff[i] = 0
		}
	}
	return floats.Norm(diff, 1)
}

func (r *TopChange) pick(values []float64) []float64 {
	if r.Fields == nil {
		return values
	}
	out := make([]float64, 0, len(r.Fields))
	for _, i := range r.Fields {
		if i >= 0 && i < len(values) {
			out = append(out, values[i])
		} else {
			out = append(out, math.NaN())
		}
	}
	return out
}

// Head keeps the first N measurements chronologically.
type Head struct {
	N int
}

// Name implements Reducer.
func (r *Head) Name() string { return StrategyHead }

// Reduce implements Reducer.
func (r *Head) Reduce(seq []model.Measurement) []model.Measurement {
	sorted := chronological(seq)
	n := max(r.N, 1)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// All keeps every measurement in chronological order.
type All struct{}

// Name implements Reducer.
func (All) Name() string { return StrategyAll }

// Reduce implements Reducer.
func (All) Reduce(seq []model.Measurement) []model.Measurement {
	return chronological(seq)
}
