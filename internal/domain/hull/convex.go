// Package hull computes per-cluster convex boundaries and their display colors.
package hull

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// minPoints is the smallest point count that can enclose an area.
const minPoints = 3

// Convex returns the convex hull of points in counter-clockwise order,
// starting at the lowest-x (then lowest-y) point. Points lying on an edge
// are not vertices. Collinear or coincident input returns ErrDegenerate.
func Convex(points []r2.Vec) ([]r2.Vec, error) {
	if len(points) < minPoints {
		return nil, fmt.Errorf("%d points: %w", len(points), ErrTooFewPoints)
	}

	pts := slices.Clone(points)
	slices.SortFunc(pts, func(a, b r2.Vec) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.Y, b.Y)
	})
	pts = slices.Compact(pts)
	if len(pts) < minPoints {
		return nil, fmt.Errorf("%d distinct points: %w", len(pts), ErrDegenerate)
	}

	// Andrew's monotone chain.
	lower := make([]r2.Vec, 0, len(pts))
	for _, p := range pts {
		for len(lower) >= 2 && turn(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	upper := make([]r2.Vec, 0, len(pts))
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && turn(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	out := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(out) < minPoints {
		return nil, fmt.Errorf("collinear points: %w", ErrDegenerate)
	}
	return out, nil
}

// turn is positive when a→b→c turns counter-clockwise.
func turn(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

// Contains reports whether p lies inside or on the boundary of the
// counter-clockwise convex polygon poly, within tolerance eps.
func Contains(poly []r2.Vec, p r2.Vec, eps float64) bool {
	if len(poly) < minPoints {
		return false
	}
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		if turn(a, b, p) < -eps {
			return false
		}
	}
	return true
}

// IsConvex reports whether poly is a strictly convex counter-clockwise polygon.
func IsConvex(poly []r2.Vec) bool {
	if len(poly) < minPoints {
		return false
	}
	for i := range poly {
		a, b, c := poly[i], poly[(i+1)%len(poly)], poly[(i+2)%len(poly)]
		if turn(a, b, c) <= 0 {
			return false
		}
	}
	return true
}
