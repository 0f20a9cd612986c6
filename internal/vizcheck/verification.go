package vizcheck

import (
	"fmt"
	"regexp"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/biofitviz/internal/domain/geometry"
	"github.com/okian/biofitviz/internal/domain/hull"
	"github.com/okian/biofitviz/internal/domain/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Check names reported in findings.
const (
	CheckTraceCount    = "trace_count"
	CheckTraceShape    = "trace_shape"
	CheckTraceLength   = "trace_length"
	CheckHullShape     = "hull_shape"
	CheckHullConvex    = "hull_convex"
	CheckHullColor     = "hull_color"
	CheckHullUnique    = "hull_unique"
	CheckContainment   = "containment"
	CheckHullsEndpoint = "hulls_endpoint"
	CheckWorkouts      = "workouts"
)

var rgbaPattern = regexp.MustCompile(`^rgba\((\d{1,3}), (\d{1,3}), (\d{1,3}), ([0-9.]+)\)$`)

// Verify runs every geometry check against snap and returns the failures.
func Verify(snap *Snapshot, cfg *Config, stats *Stats) []Finding {
	v := &verifier{stats: stats}

	p := &snap.Payload
	v.check(CheckTraceCount, cfg.MaxTraces <= 0 || len(p.Data) <= cfg.MaxTraces,
		"%d traces exceed cap %d", len(p.Data), cfg.MaxTraces)

	for i, tr := range p.Data {
		n := len(tr.X)
		v.check(CheckTraceShape,
			len(tr.Y) == n && len(tr.Text) == n && len(tr.Marker.Color) == n && len(tr.StateID) == n,
			"trace %d has mismatched column lengths", i)
		v.check(CheckTraceLength, cfg.MaxStates <= 0 || n <= cfg.MaxStates,
			"trace %d has %d states, more than %d", i, n, cfg.MaxStates)
	}

	polys := make(map[int][]r2.Vec, len(p.Hulls))
	for _, h := range p.Hulls {
		_, dup := polys[h.Cluster]
		v.check(CheckHullUnique, !dup, "cluster %d has more than one hull", h.Cluster)

		poly := toVecs(h.Points)
		polys[h.Cluster] = poly
		v.check(CheckHullShape, len(poly) >= 3, "cluster %d hull has %d vertices", h.Cluster, len(poly))
		v.check(CheckHullConvex, hull.IsConvex(poly), "cluster %d hull is not a counter-clockwise convex polygon", h.Cluster)
		v.check(CheckHullColor, validRGBA(h.Color), "cluster %d color %q is not rgba()", h.Cluster, h.Color)
	}

	checkContainment(v, p.Data, polys)

	diff := cmp.Diff(p.Hulls, snap.Hulls)
	v.check(CheckHullsEndpoint, diff == "", "/api/hulls differs from /api/data hulls (-data +hulls):\n%s", diff)

	diff = cmp.Diff(p.Workouts, workoutMap(snap.Workouts))
	v.check(CheckWorkouts, diff == "", "workout map differs from workout list (-data +list):\n%s", diff)

	return v.findings
}

// checkContainment asserts every displayed point lies in its cluster's hull.
// Points of clusters without a hull are not checked.
func checkContainment(v *verifier, traces []geometry.Trace, polys map[int][]r2.Vec) {
	for i, tr := range traces {
		for j := range tr.X {
			if j >= len(tr.Y) || j >= len(tr.Marker.Color) {
				break
			}
			poly, ok := polys[tr.Marker.Color[j]]
			if !ok {
				continue
			}
			pt := r2.Vec{X: tr.X[j], Y: tr.Y[j]}
			v.check(CheckContainment, hull.Contains(poly, pt, containmentEpsilon),
				"trace %d point %d (%g, %g) outside cluster %d hull", i, j, pt.X, pt.Y, tr.Marker.Color[j])
		}
	}
}

type verifier struct {
	stats    *Stats
	findings []Finding
}

func (v *verifier) check(name string, ok bool, format string, args ...any) {
	v.stats.Checks++
	if ok {
		return
	}
	v.stats.Failures++
	v.findings = append(v.findings, Finding{Check: name, Detail: fmt.Sprintf(format, args...)})
}

func toVecs(points [][2]float64) []r2.Vec {
	out := make([]r2.Vec, len(points))
	for i, p := range points {
		out[i] = r2.Vec{X: p[0], Y: p[1]}
	}
	return out
}

func validRGBA(s string) bool {
	m := rgbaPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	for _, c := range m[1:4] {
		var n int
		if _, err := fmt.Sscan(c, &n); err != nil || n > 255 {
			return false
		}
	}
	return true
}

func workoutMap(ws []model.Description) map[string]string {
	out := make(map[string]string, len(ws))
	for _, w := range ws {
		out[w.ID] = w.Description
	}
	return out
}
