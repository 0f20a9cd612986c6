// Package geometry composes reduction, hull building and trajectory
// assembly into the payload served to the dashboard.
package geometry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/biofitviz/internal/domain/hull"
	"github.com/okian/biofitviz/internal/domain/model"
	"github.com/okian/biofitviz/internal/domain/reduce"
	"github.com/okian/biofitviz/internal/domain/trajectory"
	"github.com/okian/biofitviz/pkg/metrics"
	"gonum.org/v1/gonum/spatial/r2"
)

// textSeparator joins hover text entries of one point.
const textSeparator = "<br>"

// Input bundles the read-only state one computation needs.
type Input struct {
	Dataset *model.Dataset
	Reducer reduce.Reducer
	Hulls   *hull.Builder
	// Cap bounds how many individuals get a trace; zero or less shows all.
	Cap        int
	MarkerSize int
	// TextFields names the columns rendered into each point's hover text.
	TextFields []string
}

// Marker carries per-point cluster colors of a trace.
type Marker struct {
	Color []int `json:"color"`
	Size  int   `json:"size"`
}

// Trace is the reduced path of one individual.
type Trace struct {
	X       []float64 `json:"x"`
	Y       []float64 `json:"y"`
	Text    []string  `json:"text"`
	Marker  Marker    `json:"marker"`
	StateID []string  `json:"stateid"`
}

// Result is the combined response payload.
type Result struct {
	Data         []Trace             `json:"data"`
	Hulls        []model.Hull        `json:"hulls"`
	Trajectories []trajectory.Record `json:"trajectories"`
	Workouts     map[string]string   `json:"workouts"`

	// Skipped lists clusters without a hull.
	Skipped []hull.Skip `json:"-"`
	// Dropped counts measurements with a non-finite position.
	Dropped int `json:"-"`
}

// Compute runs the full pipeline. Only structural problems (no dataset,
// unknown hover text columns) fail the call; per-cluster failures are
// reported in Result.Skipped.
func Compute(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	if err := validate(in); err != nil {
		return nil, err
	}

	reduced, dropped := reduceAll(in)

	res := &Result{
		Data:         make([]Trace, 0),
		Trajectories: make([]trajectory.Record, 0),
		Workouts:     in.Dataset.WorkoutMap(),
		Dropped:      dropped,
	}

	byIndividual := trajectory.Index(in.Dataset.Transitions)
	for i, ind := range in.Dataset.Individuals {
		if in.Cap > 0 && i >= in.Cap {
			break
		}
		trace, err := buildTrace(in, reduced[i])
		if err != nil {
			return nil, err
		}
		res.Data = append(res.Data, trace)
		res.Trajectories = append(res.Trajectories, trajectory.Assemble(ind.CloudID, byIndividual[ind.CloudID])...)
	}

	res.Hulls, res.Skipped = in.Hulls.Build(ctx, groupByCluster(reduced))

	metrics.RecordPointsDropped(dropped)
	metrics.RecordComputation(float64(time.Since(start).Milliseconds()))
	return res, nil
}

// Hulls computes only the cluster hulls over every individual.
func Hulls(ctx context.Context, in Input) ([]model.Hull, []hull.Skip, error) {
	if err := validate(in); err != nil {
		return nil, nil, err
	}
	reduced, dropped := reduceAll(in)
	metrics.RecordPointsDropped(dropped)
	hulls, skips := in.Hulls.Build(ctx, groupByCluster(reduced))
	return hulls, skips, nil
}

func validate(in Input) error {
	if in.Dataset == nil {
		return fmt.Errorf("no dataset loaded: %w", model.ErrDataShape)
	}
	if in.Reducer == nil || in.Hulls == nil {
		return fmt.Errorf("geometry input incomplete: %w", model.ErrDataShape)
	}
	for _, f := range in.TextFields {
		if !in.Dataset.HasColumn(f) {
			return fmt.Errorf("text field %q: %w", f, model.ErrDataShape)
		}
	}
	return nil
}

// reduceAll reduces every individual and drops positions that cannot be
// serialized. The source measurements are never modified.
func reduceAll(in Input) ([][]model.Measurement, int) {
	out := make([][]model.Measurement, len(in.Dataset.Individuals))
	dropped := 0
	for i, ind := range in.Dataset.Individuals {
		seq := in.Reducer.Reduce(ind.Measurements)
		kept := seq[:0:0]
		for _, m := range seq {
			if !m.Finite() {
				dropped++
				continue
			}
			kept = append(kept, m)
		}
		out[i] = kept
	}
	return out, dropped
}

func buildTrace(in Input, seq []model.Measurement) (Trace, error) {
	t := Trace{
		X:       make([]float64, len(seq)),
		Y:       make([]float64, len(seq)),
		Text:    make([]string, len(seq)),
		Marker:  Marker{Color: make([]int, len(seq)), Size: in.MarkerSize},
		StateID: make([]string, len(seq)),
	}
	for i, m := range seq {
		t.X[i] = m.PCA1
		t.Y[i] = m.PCA2
		t.Marker.Color[i] = m.Cluster
		t.StateID[i] = m.StateID

		text, err := hoverText(in.Dataset, m, in.TextFields)
		if err != nil {
			return Trace{}, err
		}
		t.Text[i] = text
	}
	return t, nil
}

func hoverText(ds *model.Dataset, m model.Measurement, fields []string) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		v, err := ds.Column(m, f)
		if err != nil {
			return "", err
		}
		parts[i] = f + ": " + v
	}
	return strings.Join(parts, textSeparator), nil
}

// groupByCluster collects reduced positions per cluster label, in order of
// first appearance.
func groupByCluster(reduced [][]model.Measurement) []hull.Group {
	var groups []hull.Group
	index := make(map[int]int)
	for _, seq := range reduced {
		for _, m := range seq {
			i, ok := index[m.Cluster]
			if !ok {
				i = len(groups)
				index[m.Cluster] = i
				groups = append(groups, hull.Group{Cluster: m.Cluster})
			}
			groups[i].Points = append(groups[i].Points, r2.Vec{X: m.PCA1, Y: m.PCA2})
		}
	}
	return groups
}
