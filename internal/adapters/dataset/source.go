// Package dataset loads the source tables into an immutable model.Dataset.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/biofitviz/internal/domain/model"
)

// Trajectory table columns.
const (
	colTrajCloudID      = "cloudid"
	colTrajStarting     = "startingstate"
	colTrajEnding       = "endingstate"
	colTrajDistribution = "ClusterDistribution"
)

// Source loads a dataset.
type Source interface {
	Load(ctx context.Context) (*model.Dataset, error)
}

// table is a header plus string cells; empty cells are missing values.
type table struct {
	name   string
	header []string
	rows   [][]string
}

func (t *table) column(name string) (int, error) {
	i := slices.Index(t.header, name)
	if i < 0 {
		return -1, fmt.Errorf("table %s: column %q: %w", t.name, name, ErrMissingColumn)
	}
	return i, nil
}

func (t *table) cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// tables is what every source hands to build.
type tables struct {
	biometrics   *table
	trajectories *table // optional
	clusters     []model.Description
	workouts     []model.Description
}

func build(t tables, o options) (*model.Dataset, error) {
	ds := &model.Dataset{
		ClusterDescriptions: make(map[int]string, len(t.clusters)),
		Workouts:            t.workouts,
	}
	if ds.Workouts == nil {
		ds.Workouts = make([]model.Description, 0)
	}
	for _, d := range t.clusters {
		label, err := parseLabel(d.ID)
		if err != nil {
			return nil, fmt.Errorf("cluster description %q: %w", d.ID, err)
		}
		ds.ClusterDescriptions[label] = d.Description
	}

	if err := buildMeasurements(ds, t.biometrics, o); err != nil {
		return nil, err
	}
	if t.trajectories != nil {
		if err := buildTransitions(ds, t.trajectories); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func buildMeasurements(ds *model.Dataset, bio *table, o options) error {
	var idx [6]int
	for i, name := range []string{model.ColCloudID, model.ColWeek, model.ColCluster, model.ColPCA1, model.ColPCA2, model.ColStateID} {
		c, err := bio.column(name)
		if err != nil {
			return err
		}
		idx[i] = c
	}

	fields := numericFields(bio, idx[:], o.excluded)
	for _, f := range fields {
		ds.FieldNames = append(ds.FieldNames, bio.header[f])
	}

	order := make(map[string]int)
	for r, row := range bio.rows {
		line := r + 2 // header is line 1
		id := bio.cell(row, idx[0])
		if id == "" {
			return fmt.Errorf("table %s line %d: empty %s: %w", bio.name, line, model.ColCloudID, model.ErrDataShape)
		}
		week, err := parseWeek(bio.cell(row, idx[1]))
		if err != nil {
			return fmt.Errorf("table %s line %d: %s: %w", bio.name, line, model.ColWeek, err)
		}
		label, err := parseLabel(bio.cell(row, idx[2]))
		if err != nil {
			return fmt.Errorf("table %s line %d: %s: %w", bio.name, line, model.ColCluster, err)
		}
		x, err := parseFloat(bio.cell(row, idx[3]))
		if err != nil {
			return fmt.Errorf("table %s line %d: %s: %w", bio.name, line, model.ColPCA1, err)
		}
		y, err := parseFloat(bio.cell(row, idx[4]))
		if err != nil {
			return fmt.Errorf("table %s line %d: %s: %w", bio.name, line, model.ColPCA2, err)
		}

		values := make([]float64, len(fields))
		for i, f := range fields {
			// numericFields guarantees the cell parses.
			values[i], _ = parseFloat(bio.cell(row, f))
		}

		m := model.Measurement{
			CloudID: id,
			Week:    week,
			Cluster: label,
			PCA1:    x,
			PCA2:    y,
			StateID: bio.cell(row, idx[5]),
			Values:  values,
		}
		pos, ok := order[id]
		if !ok {
			pos = len(ds.Individuals)
			order[id] = pos
			ds.Individuals = append(ds.Individuals, model.Individual{CloudID: id})
		}
		ds.Individuals[pos].Measurements = append(ds.Individuals[pos].Measurements, m)
	}
	return nil
}

// numericFields returns the indexes of columns that are neither built-in nor
// excluded and whose non-empty cells all parse as numbers.
func numericFields(t *table, builtin []int, excluded []string) []int {
	var out []int
	for c, name := range t.header {
		if slices.Contains(builtin, c) || slices.Contains(excluded, name) {
			continue
		}
		numeric := true
		for _, row := range t.rows {
			if _, err := parseFloat(t.cell(row, c)); err != nil {
				numeric = false
				break
			}
		}
		if numeric {
			out = append(out, c)
		}
	}
	return out
}

func buildTransitions(ds *model.Dataset, traj *table) error {
	var idx [3]int
	for i, name := range []string{colTrajCloudID, colTrajStarting, colTrajEnding} {
		c, err := traj.column(name)
		if err != nil {
			return err
		}
		idx[i] = c
	}
	dist := slices.Index(traj.header, colTrajDistribution)

	ds.Transitions = make([]model.Transition, 0, len(traj.rows))
	for r, row := range traj.rows {
		t := model.Transition{
			CloudID:       traj.cell(row, idx[0]),
			StartingState: traj.cell(row, idx[1]),
			EndingState:   traj.cell(row, idx[2]),
		}
		if raw := traj.cell(row, dist); raw != "" {
			if err := json.Unmarshal([]byte(raw), &t.ClusterDistribution); err != nil {
				return fmt.Errorf("table %s line %d: %s: %w: %w", traj.name, r+2, colTrajDistribution, model.ErrDataShape, err)
			}
		}
		// Serialized as [] when the cell is empty or holds JSON null.
		if t.ClusterDistribution == nil {
			t.ClusterDistribution = make([]float64, 0)
		}
		ds.Transitions = append(ds.Transitions, t)
	}
	return nil
}

// parseFloat reads a number; an empty cell is a missing value (NaN).
func parseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number: %w", s, model.ErrDataShape)
	}
	return v, nil
}

// parseWeek reads the time marker, which orders measurements and so must be
// a finite number.
func parseWeek(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing value: %w", model.ErrDataShape)
	}
	v, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite week: %w", s, model.ErrDataShape)
	}
	return v, nil
}

// parseLabel accepts integral labels, also written as floats ("3.0").
func parseLabel(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt || f >= -math.MinInt {
		return 0, fmt.Errorf("%q is not a cluster label: %w", s, model.ErrDataShape)
	}
	return int(f), nil
}
