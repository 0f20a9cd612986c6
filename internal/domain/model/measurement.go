// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strconv"
)

// Built-in column names every measurement carries besides its biometric fields.
const (
	ColCloudID = "CloudId"
	ColWeek    = "MeasuredOnWeek"
	ColCluster = "Cluster"
	ColPCA1    = "PCA1"
	ColPCA2    = "PCA2"
	ColStateID = "stateid"
)

// Measurement is one biometric snapshot of an individual, already projected
// to 2-D and cluster-labeled upstream.
type Measurement struct {
	CloudID string
	Week    float64 // time marker; comparable, not necessarily sorted on input
	Cluster int
	PCA1    float64
	PCA2    float64
	StateID string
	// Values is aligned with Dataset.FieldNames.
	Values []float64
}

// Finite reports whether the projected position can be serialized.
func (m Measurement) Finite() bool {
	return !math.IsNaN(m.PCA1) && !math.IsInf(m.PCA1, 0) &&
		!math.IsNaN(m.PCA2) && !math.IsInf(m.PCA2, 0)
}

// Individual is one tracked person with a measurement history.
type Individual struct {
	CloudID      string
	Measurements []Measurement
}

// Transition is a directed edge between two states of one individual.
type Transition struct {
	CloudID             string
	StartingState       string
	EndingState         string
	ClusterDistribution []float64
}

// Description is an id/description pair from a lookup table, kept in file order.
type Description struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Hull is the convex boundary of one cluster, recomputed per request.
type Hull struct {
	Cluster     int          `json:"cluster"`
	Points      [][2]float64 `json:"hull_points"`
	Color       string       `json:"color"`
	Description string       `json:"description"`
}

// Dataset holds the immutable source tables after loading.
type Dataset struct {
	// FieldNames names the numeric biometric columns, in source column order.
	FieldNames []string
	// Individuals are in order of first appearance in the source table.
	Individuals []Individual
	Transitions []Transition

	ClusterDescriptions map[int]string
	Workouts            []Description
}

// FieldIndex returns the position of a named biometric field in Values.
func (d *Dataset) FieldIndex(name string) (int, bool) {
	for i, n := range d.FieldNames {
		if n == name {
			return i, true
		}
	}
	return -1, false
}

// HasColumn reports whether name is a built-in column or a biometric field.
func (d *Dataset) HasColumn(name string) bool {
	switch name {
	case ColCloudID, ColWeek, ColCluster, ColPCA1, ColPCA2, ColStateID:
		return true
	}
	_, ok := d.FieldIndex(name)
	return ok
}

// MeasurementCount returns the total number of measurements across individuals.
func (d *Dataset) MeasurementCount() int {
	n := 0
	for _, ind := range d.Individuals {
		n += len(ind.Measurements)
	}
	return n
}

// Labels returns distinct cluster labels in order of first appearance.
func (d *Dataset) Labels() []int {
	seen := make(map[int]struct{})
	var out []int
	for _, ind := range d.Individuals {
		for _, m := range ind.Measurements {
			if _, ok := seen[m.Cluster]; ok {
				continue
			}
			seen[m.Cluster] = struct{}{}
			out = append(out, m.Cluster)
		}
	}
	return out
}

// WorkoutMap returns workout descriptions keyed by id.
func (d *Dataset) WorkoutMap() map[string]string {
	out := make(map[string]string, len(d.Workouts))
	for _, w := range d.Workouts {
		out[w.ID] = w.Description
	}
	return out
}

// Column renders the named column of m for hover text.
func (d *Dataset) Column(m Measurement, name string) (string, error) {
	switch name {
	case ColCloudID:
		return m.CloudID, nil
	case ColWeek:
		return formatFloat(m.Week), nil
	case ColCluster:
		return strconv.Itoa(m.Cluster), nil
	case ColPCA1:
		return formatFloat(m.PCA1), nil
	case ColPCA2:
		return formatFloat(m.PCA2), nil
	case ColStateID:
		return m.StateID, nil
	}
	i, ok := d.FieldIndex(name)
	if !ok || i >= len(m.Values) {
		return "", fmt.Errorf("column %q: %w", name, ErrDataShape)
	}
	return formatFloat(m.Values[i]), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
