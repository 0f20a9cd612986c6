// Package trajectory projects transition rows into the API shape.
package trajectory

import "github.com/okian/biofitviz/internal/domain/model"

// Record is one transition as served to the dashboard.
type Record struct {
	CloudID             string    `json:"cloudid"`
	StartingID          string    `json:"startingid"`
	EndingID            string    `json:"endingid"`
	ClusterDistribution []float64 `json:"clusterdistribution"`
}

// Assemble returns the transitions of cloudID in input order. It never
// computes anything; values pass through as they are.
func Assemble(cloudID string, transitions []model.Transition) []Record {
	out := make([]Record, 0)
	for _, t := range transitions {
		if t.CloudID != cloudID {
			continue
		}
		dist := t.ClusterDistribution
		if dist == nil {
			dist = make([]float64, 0)
		}
		out = append(out, Record{
			CloudID:             cloudID,
			StartingID:          t.StartingState,
			EndingID:            t.EndingState,
			ClusterDistribution: dist,
		})
	}
	return out
}

// Index groups transitions by individual, keeping input order within each.
func Index(transitions []model.Transition) map[string][]model.Transition {
	out := make(map[string][]model.Transition)
	for _, t := range transitions {
		out[t.CloudID] = append(out[t.CloudID], t)
	}
	return out
}
