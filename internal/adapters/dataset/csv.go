package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/biofitviz/internal/domain/model"
)

// CSVSource reads every table from CSV files. The biometric and trajectory
// files carry a header row; the description files are headerless id,description
// pairs. Empty paths other than Biometrics are treated as absent tables.
type CSVSource struct {
	Biometrics          string
	Trajectories        string
	ClusterDescriptions string
	WorkoutDescriptions string

	opts options
}

// NewCSVSource returns a CSV-backed Source.
func NewCSVSource(biometrics, trajectories, clusters, workouts string, opts ...Option) *CSVSource {
	s := &CSVSource{
		Biometrics:          biometrics,
		Trajectories:        trajectories,
		ClusterDescriptions: clusters,
		WorkoutDescriptions: workouts,
	}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Load reads and validates all files.
func (s *CSVSource) Load(ctx context.Context) (*model.Dataset, error) {
	var t tables
	var err error

	if t.biometrics, err = readTable(ctx, s.Biometrics); err != nil {
		return nil, err
	}
	if s.Trajectories != "" {
		if t.trajectories, err = readTable(ctx, s.Trajectories); err != nil {
			return nil, err
		}
	}
	if s.ClusterDescriptions != "" {
		if t.clusters, err = readDescriptions(ctx, s.ClusterDescriptions); err != nil {
			return nil, err
		}
	}
	if s.WorkoutDescriptions != "" {
		if t.workouts, err = readDescriptions(ctx, s.WorkoutDescriptions); err != nil {
			return nil, err
		}
	}
	return build(t, s.opts)
}

func readTable(ctx context.Context, path string) (*table, error) {
	records, err := readCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row: %w", path, model.ErrDataShape)
	}
	return &table{name: path, header: records[0], rows: records[1:]}, nil
}

func readDescriptions(ctx context.Context, path string) ([]model.Description, error) {
	records, err := readCSV(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]model.Description, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s line %d: want id,description: %w", path, i+1, model.ErrDataShape)
		}
		out = append(out, model.Description{ID: rec[0], Description: rec[1]})
	}
	return out, nil
}

func readCSV(ctx context.Context, path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	var out [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", path, model.ErrDataShape, err)
		}
		out = append(out, rec)
	}
}
