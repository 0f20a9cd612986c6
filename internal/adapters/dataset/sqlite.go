package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/biofitviz/internal/domain/model"
)

// SQLite table names.
const (
	TableBiometrics          = "biometrics"
	TableTrajectories        = "trajectories"
	TableClusterDescriptions = "cluster_descriptions"
	TableWorkoutDescriptions = "workout_descriptions"
)

// SQLiteSource reads the same tables from one SQLite database. Only the
// biometrics table is required; description tables hold (id, description).
type SQLiteSource struct {
	Path string

	opts options
}

// NewSQLiteSource returns a SQLite-backed Source.
func NewSQLiteSource(path string, opts ...Option) *SQLiteSource {
	s := &SQLiteSource{Path: path}
	for _, opt := range opts {
		opt(&s.opts)
	}
	return s
}

// Load opens the database and reads every table. It never writes.
func (s *SQLiteSource) Load(ctx context.Context) (*model.Dataset, error) {
	// sqlite creates missing files on open.
	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	var t tables
	if t.biometrics, err = queryTable(ctx, db, TableBiometrics); err != nil {
		return nil, err
	}

	ok, err := hasTable(ctx, db, TableTrajectories)
	if err != nil {
		return nil, err
	}
	if ok {
		if t.trajectories, err = queryTable(ctx, db, TableTrajectories); err != nil {
			return nil, err
		}
	}

	if t.clusters, err = queryDescriptions(ctx, db, TableClusterDescriptions); err != nil {
		return nil, err
	}
	if t.workouts, err = queryDescriptions(ctx, db, TableWorkoutDescriptions); err != nil {
		return nil, err
	}
	return build(t, s.opts)
}

func hasTable(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", name, err)
	}
	return n > 0, nil
}

// queryTable reads a whole table as strings; NULL becomes an empty cell.
func queryTable(ctx context.Context, db *sql.DB, name string) (*table, error) {
	ok, err := hasTable(ctx, db, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("table %s: %w", name, ErrMissingTable)
	}

	// name is one of the package constants, never user input.
	rows, err := db.QueryContext(ctx, "SELECT * FROM "+name+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", name, err)
	}
	t := &table{name: name, header: header}

	cells := make([]sql.NullString, len(header))
	dest := make([]any, len(header))
	for i := range cells {
		dest[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = c.String
		}
		t.rows = append(t.rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return t, nil
}

func queryDescriptions(ctx context.Context, db *sql.DB, name string) ([]model.Description, error) {
	ok, err := hasTable(ctx, db, name)
	if err != nil || !ok {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT id, description FROM "+name+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Description
	for rows.Next() {
		var id, desc sql.NullString
		if err := rows.Scan(&id, &desc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", name, err)
		}
		out = append(out, model.Description{ID: id.String, Description: desc.String})
	}
	return out, rows.Err()
}
