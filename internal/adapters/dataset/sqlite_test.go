package dataset_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/biofitviz/internal/adapters/dataset"
	"github.com/okian/biofitviz/internal/domain/model"
)

func seedSQLite(t *testing.T, path string, stmts ...string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

func TestSQLiteSource(t *testing.T) {
	convey.Convey("Given a SQLite database", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "viz.db")

		convey.Convey("When every table is present", func() {
			seedSQLite(t, path,
				`CREATE TABLE biometrics (CloudId TEXT, MeasuredOnWeek REAL, Cluster INTEGER, PCA1 REAL, PCA2 REAL, stateid TEXT, weight REAL, gender_f INTEGER)`,
				`INSERT INTO biometrics VALUES ('u1', 1, 0, 0.0, 0.0, 's1', 70.5, 1), ('u1', 2, 3, 1.5, -2.0, 's2', NULL, 1), ('u2', 1, 3, 2.0, 2.0, 's3', 90, 0)`,
				`CREATE TABLE trajectories (cloudid TEXT, startingstate TEXT, endingstate TEXT, ClusterDistribution TEXT)`,
				`INSERT INTO trajectories VALUES ('u1', 's1', 's2', '[1, 0]')`,
				`CREATE TABLE cluster_descriptions (id INTEGER, description TEXT)`,
				`INSERT INTO cluster_descriptions VALUES (0, 'resting'), (3, 'cardio')`,
				`CREATE TABLE workout_descriptions (id TEXT, description TEXT)`,
				`INSERT INTO workout_descriptions VALUES ('w9', 'Yoga')`,
			)
			ds, err := dataset.NewSQLiteSource(path, dataset.WithExcludedFields([]string{"gender_f"})).Load(ctx)

			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then rows are decoded like CSV cells", func() {
				convey.So(len(ds.Individuals), convey.ShouldEqual, 2)
				convey.So(ds.FieldNames, convey.ShouldResemble, []string{"weight"})
				m := ds.Individuals[0].Measurements[1]
				convey.So(m.Cluster, convey.ShouldEqual, 3)
				convey.So(m.PCA1, convey.ShouldEqual, 1.5)
				convey.So(m.PCA2, convey.ShouldEqual, -2.0)
				convey.So(ds.Individuals[0].Measurements[0].Values[0], convey.ShouldEqual, 70.5)
			})

			convey.Convey("Then lookups and transitions are loaded", func() {
				convey.So(ds.ClusterDescriptions[3], convey.ShouldEqual, "cardio")
				convey.So(ds.Workouts, convey.ShouldResemble, []model.Description{{ID: "w9", Description: "Yoga"}})
				convey.So(len(ds.Transitions), convey.ShouldEqual, 1)
				convey.So(ds.Transitions[0].ClusterDistribution, convey.ShouldResemble, []float64{1, 0})
			})
		})

		convey.Convey("When only the biometrics table exists", func() {
			seedSQLite(t, path,
				`CREATE TABLE biometrics (CloudId TEXT, MeasuredOnWeek REAL, Cluster INTEGER, PCA1 REAL, PCA2 REAL, stateid TEXT)`,
				`INSERT INTO biometrics VALUES ('u1', 1, 0, 0, 0, 's1')`,
			)
			ds, err := dataset.NewSQLiteSource(path).Load(ctx)

			convey.Convey("Then optional tables load empty", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ds.Transitions, convey.ShouldBeEmpty)
				convey.So(ds.Workouts, convey.ShouldBeEmpty)
				convey.So(ds.ClusterDescriptions, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the biometrics table is missing", func() {
			seedSQLite(t, path, `CREATE TABLE other (x INTEGER)`)
			_, err := dataset.NewSQLiteSource(path).Load(ctx)

			convey.Convey("Then the load fails structurally", func() {
				convey.So(errors.Is(err, dataset.ErrMissingTable), convey.ShouldBeTrue)
				convey.So(errors.Is(err, model.ErrDataShape), convey.ShouldBeTrue)
			})
		})
	})
}

func TestSQLiteSourceMissingFile(t *testing.T) {
	convey.Convey("Given a path with no database", t, func() {
		path := filepath.Join(t.TempDir(), "absent.db")

		convey.Convey("Then loading fails without creating the file", func() {
			_, err := dataset.NewSQLiteSource(path).Load(context.Background())
			convey.So(errors.Is(err, dataset.ErrOpen), convey.ShouldBeTrue)
		})
	})
}
