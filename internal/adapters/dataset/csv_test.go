package dataset_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/biofitviz/internal/adapters/dataset"
	"github.com/okian/biofitviz/internal/domain/model"
)

const biometricsCSV = `CloudId,MeasuredOnWeek,Cluster,PCA1,PCA2,stateid,weight,gender_m,note
u2,2,1,0.5,0.5,s2b,81,1,ok
u1,1,0,0,0,s1a,70,0,ok
u2,1,1.0,1,1,s2a,80,1,late
u1,2,0,1,0,s1b,,0,ok
`

const trajectoriesCSV = `cloudid,startingstate,endingstate,ClusterDistribution
u1,s1a,s1b,"[0.25, 0.75]"
u2,s2a,s2b,
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestCSVSource(t *testing.T) {
	convey.Convey("Given CSV tables on disk", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		bio := writeFile(t, dir, "bio.csv", biometricsCSV)
		traj := writeFile(t, dir, "traj.csv", trajectoriesCSV)
		clusters := writeFile(t, dir, "clusters.csv", "0,resting\n1,active\n")
		workouts := writeFile(t, dir, "workouts.csv", "w1,Run\nw2,Swim\n")

		convey.Convey("When loading every table", func() {
			src := dataset.NewCSVSource(bio, traj, clusters, workouts,
				dataset.WithExcludedFields([]string{"gender_m"}))
			ds, err := src.Load(ctx)

			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then individuals keep first-appearance order", func() {
				convey.So(len(ds.Individuals), convey.ShouldEqual, 2)
				convey.So(ds.Individuals[0].CloudID, convey.ShouldEqual, "u2")
				convey.So(ds.Individuals[1].CloudID, convey.ShouldEqual, "u1")
				convey.So(ds.MeasurementCount(), convey.ShouldEqual, 4)
			})

			convey.Convey("Then only numeric non-excluded columns become fields", func() {
				convey.So(ds.FieldNames, convey.ShouldResemble, []string{"weight"})
			})

			convey.Convey("Then empty cells are missing values", func() {
				m := ds.Individuals[1].Measurements[1]
				convey.So(m.StateID, convey.ShouldEqual, "s1b")
				convey.So(math.IsNaN(m.Values[0]), convey.ShouldBeTrue)
			})

			convey.Convey("Then float-written labels are accepted", func() {
				convey.So(ds.Individuals[0].Measurements[1].Cluster, convey.ShouldEqual, 1)
			})

			convey.Convey("Then transitions pass through", func() {
				want := []model.Transition{
					{CloudID: "u1", StartingState: "s1a", EndingState: "s1b", ClusterDistribution: []float64{0.25, 0.75}},
					{CloudID: "u2", StartingState: "s2a", EndingState: "s2b", ClusterDistribution: []float64{}},
				}
				convey.So(cmp.Diff(want, ds.Transitions), convey.ShouldBeEmpty)
			})

			convey.Convey("Then an empty distribution serializes as an empty array", func() {
				b, err := json.Marshal(ds.Transitions[1].ClusterDistribution)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldEqual, "[]")
			})

			convey.Convey("Then description lookups are loaded", func() {
				convey.So(ds.ClusterDescriptions[1], convey.ShouldEqual, "active")
				convey.So(ds.Workouts, convey.ShouldResemble, []model.Description{
					{ID: "w1", Description: "Run"}, {ID: "w2", Description: "Swim"},
				})
			})
		})

		convey.Convey("When optional tables are not configured", func() {
			ds, err := dataset.NewCSVSource(bio, "", "", "").Load(ctx)

			convey.Convey("Then lookups are empty but present", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ds.Transitions, convey.ShouldBeEmpty)
				convey.So(ds.ClusterDescriptions, convey.ShouldNotBeNil)
				convey.So(ds.Workouts, convey.ShouldNotBeNil)
				convey.So(ds.FieldNames, convey.ShouldResemble, []string{"weight", "gender_m"})
			})
		})

		convey.Convey("When a required column is missing", func() {
			bad := writeFile(t, dir, "bad.csv", "CloudId,MeasuredOnWeek,Cluster,PCA1,stateid\nu1,1,0,0,s\n")
			_, err := dataset.NewCSVSource(bad, "", "", "").Load(ctx)

			convey.Convey("Then the load fails with a data shape error", func() {
				convey.So(errors.Is(err, dataset.ErrMissingColumn), convey.ShouldBeTrue)
				convey.So(errors.Is(err, model.ErrDataShape), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a week is missing or not finite", func() {
			for _, tc := range []struct{ name, week string }{{"empty", ""}, {"inf", "inf"}, {"nan", "NaN"}} {
				name, week := tc.name, tc.week
				bad := writeFile(t, dir, "week_"+name+".csv", "CloudId,MeasuredOnWeek,Cluster,PCA1,PCA2,stateid,weight\nu1,"+week+",0,1,1,s1,80\n")
				_, err := dataset.NewCSVSource(bad, "", "", "").Load(ctx)

				convey.Convey("Then a "+name+" week is a data shape error", func() {
					convey.So(errors.Is(err, model.ErrDataShape), convey.ShouldBeTrue)
					convey.So(err.Error(), convey.ShouldContainSubstring, model.ColWeek)
				})
			}
		})

		convey.Convey("When a cluster label does not fit an int", func() {
			bad := writeFile(t, dir, "bad.csv", "CloudId,MeasuredOnWeek,Cluster,PCA1,PCA2,stateid\nu1,1,1e20,0,0,s\n")
			_, err := dataset.NewCSVSource(bad, "", "", "").Load(ctx)

			convey.So(errors.Is(err, model.ErrDataShape), convey.ShouldBeTrue)
		})

		convey.Convey("When a distribution cell holds JSON null", func() {
			nullTraj := writeFile(t, dir, "traj_null.csv", "cloudid,startingstate,endingstate,ClusterDistribution\nu1,a,b,null\n")
			ds, err := dataset.NewCSVSource(bio, nullTraj, "", "").Load(ctx)

			convey.So(err, convey.ShouldBeNil)
			convey.So(ds.Transitions[0].ClusterDistribution, convey.ShouldNotBeNil)
			convey.So(ds.Transitions[0].ClusterDistribution, convey.ShouldBeEmpty)
		})

		convey.Convey("When a cluster label is not integral", func() {
			bad := writeFile(t, dir, "bad.csv", "CloudId,MeasuredOnWeek,Cluster,PCA1,PCA2,stateid\nu1,1,0.5,0,0,s\n")
			_, err := dataset.NewCSVSource(bad, "", "", "").Load(ctx)

			convey.So(errors.Is(err, model.ErrDataShape), convey.ShouldBeTrue)
		})

		convey.Convey("When the biometrics file does not exist", func() {
			_, err := dataset.NewCSVSource(filepath.Join(dir, "nope.csv"), "", "", "").Load(ctx)

			convey.So(errors.Is(err, dataset.ErrOpen), convey.ShouldBeTrue)
		})

		convey.Convey("When a distribution cell is not a JSON array", func() {
			bad := writeFile(t, dir, "traj_bad.csv", "cloudid,startingstate,endingstate,ClusterDistribution\nu1,a,b,oops\n")
			_, err := dataset.NewCSVSource(bio, bad, "", "").Load(ctx)

			convey.So(errors.Is(err, model.ErrDataShape), convey.ShouldBeTrue)
		})

		convey.Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := dataset.NewCSVSource(bio, "", "", "").Load(cctx)

			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}
