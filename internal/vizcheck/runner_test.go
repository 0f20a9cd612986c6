package vizcheck_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/biofitviz/internal/adapters/http/api"
	app "github.com/okian/biofitviz/internal/app"
	"github.com/okian/biofitviz/internal/config"
	"github.com/okian/biofitviz/internal/domain/geometry"
	"github.com/okian/biofitviz/internal/vizcheck"
	"github.com/okian/biofitviz/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const fixtureBiometrics = `CloudId,MeasuredOnWeek,Cluster,PCA1,PCA2,stateid,weight
a,1,0,0,0,a1,70
a,2,0,3,0,a2,75
a,3,1,5,5,a3,80
a,4,1,7,6,a4,88
b,1,0,0,3,b1,60
b,2,1,6,5,b2,65
b,3,1,5,7,b3,66
c,1,2,1,1,c1,50
`

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}
	cfg := config.New()
	cfg.BiometricsPath = write("bio.csv", fixtureBiometrics)
	cfg.TrajectoriesPath = write("traj.csv", "cloudid,startingstate,endingstate,ClusterDistribution\nb,b1,b2,\"[0.5, 0.5]\"\n")
	cfg.ClusterDescriptionsPath = write("clusters.csv", "0,Rest\n1,Work\n2,Other\n")
	cfg.WorkoutDescriptionsPath = write("workouts.csv", "1,Cycling\n2,Rowing\n")
	cfg.TopK = 2
	return cfg
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		So(vizcheck.SetupLogging(false), ShouldBeNil)
		ctx := context.Background()
		cfg := fixtureConfig(t)

		svc := app.New(app.OptionsFromConfig(cfg)...)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		server := api.NewServer(svc, svc)
		mux := http.NewServeMux()
		server.Register(ctx, mux)
		ts := httptest.NewServer(server.Handler(mux))
		defer ts.Close()

		Convey("When checking it", func() {
			out := filepath.Join(t.TempDir(), "out", "payload.json")
			err := vizcheck.Run(ctx, &vizcheck.Config{
				BaseURL:    ts.URL,
				Timeout:    5 * time.Second,
				OutputFile: out,
				MaxTraces:  cfg.DisplayCap,
				MaxStates:  cfg.TopK + 1,
			})

			Convey("Then every check passes and the payload is saved", func() {
				So(err, ShouldBeNil)
				raw, readErr := os.ReadFile(out)
				So(readErr, ShouldBeNil)
				var res geometry.Result
				So(json.Unmarshal(raw, &res), ShouldBeNil)
				So(len(res.Data), ShouldEqual, 3)
				So(len(res.Hulls), ShouldEqual, 2)
			})
		})

		Convey("When the reducer bound is stricter than the service", func() {
			err := vizcheck.Run(ctx, &vizcheck.Config{BaseURL: ts.URL, Timeout: 5 * time.Second, MaxStates: 1})

			Convey("Then the run reports failed checks", func() {
				So(errors.Is(err, vizcheck.ErrChecksFailed), ShouldBeTrue)
			})
		})
	})

	Convey("Given no service", t, func() {
		So(logger.Init(), ShouldBeNil)
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		Convey("Then the health check fails", func() {
			err := vizcheck.Run(context.Background(), &vizcheck.Config{BaseURL: ts.URL, Timeout: time.Second})
			So(errors.Is(err, vizcheck.ErrUnexpectedStatus), ShouldBeTrue)
		})
	})
}

func TestExport(t *testing.T) {
	Convey("Given a config over CSV tables", t, func() {
		So(logger.Init(), ShouldBeNil)
		cfg := fixtureConfig(t)

		Convey("When exporting", func() {
			var buf bytes.Buffer
			err := vizcheck.Export(context.Background(), cfg, &buf)

			Convey("Then the payload matches what the server would serve", func() {
				So(err, ShouldBeNil)
				var res geometry.Result
				So(json.Unmarshal(buf.Bytes(), &res), ShouldBeNil)
				So(len(res.Data), ShouldEqual, 3)
				So(res.Data[0].StateID, ShouldResemble, []string{"a1", "a2", "a4"})
				So(res.Workouts, ShouldResemble, map[string]string{"1": "Cycling", "2": "Rowing"})
				So(len(res.Trajectories), ShouldEqual, 1)
			})
		})

		Convey("When the tables are missing", func() {
			cfg.BiometricsPath = filepath.Join(t.TempDir(), "nope.csv")
			err := vizcheck.Export(context.Background(), cfg, &bytes.Buffer{})

			So(err, ShouldNotBeNil)
		})
	})
}
