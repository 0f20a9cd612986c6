package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	app "github.com/okian/biofitviz/internal/app"
	"github.com/okian/biofitviz/internal/config"
	"github.com/okian/biofitviz/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const testBiometrics = `CloudId,MeasuredOnWeek,Cluster,PCA1,PCA2,stateid,weight,gender_m
a,1,0,0,0,a1,70,1
a,2,0,3,0,a2,72,1
a,3,1,5,5,a3,80,1
b,1,0,0,3,b1,60,0
b,2,1,6,5,b2,65,0
b,3,1,5,7,b3,66,0
`

func writeTestFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestMainWiring(t *testing.T) {
	convey.Convey("Given a config pointing at CSV tables", t, func() {
		convey.So(logger.Init(logger.WithFormat(logger.FormatText)), convey.ShouldBeNil)
		ctx := context.Background()
		dir := t.TempDir()

		cfg := config.New()
		cfg.BiometricsPath = writeTestFile(t, dir, "bio.csv", testBiometrics)
		cfg.TrajectoriesPath = writeTestFile(t, dir, "traj.csv", "cloudid,startingstate,endingstate,ClusterDistribution\na,a1,a3,\n")
		cfg.ClusterDescriptionsPath = writeTestFile(t, dir, "clusters.csv", "0,Rest\n1,Work\n")
		cfg.WorkoutDescriptionsPath = writeTestFile(t, dir, "workouts.csv", "1,Cycling\n")
		convey.So(cfg.Validate(), convey.ShouldBeNil)

		svc := app.New(append(app.OptionsFromConfig(cfg), app.WithLogger(logger.Get()))...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newHandler(ctx, cfg, svc)

		convey.Convey("When requesting /api/data", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/data", http.NoBody))

			convey.Convey("Then the payload is served with both hulls", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var body struct {
					Data  []json.RawMessage `json:"data"`
					Hulls []struct {
						Cluster     int    `json:"cluster"`
						Description string `json:"description"`
					} `json:"hulls"`
					Trajectories []json.RawMessage `json:"trajectories"`
				}
				convey.So(json.Unmarshal(w.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(len(body.Data), convey.ShouldEqual, 2)
				convey.So(len(body.Hulls), convey.ShouldEqual, 2)
				convey.So(body.Hulls[0].Description, convey.ShouldEqual, "Rest")
				convey.So(len(body.Trajectories), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When requesting the docs and landing page", func() {
			for _, path := range []string{"/", "/api-docs", "/openapi.yaml", "/healthz", "/stats"} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})
	})
}
