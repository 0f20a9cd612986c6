package config_test

import (
	"errors"
	"testing"

	"github.com/okian/biofitviz/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":5000")
			convey.So(cfg.DataSource, convey.ShouldEqual, config.SourceCSV)
			convey.So(cfg.DisplayCap, convey.ShouldEqual, 15)
			convey.So(cfg.ReductionStrategy, convey.ShouldEqual, "top_change")
			convey.So(cfg.TopK, convey.ShouldEqual, 3)
			convey.So(cfg.HeadN, convey.ShouldEqual, 8)
			convey.So(cfg.Palette, convey.ShouldEqual, "tab20b")
			convey.So(cfg.HullAlpha, convey.ShouldEqual, 0.5)
			convey.So(cfg.MarkerSize, convey.ShouldEqual, 3)
			convey.So(cfg.TextFields, convey.ShouldBeEmpty)
			convey.So(cfg.ExcludedFields, convey.ShouldResemble, []string{"gender_m", "gender_f"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out of range values", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = "" },
			"zero cap":          func(c *config.Config) { c.DisplayCap = 0 },
			"negative top_k":    func(c *config.Config) { c.TopK = -1 },
			"zero head_n":       func(c *config.Config) { c.HeadN = 0 },
			"alpha above one":   func(c *config.Config) { c.HullAlpha = 1.5 },
			"zero marker size":  func(c *config.Config) { c.MarkerSize = 0 },
			"unknown source":    func(c *config.Config) { c.DataSource = "parquet" },
			"sqlite no path":    func(c *config.Config) { c.DataSource = config.SourceSQLite },
			"csv no biometrics": func(c *config.Config) { c.BiometricsPath = "" },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)

			convey.Convey("Then "+name+" is rejected", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}

func TestConfig_ErrorKinds(t *testing.T) {
	convey.Convey("Given the config error kinds", t, func() {
		convey.Convey("Then they name the service they belong to", func() {
			convey.So(config.ErrInvalidConfig.Error(), convey.ShouldContainSubstring, "biofitviz")
			convey.So(config.ErrLoadConfig.Error(), convey.ShouldContainSubstring, "biofitviz")
			convey.So(errors.Is(config.ErrInvalidConfig, config.ErrLoadConfig), convey.ShouldBeFalse)
		})
	})
}
