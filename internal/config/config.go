// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
)

// Supported data sources.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text, json or auto (text on a terminal).
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// DataSource selects where tables are loaded from: csv or sqlite.
	DataSource string `koanf:"data_source"`

	// CSV table locations.
	BiometricsPath          string `koanf:"biometrics_path"`
	TrajectoriesPath        string `koanf:"trajectories_path"`
	ClusterDescriptionsPath string `koanf:"cluster_descriptions_path"`
	WorkoutDescriptionsPath string `koanf:"workout_descriptions_path"`

	// SQLitePath points at a database holding every table.
	SQLitePath string `koanf:"sqlite_path"`

	// DisplayCap bounds how many individuals get a trace.
	DisplayCap int `koanf:"display_cap"`

	// ReductionStrategy is top_change, head or all.
	ReductionStrategy string `koanf:"reduction_strategy"`
	TopK              int    `koanf:"top_k"`
	HeadN             int    `koanf:"head_n"`

	// ChangeFields restricts the change magnitude to these fields; empty
	// means every numeric field not listed in ExcludedFields.
	ChangeFields   []string `koanf:"change_fields"`
	ExcludedFields []string `koanf:"excluded_fields"`

	// Palette names the cluster color table.
	Palette   string  `koanf:"palette"`
	HullAlpha float64 `koanf:"hull_alpha"`

	MarkerSize int `koanf:"marker_size"`

	// TextFields lists the columns rendered into hover text.
	TextFields []string `koanf:"text_fields"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "auto",
		Addr:                    ":5000",
		DataSource:              SourceCSV,
		BiometricsPath:          "data/biometrics.csv",
		TrajectoriesPath:        "data/trajectories.csv",
		ClusterDescriptionsPath: "data/cluster_descriptions.csv",
		WorkoutDescriptionsPath: "data/workouts_descriptions.csv",
		DisplayCap:              15,
		ReductionStrategy:       "top_change",
		TopK:                    3,
		HeadN:                   8,
		ExcludedFields:          []string{"gender_m", "gender_f"},
		Palette:                 "tab20b",
		HullAlpha:               0.5,
		MarkerSize:              3,
		CORSOrigins:             []string{"*"},
	}
}

// Validate checks ranges and required settings.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.DisplayCap < 1:
		return fmt.Errorf("display_cap must be positive: %w", ErrInvalidConfig)
	case c.TopK < 0:
		return fmt.Errorf("top_k must not be negative: %w", ErrInvalidConfig)
	case c.HeadN < 1:
		return fmt.Errorf("head_n must be positive: %w", ErrInvalidConfig)
	case c.HullAlpha < 0 || c.HullAlpha > 1:
		return fmt.Errorf("hull_alpha must be within [0, 1]: %w", ErrInvalidConfig)
	case c.MarkerSize < 1:
		return fmt.Errorf("marker_size must be positive: %w", ErrInvalidConfig)
	}

	switch c.DataSource {
	case SourceCSV:
		if c.BiometricsPath == "" {
			return fmt.Errorf("biometrics_path is required for csv: %w", ErrInvalidConfig)
		}
	case SourceSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for sqlite: %w", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("unknown data_source %q: %w", c.DataSource, ErrInvalidConfig)
	}
	return nil
}
