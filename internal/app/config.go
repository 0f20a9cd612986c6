package service

import (
	"github.com/okian/biofitviz/internal/adapters/dataset"
	"github.com/okian/biofitviz/internal/config"
)

// NewSource picks the dataset source named by the config.
func NewSource(cfg *config.Config) dataset.Source {
	excluded := dataset.WithExcludedFields(cfg.ExcludedFields)
	if cfg.DataSource == config.SourceSQLite {
		return dataset.NewSQLiteSource(cfg.SQLitePath, excluded)
	}
	return dataset.NewCSVSource(
		cfg.BiometricsPath,
		cfg.TrajectoriesPath,
		cfg.ClusterDescriptionsPath,
		cfg.WorkoutDescriptionsPath,
		excluded,
	)
}

// OptionsFromConfig maps the config onto service options.
func OptionsFromConfig(cfg *config.Config) []Option {
	return []Option{
		WithSource(NewSource(cfg)),
		WithDisplayCap(cfg.DisplayCap),
		WithMarkerSize(cfg.MarkerSize),
		WithReduction(cfg.ReductionStrategy, cfg.TopK, cfg.HeadN),
		WithChangeFields(cfg.ChangeFields),
		WithTextFields(cfg.TextFields),
		WithPalette(cfg.Palette, cfg.HullAlpha),
	}
}
