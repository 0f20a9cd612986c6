// Package service owns the process-wide visualization state and implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/biofitviz/internal/adapters/dataset"
	"github.com/okian/biofitviz/internal/domain/geometry"
	"github.com/okian/biofitviz/internal/domain/hull"
	"github.com/okian/biofitviz/internal/domain/model"
	"github.com/okian/biofitviz/internal/domain/palette"
	"github.com/okian/biofitviz/internal/domain/reduce"
	"github.com/okian/biofitviz/pkg/logger"
	"github.com/okian/biofitviz/pkg/metrics"
)

// Service loads the dataset once and answers geometry queries against it.
// Everything built in Start is read-only afterwards.
type Service struct {
	mu sync.RWMutex

	source dataset.Source

	// Configuration
	displayCap   int
	markerSize   int
	strategy     string
	topK         int
	headN        int
	changeFields []string
	textFields   []string
	paletteName  string
	hullAlpha    float64

	// State
	ds       *model.Dataset
	palette  *palette.Palette
	reducer  reduce.Reducer
	hulls    *hull.Builder
	loadTime time.Duration
	loadedAt time.Time
	started  bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where the dataset is loaded from.
func WithSource(src dataset.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithDisplayCap bounds how many individuals get a trace.
func WithDisplayCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.displayCap = n
		}
	}
}

// WithMarkerSize sets the trace marker size.
func WithMarkerSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.markerSize = n
		}
	}
}

// WithReduction selects the reduction strategy and its parameters.
func WithReduction(strategy string, topK, headN int) Option {
	return func(s *Service) {
		if strategy != "" {
			s.strategy = strategy
		}
		if topK >= 0 {
			s.topK = topK
		}
		if headN > 0 {
			s.headN = headN
		}
	}
}

// WithChangeFields restricts the change magnitude to the named fields.
func WithChangeFields(names []string) Option {
	return func(s *Service) {
		s.changeFields = append([]string(nil), names...)
	}
}

// WithTextFields sets the columns rendered into hover text.
func WithTextFields(names []string) Option {
	return func(s *Service) {
		s.textFields = append([]string(nil), names...)
	}
}

// WithPalette selects the cluster palette and hull fill alpha.
func WithPalette(name string, alpha float64) Option {
	return func(s *Service) {
		if name != "" {
			s.paletteName = name
		}
		if alpha >= 0 && alpha <= 1 {
			s.hullAlpha = alpha
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		displayCap:  15,
		markerSize:  3,
		strategy:    reduce.StrategyTopChange,
		topK:        3,
		headN:       8,
		paletteName: palette.NameTab20b,
		hullAlpha:   0.5,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the dataset and builds the palette, reducer and hull builder.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.source == nil {
		return ErrNoSource
	}

	s.logger.Info(ctx, "loading dataset...")
	begin := time.Now()
	ds, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	loadTime := time.Since(begin)

	for _, f := range s.textFields {
		if !ds.HasColumn(f) {
			return fmt.Errorf("text field %q: %w", f, model.ErrDataShape)
		}
	}

	labels := ds.Labels()
	pal, err := palette.New(s.paletteName, labels)
	if err != nil {
		return fmt.Errorf("build palette: %w", err)
	}
	if !pal.Contiguous() {
		s.logger.Warn(ctx, "cluster labels are not 0..n-1, colors follow label rank",
			logger.Any("labels", pal.Labels()),
		)
	}

	fields, err := s.resolveChangeFields(ds)
	if err != nil {
		return err
	}
	reducer, err := reduce.New(s.strategy,
		reduce.WithTopK(s.topK),
		reduce.WithHeadN(s.headN),
		reduce.WithFields(fields),
	)
	if err != nil {
		return fmt.Errorf("build reducer: %w", err)
	}

	s.ds = ds
	s.palette = pal
	s.reducer = reducer
	s.hulls = hull.NewBuilder(pal,
		hull.WithAlpha(s.hullAlpha),
		hull.WithDescriptions(ds.ClusterDescriptions),
		hull.WithLogger(s.logger.Named("hull")),
	)
	s.loadTime = loadTime
	s.loadedAt = time.Now()
	s.started = true

	metrics.UpdateDataset(len(ds.Individuals), ds.MeasurementCount(), pal.Size(),
		float64(loadTime.Milliseconds()))

	s.logger.Info(ctx, "dataset loaded",
		logger.Int("individuals", len(ds.Individuals)),
		logger.Int("measurements", ds.MeasurementCount()),
		logger.Int("clusters", pal.Size()),
		logger.Int("transitions", len(ds.Transitions)),
		logger.String("strategy", reducer.Name()),
		logger.String("palette", pal.Name()),
		logger.Duration("took", loadTime),
	)
	return nil
}

// resolveChangeFields maps configured names to value indexes; no names means
// every biometric field.
func (s *Service) resolveChangeFields(ds *model.Dataset) ([]int, error) {
	if len(s.changeFields) == 0 {
		all := make([]int, len(ds.FieldNames))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	out := make([]int, 0, len(s.changeFields))
	for _, name := range s.changeFields {
		i, ok := ds.FieldIndex(name)
		if !ok {
			return nil, fmt.Errorf("change field %q: %w", name, model.ErrDataShape)
		}
		out = append(out, i)
	}
	return out, nil
}

// Stop releases the loaded state.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.ds = nil
	s.palette = nil
	s.reducer = nil
	s.hulls = nil
	s.logger.Info(context.Background(), "service stopped")
}

func (s *Service) input() (geometry.Input, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return geometry.Input{}, ErrNotStarted
	}
	return geometry.Input{
		Dataset:    s.ds,
		Reducer:    s.reducer,
		Hulls:      s.hulls,
		Cap:        s.displayCap,
		MarkerSize: s.markerSize,
		TextFields: s.textFields,
	}, nil
}

// Data computes the full dashboard payload.
func (s *Service) Data(ctx context.Context) (*geometry.Result, error) {
	in, err := s.input()
	if err != nil {
		return nil, err
	}
	res, err := geometry.Compute(ctx, in)
	if err != nil {
		return nil, err
	}
	if res.Dropped > 0 {
		s.logger.Debug(ctx, "dropped non-finite positions", logger.Int("count", res.Dropped))
	}
	return res, nil
}

// Hulls computes only the cluster hulls.
func (s *Service) Hulls(ctx context.Context) ([]model.Hull, error) {
	in, err := s.input()
	if err != nil {
		return nil, err
	}
	hulls, _, err := geometry.Hulls(ctx, in)
	if err != nil {
		return nil, err
	}
	return hulls, nil
}

// WorkoutDescriptions returns workout descriptions in source order.
func (s *Service) WorkoutDescriptions(_ context.Context) ([]model.Description, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	out := make([]model.Description, len(s.ds.Workouts))
	copy(out, s.ds.Workouts)
	return out, nil
}

// Palette returns the palette built at start, nil before.
func (s *Service) Palette() *palette.Palette {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.palette
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"strategy":   s.strategy,
		"palette":    s.paletteName,
		"displayCap": s.displayCap,
	}

	if s.started {
		stats["individuals"] = len(s.ds.Individuals)
		stats["measurements"] = s.ds.MeasurementCount()
		stats["clusters"] = s.palette.Size()
		stats["transitions"] = len(s.ds.Transitions)
		stats["fields"] = len(s.ds.FieldNames)
		stats["loadTimeMs"] = s.loadTime.Milliseconds()
		stats["loadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
	}

	return stats
}
