package hull

import (
	"context"
	"errors"

	"github.com/okian/biofitviz/internal/domain/model"
	"github.com/okian/biofitviz/internal/domain/palette"
	"github.com/okian/biofitviz/pkg/logger"
	"github.com/okian/biofitviz/pkg/metrics"
	"gonum.org/v1/gonum/spatial/r2"
)

// Default builder configuration constants.
const (
	defaultAlpha = 0.5
)

// Skip reasons reported for clusters that get no hull.
const (
	ReasonTooFewPoints = "too_few_points"
	ReasonDegenerate   = "degenerate"
	ReasonUnknownLabel = "unknown_label"
)

// Group is the point set of one cluster.
type Group struct {
	Cluster int
	Points  []r2.Vec
}

// Skip records why a cluster produced no hull.
type Skip struct {
	Cluster int
	Reason  string
	Err     error
}

// Builder turns cluster point sets into colored hulls.
type Builder struct {
	palette      *palette.Palette
	descriptions map[int]string
	alpha        float64
	logger       logger.Logger
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithAlpha sets the opacity used in hull colors.
func WithAlpha(alpha float64) Option {
	return func(b *Builder) {
		if alpha >= 0 && alpha <= 1 {
			b.alpha = alpha
		}
	}
}

// WithDescriptions sets the cluster description lookup.
func WithDescriptions(descriptions map[int]string) Option {
	return func(b *Builder) {
		b.descriptions = descriptions
	}
}

// WithLogger sets the logger used to report skipped clusters.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder coloring hulls from p.
func NewBuilder(p *palette.Palette, opts ...Option) *Builder {
	b := &Builder{
		palette: p,
		alpha:   defaultAlpha,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build computes one hull per group, in group order. A cluster that cannot
// produce a hull is reported in the skip list and never affects the others.
func (b *Builder) Build(ctx context.Context, groups []Group) ([]model.Hull, []Skip) {
	hulls := make([]model.Hull, 0, len(groups))
	var skips []Skip

	for _, g := range groups {
		h, err := b.build(g)
		if err == nil {
			hulls = append(hulls, h)
			metrics.RecordHullEmitted()
			continue
		}

		skip := Skip{Cluster: g.Cluster, Reason: reason(err), Err: err}
		skips = append(skips, skip)
		metrics.RecordHullSkipped(skip.Reason)
		if b.logger == nil {
			continue
		}
		if skip.Reason == ReasonTooFewPoints {
			b.logger.Debug(ctx, "cluster skipped", logger.Int("cluster", g.Cluster), logger.Int("points", len(g.Points)))
		} else {
			b.logger.Warn(ctx, "cluster hull failed", logger.Int("cluster", g.Cluster), logger.String("reason", skip.Reason), logger.Error(err))
		}
	}
	return hulls, skips
}

func (b *Builder) build(g Group) (model.Hull, error) {
	vertices, err := Convex(g.Points)
	if err != nil {
		return model.Hull{}, err
	}
	color, err := b.palette.RGBA(g.Cluster, b.alpha)
	if err != nil {
		return model.Hull{}, err
	}

	points := make([][2]float64, len(vertices))
	for i, v := range vertices {
		points[i] = [2]float64{v.X, v.Y}
	}
	return model.Hull{
		Cluster:     g.Cluster,
		Points:      points,
		Color:       color,
		Description: b.descriptions[g.Cluster],
	}, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrTooFewPoints):
		return ReasonTooFewPoints
	case errors.Is(err, palette.ErrUnknownLabel):
		return ReasonUnknownLabel
	default:
		return ReasonDegenerate
	}
}
