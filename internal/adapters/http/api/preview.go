package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/okian/biofitviz/internal/domain/geometry"
	"github.com/okian/biofitviz/internal/domain/model"
	"github.com/okian/biofitviz/internal/domain/palette"
)

// PreviewHandler renders the dashboard geometry as a standalone HTML chart.
type PreviewHandler struct {
	deps Dependencies
}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler(deps Dependencies) *PreviewHandler {
	return &PreviewHandler{deps: deps}
}

// HandlePreview handles GET /api/preview requests.
func (h *PreviewHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	res, err := h.deps.Data(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := renderPreview(&buf, res, h.deps.Palette()); err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// renderPreview draws one scatter series per cluster and each hull as a
// closed outline on top.
func renderPreview(buf *bytes.Buffer, res *geometry.Result, p *palette.Palette) error {
	points, order := clusterPoints(res.Data)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Cluster states", Width: "1000px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Cluster states",
			Subtitle: fmt.Sprintf("individuals=%d hulls=%d", len(res.Data), len(res.Hulls)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: model.ColPCA1, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: model.ColPCA2, NameLocation: "middle", NameGap: 30}),
	)

	for _, label := range order {
		seriesOpts := []charts.SeriesOpts{charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8})}
		if color, err := seriesColor(p, label, 1); err == nil {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: color}))
		}
		scatter.AddSeries(clusterName(label), points[label], seriesOpts...)
	}

	if len(res.Hulls) > 0 {
		outline := charts.NewLine()
		for _, hl := range res.Hulls {
			data := make([]opts.LineData, 0, len(hl.Points)+1)
			for _, pt := range hl.Points {
				data = append(data, opts.LineData{Value: []interface{}{pt[0], pt[1]}})
			}
			data = append(data, opts.LineData{Value: []interface{}{hl.Points[0][0], hl.Points[0][1]}})
			outline.AddSeries(clusterName(hl.Cluster)+" hull", data,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: hl.Color}),
			)
		}
		scatter.Overlap(outline)
	}

	if err := scatter.Render(buf); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

// clusterPoints groups trace points by cluster label, labels in order of
// first appearance.
func clusterPoints(traces []geometry.Trace) (map[int][]opts.ScatterData, []int) {
	points := make(map[int][]opts.ScatterData)
	var order []int
	for _, tr := range traces {
		for i := range tr.X {
			label := tr.Marker.Color[i]
			if _, ok := points[label]; !ok {
				order = append(order, label)
			}
			points[label] = append(points[label], opts.ScatterData{
				Name:  tr.StateID[i],
				Value: []interface{}{tr.X[i], tr.Y[i]},
			})
		}
	}
	return points, order
}

func seriesColor(p *palette.Palette, label int, alpha float64) (string, error) {
	if p == nil {
		return "", palette.ErrUnknownLabel
	}
	return p.RGBA(label, alpha)
}

func clusterName(label int) string {
	return "cluster " + strconv.Itoa(label)
}
