// Package palette maps cluster labels to display colors.
//
// A Palette is built once from the set of labels observed at load time and
// is read-only afterwards. Labels are mapped by their rank among the observed
// labels, so label values never index a color table directly.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

// Names of the supported palettes.
const (
	NameTab20b   = "tab20b"
	NameTab10    = "tab10"
	NameRainbow  = "rainbow"
	NameHeat     = "heat"
	NameMoreland = "moreland"
)

// RGB is a color with channels normalized to [0, 1].
type RGB [3]float64

// Palette maps each observed cluster label to one color.
type Palette struct {
	name   string
	labels []int
	colors map[int]RGB
}

// New builds the named palette sized to the distinct labels given.
func New(name string, labels []int) (*Palette, error) {
	distinct := slices.Clone(labels)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	table, err := generate(name, len(distinct))
	if err != nil {
		return nil, err
	}

	p := &Palette{
		name:   name,
		labels: distinct,
		colors: make(map[int]RGB, len(distinct)),
	}
	for i, label := range distinct {
		p.colors[label] = table[i]
	}
	return p, nil
}

// Name returns the palette name.
func (p *Palette) Name() string { return p.name }

// Size returns the number of labels the palette covers.
func (p *Palette) Size() int { return len(p.labels) }

// Labels returns the covered labels in ascending order.
func (p *Palette) Labels() []int { return slices.Clone(p.labels) }

// Contiguous reports whether the covered labels are exactly 0..Size()-1,
// the layout upstream clustering is expected to produce.
func (p *Palette) Contiguous() bool {
	for i, label := range p.labels {
		if label != i {
			return false
		}
	}
	return true
}

// Color returns the color assigned to label.
func (p *Palette) Color(label int) (RGB, error) {
	c, ok := p.colors[label]
	if !ok {
		return RGB{}, fmt.Errorf("label %d: %w", label, ErrUnknownLabel)
	}
	return c, nil
}

// RGBA formats the color of label as a CSS rgba() string with the given alpha.
func (p *Palette) RGBA(label int, alpha float64) (string, error) {
	c, err := p.Color(label)
	if err != nil {
		return "", err
	}
	return "rgba(" +
		strconv.Itoa(channel(c[0])) + ", " +
		strconv.Itoa(channel(c[1])) + ", " +
		strconv.Itoa(channel(c[2])) + ", " +
		strconv.FormatFloat(alpha, 'g', -1, 64) + ")", nil
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func generate(name string, n int) ([]RGB, error) {
	if n == 0 {
		return nil, nil
	}
	switch name {
	case NameTab20b:
		return resample(tab20b, n), nil
	case NameTab10:
		return resample(tab10, n), nil
	case NameRainbow:
		return fromColors(palette.Rainbow(max(n, 2), palette.Blue, palette.Red, 1, 1, 1).Colors()[:n]), nil
	case NameHeat:
		return fromColors(palette.Heat(max(n, 2), 1).Colors()[:n]), nil
	case NameMoreland:
		return morelandColors(n)
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownPalette)
	}
}

// resample picks n evenly spaced entries from a listed colormap, the way
// matplotlib resamples a ListedColormap to a smaller lookup table.
func resample(listed []uint32, n int) []RGB {
	out := make([]RGB, n)
	size := len(listed)
	for i := range out {
		var x float64
		if n > 1 {
			x = float64(i) / float64(n-1)
		}
		idx := int(x * float64(size))
		if idx >= size {
			idx = size - 1
		}
		out[i] = hexRGB(listed[idx])
	}
	return out
}

func morelandColors(n int) ([]RGB, error) {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(0)
	cm.SetMax(1)
	out := make([]RGB, n)
	for i := range out {
		var v float64
		if n > 1 {
			v = float64(i) / float64(n-1)
		}
		c, err := cm.At(v)
		if err != nil {
			return nil, fmt.Errorf("moreland at %g: %w", v, err)
		}
		out[i] = toRGB(c)
	}
	return out, nil
}

func fromColors(cs []color.Color) []RGB {
	out := make([]RGB, len(cs))
	for i, c := range cs {
		out[i] = toRGB(c)
	}
	return out
}

func toRGB(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{float64(n.R) / 255, float64(n.G) / 255, float64(n.B) / 255}
}

func hexRGB(v uint32) RGB {
	return RGB{
		float64(v>>16&0xff) / 255,
		float64(v>>8&0xff) / 255,
		float64(v&0xff) / 255,
	}
}

var tab20b = []uint32{
	0x393b79, 0x5254a3, 0x6b6ecf, 0x9c9ede,
	0x637939, 0x8ca252, 0xb5cf6b, 0xcedb9c,
	0x8c6d31, 0xbd9e39, 0xe7ba52, 0xe7cb94,
	0x843c39, 0xad494a, 0xd6616b, 0xe7969c,
	0x7b4173, 0xa55194, 0xce6dbd, 0xde9ed6,
}

var tab10 = []uint32{
	0x1f77b4, 0xff7f0e, 0x2ca02c, 0xd62728, 0x9467bd,
	0x8c564b, 0xe377c2, 0x7f7f7f, 0xbcbd22, 0x17becf,
}
