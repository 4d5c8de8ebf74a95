// Package render draws histogram sinks as PNG images.
package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hepframe/hepframe/internal/core/aggregation"
)

// Options controls the image size in centimetres.
type Options struct {
	Width  float64
	Height float64
}

// DefaultOptions matches the configured render defaults.
var DefaultOptions = Options{Width: 16, Height: 12}

var fill = color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff}

// Histogram writes h to path as an image. The format follows the extension
// (.png, .svg, .pdf, ...). Under- and overflow are not drawn.
func Histogram(path, title, xlabel string, h *aggregation.Hist1D, opts Options) error {
	if h == nil {
		return fmt.Errorf("render %s: nil histogram", path)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultOptions
	}

	counts := h.Counts()
	bins := make([]plotter.HistogramBin, len(counts))
	for i, c := range counts {
		lo, hi := h.BinEdges(i)
		bins[i] = plotter.HistogramBin{Min: lo, Max: hi, Weight: float64(c)}
	}
	low, high := h.Range()

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Events"
	p.X.Min, p.X.Max = low, high

	hp := &plotter.Histogram{
		Bins:      bins,
		Width:     (high - low) / float64(h.Bins()),
		FillColor: fill,
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(hp)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	w := vg.Length(opts.Width) * vg.Centimeter
	ht := vg.Length(opts.Height) * vg.Centimeter
	if err := p.Save(w, ht, path); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

// FileName is the image name of sink i of query id.
func FileName(query, sink int) string {
	if sink == 0 {
		return fmt.Sprintf("query%d.png", query)
	}
	return fmt.Sprintf("query%d_%d.png", query, sink)
}
