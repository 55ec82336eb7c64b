// Package render draws ranked samples into a fixed-column grid with a dot
// overlay tinted by each sample's normalised loss.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"slices"

	"github.com/fogleman/gg"
	"github.com/spboyer/lossgrid/internal/colorscale"
	"github.com/spboyer/lossgrid/internal/models"
	"gorgonia.org/tensor"
)

// Default render settings.
const (
	DefaultColumns    = 8
	DefaultCellSize   = 96
	DefaultPadding    = 8
	DefaultDotSpacing = 10
	DefaultDotRadius  = 2.0
	DefaultDotAlpha   = 0.7
)

// Options configures a Renderer. DotSpacing and DotRadius are measured in
// source image pixels, CellSize and Padding in output pixels.
type Options struct {
	Columns    int
	// Slots is the number of samples the grid is sized for, usually the
	// requested sample count. Cells past the rendered samples stay blank.
	// Zero sizes the grid to the samples given.
	Slots      int
	CellSize   int
	Padding    int
	DotSpacing int
	DotRadius  float64
	DotAlpha   float64
	Scale      *colorscale.Scale
	Degenerate DegeneratePolicy
	Background color.Color
	Logger     *slog.Logger
}

// DefaultOptions returns the standard 8-column green/yellow/red settings.
func DefaultOptions() Options {
	return Options{
		Columns:    DefaultColumns,
		CellSize:   DefaultCellSize,
		Padding:    DefaultPadding,
		DotSpacing: DefaultDotSpacing,
		DotRadius:  DefaultDotRadius,
		DotAlpha:   DefaultDotAlpha,
		Scale:      colorscale.Default(),
		Degenerate: DegenerateError,
		Background: color.White,
	}
}

func (o Options) validate() error {
	switch {
	case o.Columns <= 0:
		return models.NewInvalidInput("columns", "must be positive, got %d", o.Columns)
	case o.CellSize <= 0:
		return models.NewInvalidInput("cell_size", "must be positive, got %d", o.CellSize)
	case o.Padding < 0:
		return models.NewInvalidInput("padding", "must not be negative, got %d", o.Padding)
	case o.DotSpacing <= 0:
		return models.NewInvalidInput("dot_spacing", "must be positive, got %d", o.DotSpacing)
	case o.DotRadius <= 0:
		return models.NewInvalidInput("dot_radius", "must be positive, got %g", o.DotRadius)
	case o.DotAlpha < 0 || o.DotAlpha > 1:
		return models.NewInvalidInput("dot_alpha", "must be within [0,1], got %g", o.DotAlpha)
	case o.Slots < 0:
		return models.NewInvalidInput("slots", "must not be negative, got %d", o.Slots)
	case o.Scale == nil:
		return models.NewInvalidInput("color_stops", "no color scale")
	}
	switch o.Degenerate {
	case DegenerateError, DegenerateGray:
	default:
		return models.NewInvalidInput("degenerate_images", "unknown policy %q", o.Degenerate)
	}
	return nil
}

// Renderer draws ranked grids. It holds no mutable state and may be shared.
type Renderer struct {
	opts Options
}

// New validates opts and returns a Renderer.
func New(opts Options) (*Renderer, error) {
	if opts.Background == nil {
		opts.Background = color.White
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Renderer{opts: opts}, nil
}

// Cell describes one grid position of a rendered figure.
type Cell struct {
	Row, Col int
	Bounds   image.Rectangle
	// Visible is false for trailing cells past the last sample.
	Visible bool
	Sample  int // index into Figure.Samples, -1 when hidden
	Color   color.NRGBA
}

// Figure is a composed grid image.
type Figure struct {
	Layout  Layout
	Cells   []Cell
	Samples []models.Sample // ranked, with scores
	dc      *gg.Context
}

// Image returns the composed figure.
func (f *Figure) Image() image.Image {
	return f.dc.Image()
}

// EncodePNG writes the figure to w as PNG.
func (f *Figure) EncodePNG(w io.Writer) error {
	return f.dc.EncodePNG(w)
}

// SavePNG writes the figure to a PNG file.
func (f *Figure) SavePNG(path string) error {
	if err := f.dc.SavePNG(path); err != nil {
		return fmt.Errorf("saving figure to %s: %w", path, err)
	}
	return nil
}

// Render ranks the set by loss and draws every sample into the grid.
// The same set and options always produce a pixel-identical figure.
func (r *Renderer) Render(set *models.SampleSet) (*Figure, error) {
	if set.Len() == 0 {
		return nil, models.NewInvalidInput("samples", "nothing to render")
	}
	c, h, w, err := commonShape(set.Samples)
	if err != nil {
		return nil, err
	}
	if c != 1 && c != 3 {
		return nil, models.NewInvalidInput("channels", "only 1 or 3 channel images can be drawn, got %d", c)
	}

	ranked := Rank(set.Samples)
	layout, err := NewLayout(max(len(ranked), r.opts.Slots), r.opts.Columns)
	if err != nil {
		return nil, err
	}

	scale := max(1, r.opts.CellSize/max(w, h))
	cellW, cellH := w*scale, h*scale
	pad := r.opts.Padding
	width := layout.Columns*cellW + (layout.Columns+1)*pad
	height := layout.Rows()*cellH + (layout.Rows()+1)*pad

	dc := gg.NewContext(width, height)
	dc.SetColor(r.opts.Background)
	dc.Clear()

	fig := &Figure{
		Layout:  layout,
		Cells:   make([]Cell, layout.Cells()),
		Samples: ranked,
		dc:      dc,
	}

	for i := range fig.Cells {
		row, col := layout.Position(i)
		x0, y0 := pad+col*(cellW+pad), pad+row*(cellH+pad)
		cell := Cell{
			Row:    row,
			Col:    col,
			Bounds: image.Rect(x0, y0, x0+cellW, y0+cellH),
			Sample: -1,
		}
		if i < len(ranked) {
			cell.Visible = true
			cell.Sample = i
			cell.Color = r.opts.Scale.NRGBA(ranked[i].Score, r.opts.DotAlpha)
			if err := r.drawCell(dc, cell, ranked[i], scale); err != nil {
				return nil, err
			}
		}
		fig.Cells[i] = cell
	}

	r.opts.Logger.Debug("rendered grid", "samples", len(ranked), "rows", layout.Rows(), "columns", layout.Columns, "width", width, "height", height)
	return fig, nil
}

func (r *Renderer) drawCell(dc *gg.Context, cell Cell, s models.Sample, scale int) error {
	img, err := displayImage(s, scale, r.opts.Degenerate)
	if err != nil {
		return err
	}
	x0, y0 := cell.Bounds.Min.X, cell.Bounds.Min.Y
	dc.DrawImage(img, x0, y0)

	shape := s.Input.Shape()
	h, w := shape[1], shape[2]
	k := float64(scale)

	dc.Push()
	dc.DrawRectangle(float64(x0), float64(y0), float64(cell.Bounds.Dx()), float64(cell.Bounds.Dy()))
	dc.Clip()
	dc.SetColor(cell.Color)
	for y := 0; y < h; y += r.opts.DotSpacing {
		for x := 0; x < w; x += r.opts.DotSpacing {
			dc.DrawCircle(float64(x0)+(float64(x)+0.5)*k, float64(y0)+(float64(y)+0.5)*k, r.opts.DotRadius*k)
			dc.Fill()
		}
	}
	dc.Pop()
	dc.ResetClip()
	return nil
}

func commonShape(samples []models.Sample) (c, h, w int, err error) {
	for i, s := range samples {
		if s.Input == nil {
			return 0, 0, 0, models.NewInvalidInput("samples", "sample %q has no input", s.ID)
		}
		shape := s.Input.Shape()
		if dt := s.Input.Dtype(); dt != tensor.Float64 {
			return 0, 0, 0, models.NewInvalidInput("samples", "sample %q input must be float64, got %v", s.ID, dt)
		}
		if math.IsNaN(s.Loss) || math.IsInf(s.Loss, 0) || s.Loss < 0 {
			return 0, 0, 0, models.NewInvalidInput("samples", "sample %q has loss %g, want a finite non-negative value", s.ID, s.Loss)
		}
		if shape.Dims() != 3 {
			return 0, 0, 0, models.NewInvalidInput("samples", "sample %q must be shaped (channels, height, width), got %v", s.ID, shape)
		}
		if i == 0 {
			c, h, w = shape[0], shape[1], shape[2]
			continue
		}
		if !slices.Equal([]int(shape), []int{c, h, w}) {
			return 0, 0, 0, models.NewInvalidInput("samples", "sample %q has shape %v, expected (%d, %d, %d)", s.ID, shape, c, h, w)
		}
	}
	return c, h, w, nil
}
