// Package colorscale maps a value in [0,1] to a color along fixed control
// points.
package colorscale

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Default control point colors.
const (
	Green  = "#008000"
	Yellow = "#ffff00"
	Red    = "#ff0000"
)

// Stop is a control point of a Scale. Stops are plain values: a Scale keeps
// its own copies, so changing a Stop after New or after Stops never
// affects the Scale.
type Stop struct {
	At    float64
	Color colorful.Color
}

// Scale is a continuous piecewise-linear color scale. A Scale is never
// mutated after construction and is safe to share.
type Scale struct {
	stops []Stop
}

// New validates the stops and builds a Scale. Stops must start at 0, end at
// 1 and be strictly increasing.
func New(stops ...Stop) (*Scale, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("color scale needs at least 2 stops, got %d", len(stops))
	}
	if stops[0].At != 0 {
		return nil, fmt.Errorf("first color stop must be at 0, got %g", stops[0].At)
	}
	if stops[len(stops)-1].At != 1 {
		return nil, fmt.Errorf("last color stop must be at 1, got %g", stops[len(stops)-1].At)
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].At <= stops[i-1].At {
			return nil, fmt.Errorf("color stops must be strictly increasing: %g follows %g", stops[i].At, stops[i-1].At)
		}
	}
	for i, s := range stops {
		if !s.Color.IsValid() {
			return nil, fmt.Errorf("color stop %d is outside the RGB gamut", i)
		}
	}
	return &Scale{stops: append([]Stop(nil), stops...)}, nil
}

// Default returns the green, yellow, red scale.
func Default() *Scale {
	s, err := ParseStops([]float64{0, 0.5, 1}, []string{Green, Yellow, Red})
	if err != nil {
		panic(fmt.Sprintf("default color scale: %v", err))
	}
	return s
}

// ParseStops builds a Scale from parallel slices of positions and hex colors.
func ParseStops(positions []float64, hexColors []string) (*Scale, error) {
	if len(positions) != len(hexColors) {
		return nil, fmt.Errorf("got %d stop positions but %d colors", len(positions), len(hexColors))
	}
	stops := make([]Stop, len(positions))
	for i, h := range hexColors {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("color stop %d: %w", i, err)
		}
		stops[i] = Stop{At: positions[i], Color: c}
	}
	return New(stops...)
}

// Stops returns the control points by value. Edits to the result are not
// seen by s.
func (s *Scale) Stops() []Stop {
	return append([]Stop(nil), s.stops...)
}

// At returns the color for t. Values outside [0,1] are clamped, NaN maps to 0.
func (s *Scale) At(t float64) colorful.Color {
	if math.IsNaN(t) || t <= 0 {
		return s.stops[0].Color
	}
	if t >= 1 {
		return s.stops[len(s.stops)-1].Color
	}
	for i := 1; i < len(s.stops); i++ {
		hi := s.stops[i]
		if t > hi.At {
			continue
		}
		lo := s.stops[i-1]
		frac := (t - lo.At) / (hi.At - lo.At)
		return lo.Color.BlendRgb(hi.Color, frac).Clamped()
	}
	return s.stops[len(s.stops)-1].Color
}

// NRGBA returns the color for t with the given alpha in [0,1].
func (s *Scale) NRGBA(t, alpha float64) color.NRGBA {
	r, g, b := s.At(t).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(alpha) * 255))}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
