package render

import (
	"image"
	"image/color"
	"math"

	"github.com/spboyer/lossgrid/internal/models"
	"gonum.org/v1/gonum/floats"
)

// DegeneratePolicy decides what happens to an image whose pixels are all equal.
type DegeneratePolicy string

const (
	// DegenerateError fails the render with a DegenerateImageError.
	DegenerateError DegeneratePolicy = "error"
	// DegenerateGray draws the image as flat mid-gray.
	DegenerateGray DegeneratePolicy = "gray"
)

const midGray = 0.5

// displayImage min-max rescales a (channels, height, width) sample to [0,1]
// over the whole image and upscales it by an integer factor with
// nearest-neighbour sampling.
func displayImage(s models.Sample, scale int, policy DegeneratePolicy) (*image.NRGBA, error) {
	shape := s.Input.Shape()
	c, h, w := shape[0], shape[1], shape[2]
	data := s.Input.Float64s()

	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, models.NewInvalidInput("samples", "sample %q has non-finite pixel value %g", s.ID, v)
		}
	}
	lo, hi := floats.Min(data), floats.Max(data)
	flat := !(hi > lo)
	if flat && policy != DegenerateGray {
		return nil, &models.DegenerateImageError{SampleID: s.ID, Value: lo}
	}

	intensity := func(ch, y, x int) uint8 {
		v := midGray
		if !flat {
			v = (data[ch*h*w+y*w+x] - lo) / (hi - lo)
		}
		return uint8(math.Round(v * 255))
	}

	img := image.NewNRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := range h {
		for x := range w {
			var px color.NRGBA
			if c == 1 {
				g := intensity(0, y, x)
				px = color.NRGBA{R: g, G: g, B: g, A: 255}
			} else {
				px = color.NRGBA{R: intensity(0, y, x), G: intensity(1, y, x), B: intensity(2, y, x), A: 255}
			}
			for dy := range scale {
				for dx := range scale {
					img.SetNRGBA(x*scale+dx, y*scale+dy, px)
				}
			}
		}
	}
	return img, nil
}
