package models

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Sample is one collected input together with its prediction loss.
type Sample struct {
	ID    string        `json:"id"`
	Label int           `json:"label"`
	Input *tensor.Dense `json:"-"` // shaped (channels, height, width)
	Loss  float64       `json:"loss"`
	// Score is the loss rescaled to [0,1] within a ranked set. Zero until ranked.
	Score float64 `json:"score"`
}

// SampleSet holds collected samples in data-source iteration order.
type SampleSet struct {
	Samples []Sample `json:"samples"`
}

// Len returns the number of samples in the set.
func (s *SampleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Samples)
}

// Losses returns the loss of every sample, in set order.
func (s *SampleSet) Losses() []float64 {
	losses := make([]float64, 0, s.Len())
	if s == nil {
		return losses
	}
	for _, sm := range s.Samples {
		losses = append(losses, sm.Loss)
	}
	return losses
}

// Batch is a mini-batch pulled from a data source.
type Batch struct {
	IDs    []string
	Inputs *tensor.Dense // shaped (batch, channels, height, width)
	Labels []int
}

// Len returns the number of items in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Labels)
}

// ItemShape returns the (channels, height, width) shape of a single item.
func (b *Batch) ItemShape() (c, h, w int, err error) {
	if b == nil || b.Inputs == nil {
		return 0, 0, 0, fmt.Errorf("batch has no inputs")
	}
	if dt := b.Inputs.Dtype(); dt != tensor.Float64 {
		return 0, 0, 0, NewInvalidInput("inputs", "batch inputs must be float64, got %v", dt)
	}
	shape := b.Inputs.Shape()
	if shape.Dims() != 4 {
		return 0, 0, 0, fmt.Errorf("batch inputs must be 4-dimensional (batch, channels, height, width), got shape %v", shape)
	}
	return shape[1], shape[2], shape[3], nil
}

// Item returns a copy of the i-th input, shaped (channels, height, width).
// The copy shares no memory with the batch.
func (b *Batch) Item(i int) (*tensor.Dense, error) {
	c, h, w, err := b.ItemShape()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= b.Inputs.Shape()[0] {
		return nil, fmt.Errorf("item %d out of range for batch of %d", i, b.Inputs.Shape()[0])
	}
	size := c * h * w
	data := b.Inputs.Float64s()
	backing := make([]float64, size)
	copy(backing, data[i*size:(i+1)*size])
	return tensor.New(tensor.WithShape(c, h, w), tensor.WithBacking(backing)), nil
}
