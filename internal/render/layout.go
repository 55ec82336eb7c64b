package render

import "github.com/spboyer/lossgrid/internal/models"

// Layout places a number of items into rows of a fixed column count.
type Layout struct {
	Columns int
	Count   int
}

// NewLayout validates the column count and returns the layout for count items.
func NewLayout(count, columns int) (Layout, error) {
	if columns <= 0 {
		return Layout{}, models.NewInvalidInput("columns", "must be positive, got %d", columns)
	}
	if count < 0 {
		return Layout{}, models.NewInvalidInput("count", "must not be negative, got %d", count)
	}
	return Layout{Columns: columns, Count: count}, nil
}

// Rows returns ceil(Count / Columns).
func (l Layout) Rows() int {
	return (l.Count + l.Columns - 1) / l.Columns
}

// Cells returns the total number of grid cells, used or not.
func (l Layout) Cells() int {
	return l.Rows() * l.Columns
}

// Position returns the row and column of cell i.
func (l Layout) Position(i int) (row, col int) {
	return i / l.Columns, i % l.Columns
}
