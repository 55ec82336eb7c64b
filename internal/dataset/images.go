package dataset

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/spboyer/lossgrid/internal/models"
	"gorgonia.org/tensor"
)

// Column names and prefixes of an image CSV.
const (
	ColumnID    = "id"
	ColumnLabel = "label"
	PixelPrefix = "p"
	ScorePrefix = "s"
)

// Shape is the (channels, height, width) shape of every image in a set.
type Shape struct {
	Channels int
	Height   int
	Width    int
}

// Size returns the number of values in one image.
func (s Shape) Size() int {
	return s.Channels * s.Height * s.Width
}

func (s Shape) String() string {
	return fmt.Sprintf("%d,%d,%d", s.Channels, s.Height, s.Width)
}

// Validate reports whether every dimension is positive.
func (s Shape) Validate() error {
	if s.Channels <= 0 || s.Height <= 0 || s.Width <= 0 {
		return models.NewInvalidInput("shape", "dimensions must be positive, got (%s)", s)
	}
	return nil
}

// ParseShape parses "C,H,W".
func ParseShape(v string) (Shape, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return Shape{}, models.NewInvalidInput("shape", "expected channels,height,width, got %q", v)
	}
	dims := make([]int, 3)
	for i, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Shape{}, models.NewInvalidInput("shape", "%q is not an integer", p)
		}
		dims[i] = d
	}
	s := Shape{Channels: dims[0], Height: dims[1], Width: dims[2]}
	return s, s.Validate()
}

// Item is one labeled image.
type Item struct {
	ID     string
	Label  int
	Pixels []float64 // channel-major (C, H, W)
	Scores []float64 // precomputed class scores, may be empty
}

// ImageSet is an in-memory labeled image dataset.
type ImageSet struct {
	Shape Shape
	Items []Item
}

// Load reads an image CSV. When end > 0 only data rows [start, end]
// (1-based, inclusive) are loaded.
func Load(path string, shape Shape, start, end int) (*ImageSet, error) {
	var (
		rows []Row
		err  error
	)
	if end > 0 {
		rows, err = LoadCSVRange(path, max(start, 1), end)
	} else {
		rows, err = LoadCSV(path)
		start = 1
	}
	if err != nil {
		return nil, err
	}
	return newImageSet(rows, shape, max(start, 1))
}

// NewImageSet builds an ImageSet from CSV rows. Each row needs a label
// column and one p<i> column per pixel; id and s<k> score columns are
// optional.
func NewImageSet(rows []Row, shape Shape) (*ImageSet, error) {
	return newImageSet(rows, shape, 1)
}

func newImageSet(rows []Row, shape Shape, firstRow int) (*ImageSet, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	set := &ImageSet{Shape: shape, Items: make([]Item, 0, len(rows))}
	for i, row := range rows {
		item, err := parseItem(row, shape, firstRow+i)
		if err != nil {
			return nil, err
		}
		set.Items = append(set.Items, item)
	}
	return set, nil
}

func parseItem(row Row, shape Shape, rowNum int) (Item, error) {
	item := Item{ID: row[ColumnID]}
	if item.ID == "" {
		item.ID = strconv.Itoa(rowNum)
	}

	rawLabel, ok := row[ColumnLabel]
	if !ok {
		return Item{}, fmt.Errorf("row %d: missing %q column", rowNum, ColumnLabel)
	}
	label, err := strconv.Atoi(rawLabel)
	if err != nil {
		return Item{}, fmt.Errorf("row %d: label %q is not an integer", rowNum, rawLabel)
	}
	item.Label = label

	pixels, err := numberedColumns(row, PixelPrefix, rowNum)
	if err != nil {
		return Item{}, err
	}
	if len(pixels) != shape.Size() {
		return Item{}, fmt.Errorf("row %d: has %d pixel columns, shape (%s) needs %d", rowNum, len(pixels), shape, shape.Size())
	}
	item.Pixels = pixels

	item.Scores, err = numberedColumns(row, ScorePrefix, rowNum)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

// numberedColumns reads prefix0, prefix1, ... until the first missing index.
func numberedColumns(row Row, prefix string, rowNum int) ([]float64, error) {
	var values []float64
	for i := 0; ; i++ {
		raw, ok := row[prefix+strconv.Itoa(i)]
		if !ok {
			break
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: column %s%d: %q is not a number", rowNum, prefix, i, raw)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, models.NewInvalidInput("dataset", "row %d: column %s%d: %q is not finite", rowNum, prefix, i, raw)
		}
		values = append(values, v)
	}
	return values, nil
}

// Len returns the number of items.
func (s *ImageSet) Len() int {
	return len(s.Items)
}

// ScoreTable maps item IDs to their precomputed class scores. Items
// without scores are left out.
func (s *ImageSet) ScoreTable() map[string][]float64 {
	table := make(map[string][]float64, len(s.Items))
	for _, it := range s.Items {
		if len(it.Scores) > 0 {
			table[it.ID] = it.Scores
		}
	}
	return table
}

// Batches yields the set in order as mini-batches of up to size items. The
// sequence is lazy: a batch is only assembled when it is pulled.
func (s *ImageSet) Batches(size int) iter.Seq2[*models.Batch, error] {
	return func(yield func(*models.Batch, error) bool) {
		if size <= 0 {
			yield(nil, models.NewInvalidInput("batch_size", "must be positive, got %d", size))
			return
		}
		for start := 0; start < len(s.Items); start += size {
			if !yield(s.batch(s.Items[start:min(start+size, len(s.Items))]), nil) {
				return
			}
		}
	}
}

func (s *ImageSet) batch(items []Item) *models.Batch {
	n := s.Shape.Size()
	b := &models.Batch{
		IDs:    make([]string, len(items)),
		Labels: make([]int, len(items)),
	}
	backing := make([]float64, 0, len(items)*n)
	for i, it := range items {
		b.IDs[i] = it.ID
		b.Labels[i] = it.Label
		backing = append(backing, it.Pixels...)
	}
	b.Inputs = tensor.New(
		tensor.WithShape(len(items), s.Shape.Channels, s.Shape.Height, s.Shape.Width),
		tensor.WithBacking(backing),
	)
	return b
}
