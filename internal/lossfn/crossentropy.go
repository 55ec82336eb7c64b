// Package lossfn computes per-item classification losses.
package lossfn

import (
	"fmt"
	"math"

	"github.com/spboyer/lossgrid/internal/models"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// Func maps one item's class scores and its true label to a non-negative loss.
type Func func(scores []float64, label int) (float64, error)

// CrossEntropy is the softmax cross-entropy of raw class scores (logits)
// against an integer label: logsumexp(scores) - scores[label].
func CrossEntropy(scores []float64, label int) (float64, error) {
	if len(scores) == 0 {
		return 0, models.NewInvalidInput("scores", "empty score vector")
	}
	if label < 0 || label >= len(scores) {
		return 0, models.NewInvalidInput("label", "%d out of range for %d classes", label, len(scores))
	}
	for k, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, models.NewInvalidInput("scores", "class %d has non-finite score %g", k, v)
		}
	}
	loss := floats.LogSumExp(scores) - scores[label]
	if math.IsInf(loss, 0) || math.IsNaN(loss) {
		return 0, models.NewInvalidInput("scores", "loss overflows for label %d", label)
	}
	if loss < 0 {
		// rounding only; logsumexp is never below the max score
		loss = 0
	}
	return loss, nil
}

// PerItem applies fn to each row of a (batch, classes) score matrix without
// reducing across the batch.
func PerItem(scores *tensor.Dense, labels []int, fn Func) ([]float64, error) {
	if scores == nil {
		return nil, fmt.Errorf("no scores")
	}
	if dt := scores.Dtype(); dt != tensor.Float64 {
		return nil, models.NewInvalidInput("scores", "must be float64, got %v", dt)
	}
	shape := scores.Shape()
	if shape.Dims() != 2 {
		return nil, fmt.Errorf("scores must be 2-dimensional (batch, classes), got shape %v", shape)
	}
	rows, classes := shape[0], shape[1]
	if rows != len(labels) {
		return nil, fmt.Errorf("scores have %d rows but batch has %d labels", rows, len(labels))
	}

	data := scores.Float64s()
	losses := make([]float64, rows)
	for i := range rows {
		loss, err := fn(data[i*classes:(i+1)*classes], labels[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		if math.IsNaN(loss) || math.IsInf(loss, 0) || loss < 0 {
			return nil, models.NewInvalidInput("loss", "item %d: got %g, want a finite non-negative value", i, loss)
		}
		losses[i] = loss
	}
	return losses, nil
}
