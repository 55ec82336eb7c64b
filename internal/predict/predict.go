package predict

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spboyer/lossgrid/internal/models"
	"gorgonia.org/tensor"
)

// Kind names a predictor implementation.
type Kind string

const (
	KindProgram Kind = "program"
	KindTable   Kind = "table"
)

// Predictor is the common shape of every predictor in this package.
type Predictor interface {
	Predict(ctx context.Context, batch *models.Batch) (*tensor.Dense, error)
}

// New builds a predictor of the given kind. params are decoded into the
// kind's argument struct; scores backs the table predictor.
func New(kind Kind, params map[string]any, scores map[string][]float64) (Predictor, error) {
	switch kind {
	case KindProgram:
		var args ProgramArgs
		if err := mapstructure.Decode(params, &args); err != nil {
			return nil, fmt.Errorf("decoding program predictor params: %w", err)
		}
		return NewProgram(args)
	case KindTable:
		return NewTable(scores)
	default:
		return nil, models.NewInvalidInput("predictor", "unknown kind %q (want %q or %q)", kind, KindProgram, KindTable)
	}
}
