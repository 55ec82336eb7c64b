// Package collector pulls labeled batches from a data source, scores them
// with a predictor and accumulates (input, loss) samples.
package collector

//go:generate go tool mockgen -source collector.go -destination mock_predictor_test.go -package collector

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/spboyer/lossgrid/internal/lossfn"
	"github.com/spboyer/lossgrid/internal/models"
	"gorgonia.org/tensor"
)

// Source is a finite or infinite sequence of mini-batches. Iteration stops
// at the first non-nil error.
type Source = iter.Seq2[*models.Batch, error]

// Predictor maps a batch of inputs to a (batch, classes) matrix of scores.
type Predictor interface {
	Predict(ctx context.Context, batch *models.Batch) (*tensor.Dense, error)
}

// TrainablePredictor is a Predictor backed by a model with a training mode.
// The collector runs such predictors in inference mode and restores the
// previous mode when it is done.
type TrainablePredictor interface {
	Predictor
	Training() bool
	SetTraining(training bool)
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for progress and diagnostic lines.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLoss replaces the default cross-entropy loss.
func WithLoss(fn lossfn.Func) Option {
	return func(c *Collector) {
		if fn != nil {
			c.loss = fn
		}
	}
}

// WithProgress registers a callback invoked after each collected sample
// with the running count.
func WithProgress(fn func(collected int)) Option {
	return func(c *Collector) {
		c.progress = fn
	}
}

// Collector turns batches into samples. It holds no state between calls.
type Collector struct {
	predictor Predictor
	loss      lossfn.Func
	logger    *slog.Logger
	progress  func(int)
}

// New creates a Collector for the given predictor.
func New(predictor Predictor, opts ...Option) *Collector {
	c := &Collector{
		predictor: predictor,
		loss:      lossfn.CrossEntropy,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect pulls samples from source until n have been gathered or the
// source is exhausted. Collection stops immediately at n, even partway
// through a batch; later batches are never pulled.
func (c *Collector) Collect(ctx context.Context, source Source, n int) (*models.SampleSet, error) {
	if n <= 0 {
		return nil, models.NewInvalidInput("n", "sample count must be positive, got %d", n)
	}

	set := &models.SampleSet{Samples: make([]models.Sample, 0, n)}
	batches := 0
	for sample, err := range c.stream(ctx, source, &batches) {
		if err != nil {
			return nil, err
		}
		set.Samples = append(set.Samples, sample)
		if c.progress != nil {
			c.progress(len(set.Samples))
		}
		if len(set.Samples) >= n {
			break
		}
	}

	if set.Len() == 0 {
		return nil, &models.EmptySourceError{Batches: batches}
	}
	if set.Len() < n {
		c.logger.Warn("data source exhausted before sample count reached", "requested", n, "collected", set.Len())
	}
	c.logger.Info("collected samples", "count", set.Len(), "batches", batches)
	return set, nil
}

// Stream yields samples lazily in source order. Each batch is predicted and
// scored once, then its items are yielded one by one. The caller may stop
// ranging at any point.
func (c *Collector) Stream(ctx context.Context, source Source) iter.Seq2[models.Sample, error] {
	var batches int
	return c.stream(ctx, source, &batches)
}

func (c *Collector) stream(ctx context.Context, source Source, batches *int) iter.Seq2[models.Sample, error] {
	return func(yield func(models.Sample, error) bool) {
		*batches = 0
		if c.predictor == nil {
			yield(models.Sample{}, fmt.Errorf("collector has no predictor"))
			return
		}
		if source == nil {
			yield(models.Sample{}, fmt.Errorf("collector has no data source"))
			return
		}

		if tp, ok := c.predictor.(TrainablePredictor); ok {
			wasTraining := tp.Training()
			tp.SetTraining(false)
			defer tp.SetTraining(wasTraining)
		}

		for batch, err := range source {
			if err != nil {
				yield(models.Sample{}, fmt.Errorf("reading batch %d: %w", *batches+1, err))
				return
			}
			*batches++
			if err := ctx.Err(); err != nil {
				yield(models.Sample{}, err)
				return
			}

			losses, err := c.scoreBatch(ctx, batch)
			if err != nil {
				yield(models.Sample{}, fmt.Errorf("batch %d: %w", *batches, err))
				return
			}
			c.logger.Debug("scored batch", "batch", *batches, "items", len(losses))

			for i, loss := range losses {
				input, err := batch.Item(i)
				if err != nil {
					yield(models.Sample{}, fmt.Errorf("batch %d: %w", *batches, err))
					return
				}
				s := models.Sample{
					ID:    batch.IDs[i],
					Label: batch.Labels[i],
					Input: input,
					Loss:  loss,
				}
				if !yield(s, nil) {
					return
				}
			}
		}
	}
}

// scoreBatch runs one inference pass and one loss computation for a batch.
func (c *Collector) scoreBatch(ctx context.Context, batch *models.Batch) ([]float64, error) {
	if batch.Len() == 0 {
		return nil, nil
	}
	if len(batch.IDs) != batch.Len() {
		return nil, fmt.Errorf("batch has %d ids for %d labels", len(batch.IDs), batch.Len())
	}
	if _, _, _, err := batch.ItemShape(); err != nil {
		return nil, err
	}

	scores, err := c.predictor.Predict(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("predicting: %w", err)
	}
	losses, err := lossfn.PerItem(scores, batch.Labels, c.loss)
	if err != nil {
		return nil, fmt.Errorf("computing losses: %w", err)
	}
	return losses, nil
}
