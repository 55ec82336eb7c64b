package render

import (
	"cmp"
	"slices"

	"github.com/spboyer/lossgrid/internal/models"
)

// Rank returns a copy of samples stably sorted by ascending loss, with Score
// set to the loss normalised to [0,1] across the set. Samples with equal loss
// keep their collection order. The input slice is not modified.
func Rank(samples []models.Sample) []models.Sample {
	ranked := slices.Clone(samples)
	slices.SortStableFunc(ranked, func(a, b models.Sample) int {
		return cmp.Compare(a.Loss, b.Loss)
	})
	Normalize(ranked)
	return ranked
}

// Normalize sets each sample's Score to (loss-min)/(max-min). When every
// loss is equal all scores are 0. Losses must be finite; Renderer.Render
// rejects sets that contain any other.
func Normalize(samples []models.Sample) {
	if len(samples) == 0 {
		return
	}
	lo, hi := samples[0].Loss, samples[0].Loss
	for _, s := range samples[1:] {
		lo = min(lo, s.Loss)
		hi = max(hi, s.Loss)
	}
	for i := range samples {
		if hi > lo {
			samples[i].Score = (samples[i].Loss - lo) / (hi - lo)
		} else {
			samples[i].Score = 0
		}
	}
}
