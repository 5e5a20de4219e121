// Package score labels finished analyses for display. The presentation
// score is a heuristic, non-statistical figure: it starts from a hand-tuned
// per-variant base, rewards sample depth in fixed steps, adds bounded
// jitter, and clamps to [65, 85]. It is not a calibrated accuracy estimate
// and must never be consumed as one.
package score

import (
	"math/rand"

	"github.com/sortelab/lotogenius/internal/models"
)

const (
	scoreFloor   = 65.0
	scoreCeiling = 85.0
	jitterRange  = 2.0
)

// depth bonus steps keyed to the analyzed sample size.
var depthSteps = []struct {
	minDraws int
	bonus    float64
}{
	{200, 7},
	{100, 5},
	{50, 3},
	{20, 1},
}

// Scorer produces presentation scores with its own jitter source.
type Scorer struct {
	rng *rand.Rand
}

// New creates a scorer backed by the given random source.
func New(src rand.Source) *Scorer {
	return &Scorer{rng: rand.New(src)}
}

// PresentationScore returns the display-only percentage for an analysis of
// drawsAnalyzed historical draws of the given variant.
func (s *Scorer) PresentationScore(variant models.Variant, drawsAnalyzed int) float64 {
	score := variant.BaseScore
	for _, step := range depthSteps {
		if drawsAnalyzed >= step.minDraws {
			score += step.bonus
			break
		}
	}
	score += (s.rng.Float64()*2 - 1) * jitterRange

	if score < scoreFloor {
		return scoreFloor
	}
	if score > scoreCeiling {
		return scoreCeiling
	}
	return score
}

// ConfidenceTier maps sample depth onto the coarse low/medium/high label.
func ConfidenceTier(drawsAnalyzed int) string {
	switch {
	case drawsAnalyzed >= 200:
		return models.ConfidenceHigh
	case drawsAnalyzed >= 50:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
