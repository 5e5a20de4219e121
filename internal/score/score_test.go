package score

import (
	"math/rand"
	"testing"

	"github.com/sortelab/lotogenius/internal/models"
)

// The presentation score is a heuristic display value; these tests assert
// only its contractual envelope (bounds, monotonic step bonus, tiers),
// never any predictive quality.

func TestPresentationScore_Bounds(t *testing.T) {
	s := New(rand.NewSource(1))
	for _, v := range models.Variants() {
		for _, draws := range []int{0, 10, 20, 50, 100, 200, 1000} {
			got := s.PresentationScore(v, draws)
			if got < 65 || got > 85 {
				t.Errorf("%s with %d draws: score %.2f outside [65, 85]", v.Slug, draws, got)
			}
		}
	}
}

func TestPresentationScore_DepthBonus(t *testing.T) {
	// Compare averages over many samples so jitter cancels out; the
	// ≥200 step is 6 points above the <20 step for every variant base.
	s := New(rand.NewSource(7))
	const rounds = 500

	var shallow, deep float64
	for i := 0; i < rounds; i++ {
		shallow += s.PresentationScore(models.MegaSena, 10)
		deep += s.PresentationScore(models.MegaSena, 250)
	}
	shallow /= rounds
	deep /= rounds

	if deep <= shallow {
		t.Errorf("deep-sample score %.2f should exceed shallow-sample score %.2f", deep, shallow)
	}
}

func TestConfidenceTier(t *testing.T) {
	tests := []struct {
		draws int
		want  string
	}{
		{0, models.ConfidenceLow},
		{49, models.ConfidenceLow},
		{50, models.ConfidenceMedium},
		{199, models.ConfidenceMedium},
		{200, models.ConfidenceHigh},
		{5000, models.ConfidenceHigh},
	}

	for _, tt := range tests {
		if got := ConfidenceTier(tt.draws); got != tt.want {
			t.Errorf("ConfidenceTier(%d) = %q, want %q", tt.draws, got, tt.want)
		}
	}
}
