// Package analysis reduces a window of historical draws into the aggregate
// frequency statistics that drive combination generation.
package analysis

import (
	"errors"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/sortelab/lotogenius/internal/models"
)

// ErrEmptyInput is returned when Analyze is called with zero draws. This is
// a caller precondition violation, not a retryable condition.
var ErrEmptyInput = errors.New("analysis: no draws to analyze")

// poolSize is how many numbers the hot and cold slices each carry, capped
// by the variant's pool when it is smaller.
const poolSize = 10

// Analyze computes frequency statistics over draws for a number pool of
// [1, maxNumber]. Single linear pass plus one sort by frequency.
func Analyze(draws []models.Draw, maxNumber int) (*models.Statistics, error) {
	if len(draws) == 0 {
		return nil, ErrEmptyInput
	}

	// Zero-fill so numbers absent from the sample still surface as cold.
	freq := make(map[int]int, maxNumber)
	for n := 1; n <= maxNumber; n++ {
		freq[n] = 0
	}

	sums := make([]float64, 0, len(draws))
	var evenCount, oddCount, withAdjacent int
	periodStart, periodEnd := draws[0].Date, draws[0].Date

	for _, draw := range draws {
		sum := 0
		for _, n := range draw.Numbers {
			freq[n]++
			sum += n
			if n%2 == 0 {
				evenCount++
			} else {
				oddCount++
			}
		}
		sums = append(sums, float64(sum))

		if hasAdjacentPair(draw.Numbers) {
			withAdjacent++
		}

		if !draw.Date.IsZero() {
			if periodStart.IsZero() || draw.Date.Before(periodStart) {
				periodStart = draw.Date
			}
			if draw.Date.After(periodEnd) {
				periodEnd = draw.Date
			}
		}
	}

	avgSum, err := stats.Mean(sums)
	if err != nil {
		return nil, err
	}

	hot, cold := rankNumbers(freq, maxNumber)

	return &models.Statistics{
		TotalDraws:      len(draws),
		NumberFrequency: freq,
		HotNumbers:      hot,
		ColdNumbers:     cold,
		AverageSum:      avgSum,
		EvenCount:       evenCount,
		OddCount:        oddCount,
		ConsecutivePct:  float64(withAdjacent) / float64(len(draws)) * 100,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
	}, nil
}

// rankNumbers sorts the pool by occurrence count descending and slices the
// top and bottom segments. Tie order at the slice boundaries is
// implementation-defined and callers must not rely on it.
func rankNumbers(freq map[int]int, maxNumber int) (hot, cold []int) {
	ranked := make([]int, 0, maxNumber)
	for n := 1; n <= maxNumber; n++ {
		ranked = append(ranked, n)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return freq[ranked[i]] > freq[ranked[j]]
	})

	k := poolSize
	if maxNumber < k {
		k = maxNumber
	}

	hot = append(hot, ranked[:k]...)
	cold = append(cold, ranked[len(ranked)-k:]...)
	return hot, cold
}

// hasAdjacentPair reports whether the draw contains at least one pair of
// consecutive integers when sorted.
func hasAdjacentPair(numbers []int) bool {
	sorted := make([]int, len(numbers))
	copy(sorted, numbers)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1]+1 {
			return true
		}
	}
	return false
}
