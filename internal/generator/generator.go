// Package generator synthesizes candidate combinations from frequency
// statistics via weighted rejection sampling: propose a candidate biased
// toward the hot/cold/median pools, validate its structure, and discard it
// on failure, within a hard attempt budget.
package generator

import (
	"math"
	"math/rand"
	"sort"

	"github.com/sortelab/lotogenius/internal/models"
)

const (
	// attemptsPerGame bounds total candidate attempts at quota×10. The
	// loop must terminate for any statistics input, including degenerate
	// hot/cold pools.
	attemptsPerGame = 10

	// residualUniform is the chance that a median-pool pick is replaced
	// by a uniform draw over the whole range, for extra entropy.
	residualUniform = 0.10

	// maxSumDeviation is the allowed relative deviation of a candidate's
	// sum from the historical average.
	maxSumDeviation = 0.30

	// maxConsecutiveRun caps the longest run of adjacent integers in an
	// accepted combination.
	maxConsecutiveRun = 3

	// sumCheckExemptSize is the game size whose draw-to-pool ratio makes
	// the sum bound statistically meaningless; the check is skipped.
	sumCheckExemptSize = 50
)

// Generator produces validated combinations from statistics.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator backed by the given random source.
func New(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// Generate returns up to quota combinations of numbersPerGame distinct
// numbers in [1, maxNumber]. The batch may be shorter than quota when the
// attempt budget runs out; callers must treat that as a normal outcome.
func (g *Generator) Generate(st *models.Statistics, numbersPerGame, maxNumber int, strategy models.Strategy, quota int) []models.Combination {
	if quota <= 0 || numbersPerGame <= 0 || numbersPerGame > maxNumber {
		return nil
	}

	median := medianPool(st, maxNumber)
	accepted := make([]models.Combination, 0, quota)
	seen := make(map[string]bool, quota)

	maxAttempts := quota * attemptsPerGame
	for attempt := 0; attempt < maxAttempts && len(accepted) < quota; attempt++ {
		candidate, ok := g.buildCandidate(st, median, numbersPerGame, maxNumber, strategy)
		if !ok {
			continue
		}
		if !g.valid(candidate, st, numbersPerGame) {
			continue
		}
		key := candidate.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		accepted = append(accepted, candidate)
	}

	return accepted
}

// buildCandidate draws numbersPerGame distinct numbers, selecting a pool
// per draw by strategy weight. The distinct-pick loop is bounded so a
// degenerate pool cannot stall generation.
func (g *Generator) buildCandidate(st *models.Statistics, median []int, numbersPerGame, maxNumber int, strategy models.Strategy) (models.Combination, bool) {
	chosen := make(map[int]bool, numbersPerGame)
	numbers := make([]int, 0, numbersPerGame)

	maxPicks := numbersPerGame * 20
	for picks := 0; picks < maxPicks && len(numbers) < numbersPerGame; picks++ {
		n := g.pickNumber(st, median, maxNumber, strategy)
		if n < 1 || chosen[n] {
			continue
		}
		chosen[n] = true
		numbers = append(numbers, n)
	}
	if len(numbers) < numbersPerGame {
		return nil, false
	}

	sort.Ints(numbers)
	return models.Combination(numbers), true
}

// pickNumber selects one number: from the hot pool with probability
// HotWeight, the cold pool with ColdWeight, otherwise the median pool,
// falling back to a uniform draw over [1, maxNumber] whenever the chosen
// pool is empty or for a small residual share of median picks.
func (g *Generator) pickNumber(st *models.Statistics, median []int, maxNumber int, strategy models.Strategy) int {
	r := g.rng.Float64()
	switch {
	case r < strategy.HotWeight:
		if len(st.HotNumbers) > 0 {
			return st.HotNumbers[g.rng.Intn(len(st.HotNumbers))]
		}
	case r < strategy.HotWeight+strategy.ColdWeight:
		if len(st.ColdNumbers) > 0 {
			return st.ColdNumbers[g.rng.Intn(len(st.ColdNumbers))]
		}
	default:
		if len(median) > 0 && g.rng.Float64() >= residualUniform {
			return median[g.rng.Intn(len(median))]
		}
	}
	return g.rng.Intn(maxNumber) + 1
}

// valid applies the structural plausibility checks.
func (g *Generator) valid(c models.Combination, st *models.Statistics, numbersPerGame int) bool {
	if numbersPerGame >= 6 && !parityBalanced(c) {
		return false
	}
	if numbersPerGame != sumCheckExemptSize && !sumPlausible(c, st.AverageSum) {
		return false
	}
	return longestRun(c) <= maxConsecutiveRun
}

// parityBalanced requires at least 2 even and 2 odd numbers.
func parityBalanced(c models.Combination) bool {
	even := 0
	for _, n := range c {
		if n%2 == 0 {
			even++
		}
	}
	return even >= 2 && len(c)-even >= 2
}

// sumPlausible bounds the candidate's sum to within maxSumDeviation of the
// historical average.
func sumPlausible(c models.Combination, averageSum float64) bool {
	if averageSum <= 0 {
		return true
	}
	sum := 0
	for _, n := range c {
		sum += n
	}
	return math.Abs(float64(sum)-averageSum)/averageSum <= maxSumDeviation
}

// longestRun returns the length of the longest run of adjacent integers in
// an ascending combination.
func longestRun(c models.Combination) int {
	longest, run := 1, 1
	for i := 1; i < len(c); i++ {
		if c[i] == c[i-1]+1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// medianPool returns the numbers in neither the hot nor the cold list.
func medianPool(st *models.Statistics, maxNumber int) []int {
	excluded := make(map[int]bool, len(st.HotNumbers)+len(st.ColdNumbers))
	for _, n := range st.HotNumbers {
		excluded[n] = true
	}
	for _, n := range st.ColdNumbers {
		excluded[n] = true
	}

	pool := make([]int, 0, maxNumber)
	for n := 1; n <= maxNumber; n++ {
		if !excluded[n] {
			pool = append(pool, n)
		}
	}
	return pool
}
