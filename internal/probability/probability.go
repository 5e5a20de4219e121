// Package probability computes exact hypergeometric match probabilities
// for lottery tickets and extends them to multi-draw coverage.
package probability

import (
	"fmt"
	"math"

	"github.com/sortelab/lotogenius/internal/models"
)

// Table maps a hit-count threshold to the percent chance of matching at
// least that many numbers, in [0, 100].
type Table map[int]float64

// SingleTicket returns the at-least-k probability table for a ticket of
// numbersChosen numbers on the given variant. Pure function of the variant
// shape; independent of historical draws.
func SingleTicket(variant models.Variant, numbersChosen int) (Table, error) {
	if numbersChosen < variant.DrawSize || numbersChosen > variant.TotalNumbers {
		return nil, fmt.Errorf("numbers chosen must be between %d and %d for %s",
			variant.DrawSize, variant.TotalNumbers, variant.Slug)
	}

	table := make(Table, variant.DrawSize)
	for k := 1; k <= variant.DrawSize; k++ {
		table[k] = atLeast(variant.TotalNumbers, variant.DrawSize, numbersChosen, k) * 100
	}
	return table, nil
}

// MultiDraw converts a single-draw percent probability into the chance of
// hitting at least once across tickets independent draws: 1-(1-p)^n.
//
// Tickets bought for the same contest share one draw and are not
// independent; this formula models playing across separate future draws,
// which is the intended reading.
func MultiDraw(percent float64, tickets int) float64 {
	if tickets < 1 {
		return 0
	}
	p := percent / 100
	return (1 - math.Pow(1-p, float64(tickets))) * 100
}

// atLeast sums the exact hypergeometric mass for h = k..min(chosen, draw):
// P(exactly h) = C(chosen, h)·C(total-chosen, draw-h) / C(total, draw).
func atLeast(total, draw, chosen, k int) float64 {
	upper := chosen
	if draw < upper {
		upper = draw
	}

	denom := binomial(total, draw)
	var p float64
	for h := k; h <= upper; h++ {
		if draw-h > total-chosen {
			continue // more misses than the complement pool holds
		}
		p += binomial(chosen, h) * binomial(total-chosen, draw-h) / denom
	}
	return p
}

// binomial computes C(n, k) with the multiplicative algorithm in float64.
// Factorial division overflows int64 well inside the supported pool sizes
// (C(100, 20) already exceeds it), so the product is built incrementally.
func binomial(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1.0
	for i := 1; i <= k; i++ {
		result *= float64(n-k+i) / float64(i)
	}
	return result
}
