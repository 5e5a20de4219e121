package models

import (
	"errors"
	"sort"
	"time"
)

// Draw is one historical lottery outcome. Draws are immutable once created;
// the canonical ordering is contest number descending (most recent first).
type Draw struct {
	Contest int       `json:"contest"`
	Date    time.Time `json:"date"`
	Numbers []int     `json:"numbers"`
}

// Validate checks draw field constraints against its variant.
func (d *Draw) Validate(v Variant) error {
	if d.Contest <= 0 {
		return errors.New("contest number must be positive")
	}
	if len(d.Numbers) != v.DrawSize {
		return errors.New("draw must contain exactly the variant's draw size")
	}
	seen := make(map[int]bool, len(d.Numbers))
	for _, n := range d.Numbers {
		if n < 1 || n > v.TotalNumbers {
			return errors.New("drawn number out of variant range")
		}
		if seen[n] {
			return errors.New("drawn numbers must be distinct")
		}
		seen[n] = true
	}
	return nil
}

// SortDrawsDesc orders draws most recent first by contest number.
func SortDrawsDesc(draws []Draw) {
	sort.Slice(draws, func(i, j int) bool {
		return draws[i].Contest > draws[j].Contest
	})
}
