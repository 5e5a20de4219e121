package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Confidence tiers derived purely from sample depth.
const (
	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"
)

// Strategy is a named weighting over the hot, cold, and median number
// pools used by the combination generator. Weights must sum to 1.0.
type Strategy struct {
	Name         string  `json:"name"`
	HotWeight    float64 `json:"hot_weight"`
	ColdWeight   float64 `json:"cold_weight"`
	RandomWeight float64 `json:"random_weight"`
}

// Balanced is the only built-in strategy: hot-weighted with a cold
// presence and the remainder drawn from the median pool.
var Balanced = Strategy{Name: "balanced", HotWeight: 0.4, ColdWeight: 0.2, RandomWeight: 0.4}

// Validate checks that the strategy weights form a distribution.
func (s *Strategy) Validate() error {
	if s.Name == "" {
		return errors.New("strategy name must not be empty")
	}
	if s.HotWeight < 0 || s.ColdWeight < 0 || s.RandomWeight < 0 {
		return errors.New("strategy weights must not be negative")
	}
	sum := s.HotWeight + s.ColdWeight + s.RandomWeight
	if sum < 0.999 || sum > 1.001 {
		return errors.New("strategy weights must sum to 1.0")
	}
	return nil
}

// Statistics holds the aggregate frequency statistics derived from a
// window of historical draws. Recomputed per analysis, never persisted
// independently of a result.
type Statistics struct {
	TotalDraws      int         `json:"total_draws"`
	NumberFrequency map[int]int `json:"number_frequency"`
	HotNumbers      []int       `json:"hot_numbers"`
	ColdNumbers     []int       `json:"cold_numbers"`
	AverageSum      float64     `json:"average_sum"`
	EvenCount       int         `json:"even_count"`
	OddCount        int         `json:"odd_count"`
	ConsecutivePct  float64     `json:"consecutive_pct"`
	PeriodStart     time.Time   `json:"period_start"`
	PeriodEnd       time.Time   `json:"period_end"`
}

// Combination is a candidate set of numbers proposed as a single game,
// sorted ascending and free of duplicates.
type Combination []int

// Key returns a canonical string form used for duplicate detection
// within a generated batch.
func (c Combination) Key() string {
	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, "-")
}

// Validate checks size, range, ordering, and distinctness.
func (c Combination) Validate(numbersPerGame, maxNumber int) error {
	if len(c) != numbersPerGame {
		return errors.New("combination has wrong size")
	}
	for i, n := range c {
		if n < 1 || n > maxNumber {
			return errors.New("combination number out of range")
		}
		if i > 0 && c[i-1] >= n {
			return errors.New("combination must be sorted ascending with distinct numbers")
		}
	}
	return nil
}

// AnalysisResult is the unit persisted per (user, variant, contest) and
// returned to callers. PresentationScore is a display-only heuristic, not
// a calibrated accuracy estimate.
type AnalysisResult struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	Variant           string        `json:"variant"`
	Contest           int           `json:"contest"`
	Combinations      []Combination `json:"combinations"`
	Statistics        *Statistics   `json:"statistics"`
	Strategy          string        `json:"strategy"`
	Confidence        string        `json:"confidence"`
	PresentationScore float64       `json:"presentation_score"`
	GamesGenerated    int           `json:"games_generated"`
	Source            string        `json:"source"`
	Warning           string        `json:"warning,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Validate checks result field constraints.
func (r *AnalysisResult) Validate() error {
	if r.ID == "" {
		return errors.New("result ID must not be empty")
	}
	if r.UserID == "" {
		return errors.New("user ID must not be empty")
	}
	if r.Variant == "" {
		return errors.New("variant must not be empty")
	}
	if r.Contest <= 0 {
		return errors.New("contest number must be positive")
	}
	switch r.Confidence {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
	default:
		return errors.New("confidence must be one of: low, medium, high")
	}
	if r.GamesGenerated != len(r.Combinations) {
		return errors.New("games generated must match combination count")
	}
	if r.Statistics == nil {
		return errors.New("statistics must not be nil")
	}
	return nil
}
