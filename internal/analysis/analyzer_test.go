package analysis

import (
	"errors"
	"testing"
	"time"

	"github.com/sortelab/lotogenius/internal/models"
)

func TestAnalyze_EmptyInput(t *testing.T) {
	if _, err := Analyze(nil, 25); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestAnalyze_FrequencyProperties(t *testing.T) {
	draws := []models.Draw{
		{Contest: 3, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Numbers: []int{1, 2, 3, 10, 20}},
		{Contest: 2, Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Numbers: []int{1, 2, 5, 40, 60}},
		{Contest: 1, Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Numbers: []int{1, 7, 9, 13, 55}},
	}

	st, err := Analyze(draws, 60)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(st.NumberFrequency) != 60 {
		t.Errorf("frequency map has %d keys, want 60", len(st.NumberFrequency))
	}
	total := 0
	for n, c := range st.NumberFrequency {
		if c < 0 {
			t.Errorf("negative count for %d", n)
		}
		total += c
	}
	if total != len(draws)*5 {
		t.Errorf("frequency counts sum to %d, want %d", total, len(draws)*5)
	}
	if st.NumberFrequency[1] != 3 {
		t.Errorf("count for 1 = %d, want 3", st.NumberFrequency[1])
	}
	if st.NumberFrequency[59] != 0 {
		t.Errorf("unseen number 59 should be zero-filled, got %d", st.NumberFrequency[59])
	}
	if st.TotalDraws != 3 {
		t.Errorf("TotalDraws = %d, want 3", st.TotalDraws)
	}
}

func TestAnalyze_HotColdDisjoint(t *testing.T) {
	// 40-number pool, numbers 1..10 drawn every time: clearly hot.
	var draws []models.Draw
	for i := 1; i <= 20; i++ {
		draws = append(draws, models.Draw{
			Contest: i,
			Numbers: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		})
	}

	st, err := Analyze(draws, 40)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(st.HotNumbers) != 10 || len(st.ColdNumbers) != 10 {
		t.Fatalf("hot/cold sizes = %d/%d, want 10/10", len(st.HotNumbers), len(st.ColdNumbers))
	}
	hot := make(map[int]bool)
	for _, n := range st.HotNumbers {
		hot[n] = true
		if n < 1 || n > 10 {
			t.Errorf("unexpected hot number %d", n)
		}
	}
	for _, n := range st.ColdNumbers {
		if hot[n] {
			t.Errorf("number %d appears in both hot and cold", n)
		}
	}
}

func TestAnalyze_SmallPoolCapsSlices(t *testing.T) {
	draws := []models.Draw{{Contest: 1, Numbers: []int{1, 3, 5}}}
	st, err := Analyze(draws, 6)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(st.HotNumbers) != 6 || len(st.ColdNumbers) != 6 {
		t.Errorf("hot/cold sizes = %d/%d, want min(10, 6) = 6", len(st.HotNumbers), len(st.ColdNumbers))
	}
}

func TestAnalyze_SumParityConsecutive(t *testing.T) {
	draws := []models.Draw{
		{Contest: 2, Numbers: []int{2, 4, 6}},    // sum 12, 3 even, adjacent: no
		{Contest: 1, Numbers: []int{1, 2, 9}},    // sum 12, 1 even 2 odd, adjacent: yes
		{Contest: 3, Numbers: []int{10, 20, 30}}, // sum 60, 3 even, adjacent: no
	}

	st, err := Analyze(draws, 30)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if st.AverageSum != 28 {
		t.Errorf("AverageSum = %v, want 28", st.AverageSum)
	}
	if st.EvenCount != 7 || st.OddCount != 2 {
		t.Errorf("parity = %d even / %d odd, want 7/2", st.EvenCount, st.OddCount)
	}
	wantPct := 100.0 / 3.0
	if diff := st.ConsecutivePct - wantPct; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ConsecutivePct = %v, want %v", st.ConsecutivePct, wantPct)
	}
}

func TestAnalyze_Period(t *testing.T) {
	jan := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	draws := []models.Draw{
		{Contest: 2, Date: mar, Numbers: []int{1, 2, 3}},
		{Contest: 1, Date: jan, Numbers: []int{4, 5, 6}},
	}

	st, err := Analyze(draws, 10)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !st.PeriodStart.Equal(jan) || !st.PeriodEnd.Equal(mar) {
		t.Errorf("period = %v..%v, want %v..%v", st.PeriodStart, st.PeriodEnd, jan, mar)
	}
}
