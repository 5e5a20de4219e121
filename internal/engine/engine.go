// Package engine runs the analysis pipeline end to end: fetch history,
// analyze frequencies, synthesize combinations, label the result, and cache
// it. It also exposes the probability tables for ticket comparisons.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sortelab/lotogenius/internal/analysis"
	"github.com/sortelab/lotogenius/internal/generator"
	"github.com/sortelab/lotogenius/internal/logger"
	"github.com/sortelab/lotogenius/internal/models"
	"github.com/sortelab/lotogenius/internal/probability"
	"github.com/sortelab/lotogenius/internal/score"
	"github.com/sortelab/lotogenius/internal/storage"
)

// ErrNoHistory means the fetch succeeded but produced zero draws, which the
// downstream stages cannot work with.
var ErrNoHistory = errors.New("engine: no historical draws available")

// Fetcher supplies the recent draw history for a variant. Satisfied by
// caixa.Aggregator.
type Fetcher interface {
	FetchHistory(ctx context.Context, variant models.Variant, maxDraws int) (draws []models.Draw, source, warning string, err error)
}

// StrategyComparison bundles the exact odds for one ticket shape: the
// single-draw table and its extension across ticketCount independent draws.
type StrategyComparison struct {
	Variant       string            `json:"variant"`
	NumbersChosen int               `json:"numbers_chosen"`
	TicketCount   int               `json:"ticket_count"`
	SingleTicket  probability.Table `json:"single_ticket"`
	MultiDraw     probability.Table `json:"multi_draw"`
}

// Engine orchestrates one analysis run per (user, variant, contest) key.
type Engine struct {
	fetcher   Fetcher
	store     *storage.Storage
	generator *generator.Generator
	scorer    *score.Scorer
	minSample int
	maxDraws  int
}

// New creates an engine over the given collaborators.
func New(fetcher Fetcher, store *storage.Storage, gen *generator.Generator, scorer *score.Scorer, minSample, maxDraws int) *Engine {
	return &Engine{
		fetcher:   fetcher,
		store:     store,
		generator: gen,
		scorer:    scorer,
		minSample: minSample,
		maxDraws:  maxDraws,
	}
}

// RunAnalysis produces (or returns the cached) suggestion set for the user
// and variant. contest selects the analysis key; pass 0 to target whatever
// the upstream reports as the latest contest. Results are idempotent per
// (user, variant, contest): a cached result with combinations is returned
// as is, while a degenerate cached result (zero combinations) is deleted
// and regenerated.
func (e *Engine) RunAnalysis(ctx context.Context, userID string, variant models.Variant, contest, gamesWanted int) (*models.AnalysisResult, error) {
	if contest > 0 {
		if cached, err := e.fromCache(userID, variant, contest); err != nil {
			return nil, err
		} else if cached != nil {
			return cached, nil
		}
	}

	draws, source, warning, err := e.fetcher.FetchHistory(ctx, variant, e.maxDraws)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s history: %w", variant.Slug, err)
	}
	if len(draws) == 0 {
		return nil, ErrNoHistory
	}

	if contest <= 0 {
		contest = draws[0].Contest
		if cached, err := e.fromCache(userID, variant, contest); err != nil {
			return nil, err
		} else if cached != nil {
			return cached, nil
		}
	}

	if len(draws) < e.minSample {
		logger.Warn("Only %d %s draws available, below the %d minimum sample; confidence will be limited",
			len(draws), variant.Slug, e.minSample)
		if warning == "" {
			warning = fmt.Sprintf("analysis based on %d draws, below the recommended minimum of %d", len(draws), e.minSample)
		}
	}

	stats, err := analysis.Analyze(draws, variant.TotalNumbers)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s history: %w", variant.Slug, err)
	}

	combos := e.generator.Generate(stats, variant.DefaultPick, variant.TotalNumbers, models.Balanced, gamesWanted)
	if len(combos) < gamesWanted {
		logger.Warn("Generated %d of %d requested %s games before the attempt budget ran out",
			len(combos), gamesWanted, variant.Slug)
	}

	result := &models.AnalysisResult{
		ID:                uuid.NewString(),
		UserID:            userID,
		Variant:           variant.Slug,
		Contest:           contest,
		Combinations:      combos,
		Statistics:        stats,
		Strategy:          models.Balanced.Name,
		Confidence:        score.ConfidenceTier(len(draws)),
		PresentationScore: e.scorer.PresentationScore(variant, len(draws)),
		GamesGenerated:    len(combos),
		Source:            source,
		Warning:           warning,
		CreatedAt:         time.Now(),
	}

	if err := e.store.Put(result); err != nil {
		return nil, fmt.Errorf("failed to cache analysis result: %w", err)
	}

	logger.Info("Analysis complete: %s contest %d, %d games, confidence %s, source %s",
		variant.Slug, contest, result.GamesGenerated, result.Confidence, result.Source)
	return result, nil
}

// fromCache returns a usable cached result, nil on miss. A degenerate entry
// with zero combinations is removed so the caller regenerates it.
func (e *Engine) fromCache(userID string, variant models.Variant, contest int) (*models.AnalysisResult, error) {
	cached, err := e.store.Get(userID, variant.Slug, contest)
	if err != nil {
		return nil, fmt.Errorf("failed to read result cache: %w", err)
	}
	if cached == nil {
		return nil, nil
	}
	if len(cached.Combinations) == 0 {
		logger.Warn("Cached %s result for contest %d has no combinations, regenerating", variant.Slug, contest)
		if err := e.store.Delete(userID, variant.Slug, contest); err != nil {
			return nil, fmt.Errorf("failed to drop degenerate cached result: %w", err)
		}
		return nil, nil
	}
	logger.Debug("Serving cached %s result for contest %d", variant.Slug, contest)
	return cached, nil
}

// CompareStrategies computes the exact odds tables for a ticket of
// numbersChosen numbers played across ticketCount draws. Pure arithmetic on
// the variant shape; no history involved.
func (e *Engine) CompareStrategies(variant models.Variant, numbersChosen, ticketCount int) (*StrategyComparison, error) {
	single, err := probability.SingleTicket(variant, numbersChosen)
	if err != nil {
		return nil, err
	}

	multi := make(probability.Table, len(single))
	for k, p := range single {
		multi[k] = probability.MultiDraw(p, ticketCount)
	}

	return &StrategyComparison{
		Variant:       variant.Slug,
		NumbersChosen: numbersChosen,
		TicketCount:   ticketCount,
		SingleTicket:  single,
		MultiDraw:     multi,
	}, nil
}
