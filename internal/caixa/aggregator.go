package caixa

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sortelab/lotogenius/internal/logger"
	"github.com/sortelab/lotogenius/internal/models"
)

// Sources reported alongside a fetched history.
const (
	SourceLive     = "live"
	SourceSnapshot = "fallback-snapshot"
)

// ErrUpstreamUnavailable means every tier, including the bundled snapshot,
// produced zero draws.
var ErrUpstreamUnavailable = errors.New("caixa: no draws available from any source")

// Aggregator fetches the recent draw history for a variant, trying the
// direct upstream first, then a mirror of the same protocol, then the
// snapshot bundled with the binary. Individual contest failures inside the
// live tiers are swallowed; only total exhaustion is an error.
type Aggregator struct {
	primary    *Client
	mirror     *Client
	batchSize  int
	batchDelay time.Duration
}

// NewAggregator wires the live tiers. mirror may be nil when no mirror is
// configured.
func NewAggregator(primary, mirror *Client, batchSize int, batchDelay time.Duration) *Aggregator {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Aggregator{
		primary:    primary,
		mirror:     mirror,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// FetchHistory returns up to maxDraws most recent draws for the variant,
// most recent first, along with the source tier that served them and an
// optional non-fatal warning.
func (a *Aggregator) FetchHistory(ctx context.Context, variant models.Variant, maxDraws int) ([]models.Draw, string, string, error) {
	if maxDraws < 1 {
		maxDraws = 1
	}

	client := a.primary
	latest, err := client.FetchLatest(ctx, variant)
	if err != nil && a.mirror != nil {
		logger.Warn("Direct %s fetch failed, trying mirror: %v", variant.Slug, err)
		client = a.mirror
		latest, err = client.FetchLatest(ctx, variant)
	}
	if err != nil {
		logger.Warn("All live tiers failed for %s: %v", variant.Slug, err)
		return a.fromSnapshot(variant, maxDraws)
	}

	draws := a.pageBackward(ctx, client, variant, latest, maxDraws)
	if len(draws) == 0 {
		return a.fromSnapshot(variant, maxDraws)
	}

	models.SortDrawsDesc(draws)
	return draws, SourceLive, "", nil
}

// pageBackward collects contests from latest down to latest-maxDraws+1 in
// bounded concurrent batches with a fixed inter-batch delay. A contest that
// fails after its retry budget is omitted, never fatal for the page.
func (a *Aggregator) pageBackward(ctx context.Context, client *Client, variant models.Variant, latest models.Draw, maxDraws int) []models.Draw {
	draws := []models.Draw{latest}

	first := latest.Contest - maxDraws + 1
	if first < 1 {
		first = 1
	}
	var contests []int
	for c := latest.Contest - 1; c >= first; c-- {
		contests = append(contests, c)
	}

	sem := semaphore.NewWeighted(int64(a.batchSize))
	var mu sync.Mutex

	for start := 0; start < len(contests); start += a.batchSize {
		end := start + a.batchSize
		if end > len(contests) {
			end = len(contests)
		}

		var wg sync.WaitGroup
		for _, contest := range contests[start:end] {
			if err := sem.Acquire(ctx, 1); err != nil {
				wg.Wait()
				return draws
			}
			wg.Add(1)
			go func(contest int) {
				defer wg.Done()
				defer sem.Release(1)

				draw, err := client.FetchContest(ctx, variant, contest)
				if err != nil {
					logger.Debug("Skipping %s contest %d: %v", variant.Slug, contest, err)
					return
				}
				mu.Lock()
				draws = append(draws, draw)
				mu.Unlock()
			}(contest)
		}
		wg.Wait()

		if end < len(contests) && a.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return draws
			case <-time.After(a.batchDelay):
			}
		}
	}

	return draws
}
