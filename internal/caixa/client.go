// Package caixa obtains historical lottery draws from the Caixa portal
// API, with a mirror tier and a bundled snapshot tier as fallbacks.
package caixa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sortelab/lotogenius/internal/models"
)

// Client provides access to one base URL speaking the Caixa portal API
// contract: GET {base}/{slug} for the latest contest and
// GET {base}/{slug}/{contest} for a specific one.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// contestResponse is the upstream payload for one contest. Dates arrive as
// dd/mm/yyyy text and drawn numbers as zero-padded digit strings.
type contestResponse struct {
	Numero       int      `json:"numero"`
	DataApuracao string   `json:"dataApuracao"`
	ListaDezenas []string `json:"listaDezenas"`
}

// NewClient creates a client for one upstream base URL.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, retryDelay time.Duration) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// FetchLatest retrieves the most recent contest for the variant.
func (c *Client) FetchLatest(ctx context.Context, variant models.Variant) (models.Draw, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, variant.Slug)
	return c.fetchDraw(ctx, url, variant)
}

// FetchContest retrieves one specific contest for the variant.
func (c *Client) FetchContest(ctx context.Context, variant models.Variant, contest int) (models.Draw, error) {
	url := fmt.Sprintf("%s/%s/%d", c.baseURL, variant.Slug, contest)
	return c.fetchDraw(ctx, url, variant)
}

func (c *Client) fetchDraw(ctx context.Context, url string, variant models.Variant) (models.Draw, error) {
	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return models.Draw{}, err
	}
	defer resp.Body.Close()

	var payload contestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.Draw{}, fmt.Errorf("failed to decode contest: %w", err)
	}

	draw, err := payload.toDraw()
	if err != nil {
		return models.Draw{}, err
	}
	if err := draw.Validate(variant); err != nil {
		return models.Draw{}, fmt.Errorf("upstream contest %d invalid: %w", draw.Contest, err)
	}
	return draw, nil
}

// toDraw converts the upstream text fields into an internal draw.
func (r contestResponse) toDraw() (models.Draw, error) {
	date, err := time.Parse("02/01/2006", r.DataApuracao)
	if err != nil {
		return models.Draw{}, fmt.Errorf("failed to parse draw date %q: %w", r.DataApuracao, err)
	}

	numbers := make([]int, 0, len(r.ListaDezenas))
	for _, s := range r.ListaDezenas {
		n, err := strconv.Atoi(s)
		if err != nil {
			return models.Draw{}, fmt.Errorf("failed to parse drawn number %q: %w", s, err)
		}
		numbers = append(numbers, n)
	}

	return models.Draw{
		Contest: r.Numero,
		Date:    date,
		Numbers: numbers,
	}, nil
}

// doRequest performs an HTTP GET with a bounded fixed-delay retry. Retries
// at this layer deliberately do not escalate; rate limiting is handled by
// the aggregator's inter-batch pacing.
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status: %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}
