package caixa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sortelab/lotogenius/internal/models"
)

// quinaContest serves a deterministic upstream payload for one contest:
// five distinct numbers derived from the contest number, in API format
// (zero-padded digit strings, dd/mm/yyyy date).
func quinaContest(contest int) contestResponse {
	dezenas := make([]string, 5)
	for i := 0; i < 5; i++ {
		dezenas[i] = fmt.Sprintf("%02d", (contest+i*7)%80+1)
	}
	return contestResponse{
		Numero:       contest,
		DataApuracao: "15/08/2026",
		ListaDezenas: dezenas,
	}
}

func newUpstream(t *testing.T, latest int, failContests map[int]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quina", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(quinaContest(latest))
	})
	mux.HandleFunc("/quina/", func(w http.ResponseWriter, r *http.Request) {
		var contest int
		if _, err := fmt.Sscanf(r.URL.Path, "/quina/%d", &contest); err != nil {
			http.NotFound(w, r)
			return
		}
		if failContests[contest] {
			http.Error(w, "upstream error", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(quinaContest(contest))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, 1, 10*time.Millisecond)
}

func TestClient_FetchLatest(t *testing.T) {
	srv := newUpstream(t, 6400, nil)
	client := newTestClient(srv.URL)

	draw, err := client.FetchLatest(context.Background(), models.Quina)
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if draw.Contest != 6400 {
		t.Errorf("contest = %d, want 6400", draw.Contest)
	}
	if len(draw.Numbers) != 5 {
		t.Errorf("got %d numbers, want 5", len(draw.Numbers))
	}
	want := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	if !draw.Date.Equal(want) {
		t.Errorf("date = %v, want %v", draw.Date, want)
	}
}

func TestClient_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, 2, time.Millisecond)
	if _, err := client.FetchLatest(context.Background(), models.Quina); err == nil {
		t.Fatal("expected error from persistent 503")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("made %d requests, want 3 (initial + 2 retries)", got)
	}
}

func TestClient_RejectsInvalidUpstreamDraw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(contestResponse{
			Numero:       100,
			DataApuracao: "15/08/2026",
			ListaDezenas: []string{"01", "02", "03", "04", "99"}, // 99 > quina pool
		})
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.FetchLatest(context.Background(), models.Quina); err == nil {
		t.Fatal("out-of-range upstream number should be rejected")
	}
}

func TestAggregator_FetchHistoryLive(t *testing.T) {
	srv := newUpstream(t, 6400, nil)
	agg := NewAggregator(newTestClient(srv.URL), nil, 5, 0)

	draws, source, warning, err := agg.FetchHistory(context.Background(), models.Quina, 20)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if source != SourceLive {
		t.Errorf("source = %q, want %q", source, SourceLive)
	}
	if warning != "" {
		t.Errorf("unexpected warning: %q", warning)
	}
	if len(draws) != 20 {
		t.Fatalf("got %d draws, want 20", len(draws))
	}
	// Most recent first, contiguous page.
	for i, d := range draws {
		if want := 6400 - i; d.Contest != want {
			t.Errorf("draws[%d].Contest = %d, want %d", i, d.Contest, want)
		}
	}
}

func TestAggregator_SkipsFailedContests(t *testing.T) {
	failing := map[int]bool{6398: true, 6395: true}
	srv := newUpstream(t, 6400, failing)
	agg := NewAggregator(newTestClient(srv.URL), nil, 5, 0)

	draws, source, _, err := agg.FetchHistory(context.Background(), models.Quina, 10)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if source != SourceLive {
		t.Errorf("source = %q, want %q", source, SourceLive)
	}
	if len(draws) != 8 {
		t.Fatalf("got %d draws, want 8 (10 requested, 2 failing)", len(draws))
	}
	for _, d := range draws {
		if failing[d.Contest] {
			t.Errorf("failed contest %d should be absent", d.Contest)
		}
	}
}

func TestAggregator_MirrorFallback(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer dead.Close()
	mirror := newUpstream(t, 6400, nil)

	agg := NewAggregator(newTestClient(dead.URL), newTestClient(mirror.URL), 5, 0)
	draws, source, _, err := agg.FetchHistory(context.Background(), models.Quina, 5)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if source != SourceLive {
		t.Errorf("source = %q, want %q", source, SourceLive)
	}
	if len(draws) != 5 {
		t.Errorf("got %d draws, want 5", len(draws))
	}
}

func TestAggregator_SnapshotFallback(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer dead.Close()

	agg := NewAggregator(newTestClient(dead.URL), newTestClient(dead.URL), 5, 0)
	draws, source, warning, err := agg.FetchHistory(context.Background(), models.Quina, 10)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if source != SourceSnapshot {
		t.Errorf("source = %q, want %q", source, SourceSnapshot)
	}
	if warning == "" {
		t.Error("snapshot tier must carry a warning")
	}
	if len(draws) == 0 {
		t.Fatal("snapshot produced no draws")
	}
	for _, d := range draws {
		if err := d.Validate(models.Quina); err != nil {
			t.Errorf("snapshot draw %d invalid: %v", d.Contest, err)
		}
	}
	// Still most recent first.
	for i := 1; i < len(draws); i++ {
		if draws[i].Contest >= draws[i-1].Contest {
			t.Errorf("snapshot draws not sorted descending at %d", i)
		}
	}
}

func TestAggregator_SnapshotRespectsMaxDraws(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer dead.Close()

	agg := NewAggregator(newTestClient(dead.URL), nil, 5, 0)
	draws, _, _, err := agg.FetchHistory(context.Background(), models.Lotofacil, 3)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(draws) != 3 {
		t.Errorf("got %d draws, want 3", len(draws))
	}
}

func TestContestResponse_ToDraw(t *testing.T) {
	tests := []struct {
		name    string
		resp    contestResponse
		wantErr bool
	}{
		{
			name:    "valid",
			resp:    contestResponse{Numero: 10, DataApuracao: "02/01/2026", ListaDezenas: []string{"01", "15"}},
			wantErr: false,
		},
		{
			name:    "bad date",
			resp:    contestResponse{Numero: 10, DataApuracao: "2026-01-02", ListaDezenas: []string{"01"}},
			wantErr: true,
		},
		{
			name:    "bad number",
			resp:    contestResponse{Numero: 10, DataApuracao: "02/01/2026", ListaDezenas: []string{"xx"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draw, err := tt.resp.toDraw()
			if (err != nil) != tt.wantErr {
				t.Fatalf("toDraw() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				// dd/mm/yyyy: 02/01 is January 2nd, not February 1st.
				if draw.Date.Month() != time.January {
					t.Errorf("month = %v, want January", draw.Date.Month())
				}
			}
		})
	}
}
