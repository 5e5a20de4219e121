package caixa

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/sortelab/lotogenius/internal/logger"
	"github.com/sortelab/lotogenius/internal/models"
)

//go:embed snapshots/*.json
var snapshotFS embed.FS

// snapshotFile is the bundled last-resort history for one variant.
type snapshotFile struct {
	CapturedAt string        `json:"captured_at"`
	Draws      []models.Draw `json:"draws"`
}

// fromSnapshot serves the bundled snapshot for the variant. The returned
// warning names the snapshot's capture date so callers can surface its age.
func (a *Aggregator) fromSnapshot(variant models.Variant, maxDraws int) ([]models.Draw, string, string, error) {
	data, err := snapshotFS.ReadFile(fmt.Sprintf("snapshots/%s.json", variant.Slug))
	if err != nil {
		return nil, "", "", ErrUpstreamUnavailable
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Error("Corrupt bundled snapshot for %s: %v", variant.Slug, err)
		return nil, "", "", ErrUpstreamUnavailable
	}
	if len(snap.Draws) == 0 {
		return nil, "", "", ErrUpstreamUnavailable
	}

	draws := snap.Draws
	models.SortDrawsDesc(draws)
	if len(draws) > maxDraws {
		draws = draws[:maxDraws]
	}

	warning := fmt.Sprintf("upstream unreachable; serving bundled %s snapshot captured %s",
		variant.Name, snap.CapturedAt)
	return draws, SourceSnapshot, warning, nil
}
