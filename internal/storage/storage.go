// Package storage provides SQLite-backed persistence for analysis results,
// keyed by (user, variant, contest). Writes are upserts with last-write-wins
// semantics; concurrent regenerations for the same key are an accepted race.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sortelab/lotogenius/internal/models"
	_ "modernc.org/sqlite"
)

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db         *sql.DB
	maxResults int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/lotogenius/data.db.
func New(maxResults int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "lotogenius", "data.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxResults: maxResults}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_results (
			user_id            TEXT NOT NULL,
			variant            TEXT NOT NULL,
			contest            INTEGER NOT NULL,
			id                 TEXT NOT NULL,
			combinations       TEXT NOT NULL,
			statistics         TEXT NOT NULL,
			strategy           TEXT NOT NULL,
			confidence         TEXT NOT NULL,
			presentation_score REAL NOT NULL,
			games_generated    INTEGER NOT NULL,
			source             TEXT NOT NULL,
			warning            TEXT,
			created_at         INTEGER NOT NULL,
			PRIMARY KEY (user_id, variant, contest)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON analysis_results(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Put stores a result, replacing any previous row for the same key.
func (s *Storage) Put(result *models.AnalysisResult) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("invalid result: %w", err)
	}

	combosJSON, err := json.Marshal(result.Combinations)
	if err != nil {
		return fmt.Errorf("failed to marshal combinations: %w", err)
	}
	statsJSON, err := json.Marshal(result.Statistics)
	if err != nil {
		return fmt.Errorf("failed to marshal statistics: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO analysis_results
			(user_id, variant, contest, id, combinations, statistics, strategy,
			 confidence, presentation_score, games_generated, source, warning, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		result.UserID, result.Variant, result.Contest, result.ID,
		string(combosJSON), string(statsJSON), result.Strategy,
		result.Confidence, result.PresentationScore, result.GamesGenerated,
		result.Source, result.Warning, result.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// Get retrieves the cached result for the key, or (nil, nil) when absent.
func (s *Storage) Get(userID, variant string, contest int) (*models.AnalysisResult, error) {
	row := s.db.QueryRow(`
		SELECT user_id, variant, contest, id, combinations, statistics, strategy,
		       confidence, presentation_score, games_generated, source, warning, created_at
		FROM analysis_results WHERE user_id = ? AND variant = ? AND contest = ?`,
		userID, variant, contest)

	var r models.AnalysisResult
	var combosJSON, statsJSON string
	var warning sql.NullString
	var createdAtNano int64

	err := row.Scan(
		&r.UserID, &r.Variant, &r.Contest, &r.ID, &combosJSON, &statsJSON,
		&r.Strategy, &r.Confidence, &r.PresentationScore, &r.GamesGenerated,
		&r.Source, &warning, &createdAtNano,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if err := json.Unmarshal([]byte(combosJSON), &r.Combinations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal combinations: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &r.Statistics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statistics: %w", err)
	}
	r.Warning = warning.String
	r.CreatedAt = time.Unix(0, createdAtNano)
	return &r, nil
}

// Delete removes the cached result for the key. Deleting a missing row is
// not an error.
func (s *Storage) Delete(userID, variant string, contest int) error {
	_, err := s.db.Exec(`
		DELETE FROM analysis_results WHERE user_id = ? AND variant = ? AND contest = ?`,
		userID, variant, contest)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// RotateResults keeps at most maxResults newest rows by created_at.
func (s *Storage) RotateResults() error {
	_, err := s.db.Exec(`
		DELETE FROM analysis_results WHERE rowid NOT IN (
			SELECT rowid FROM analysis_results ORDER BY created_at DESC LIMIT ?
		)`, s.maxResults)
	if err != nil {
		return fmt.Errorf("failed to rotate results: %w", err)
	}
	return nil
}
