// Package usage records model-call usage for reporting. It is a pure
// sink: nothing on the routing or scheduling path reads it back.
package usage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maestro-sh/maestro/pkg/models"
)

// Store persists usage records in an SQLite database.
type Store struct {
	conn *sql.DB
	path string
	mu   sync.RWMutex
}

// DefaultStorePath returns the usage database path under the XDG data
// directory.
func DefaultStorePath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "maestro", "usage.db")
}

// OpenStore opens (creating if needed) the usage database at path and
// applies pending migrations. WAL mode is enabled for concurrent reads.
func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var currentVersion int
	row := s.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("get schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1UsageRecords},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration v%d: %w", m.version, err)
		}
	}
	return nil
}

const migrationV1UsageRecords = `
CREATE TABLE IF NOT EXISTS usage_records (
	id TEXT PRIMARY KEY,
	run_id TEXT,
	task TEXT NOT NULL,
	model_id TEXT NOT NULL,
	provider TEXT NOT NULL,
	tokens_in INTEGER NOT NULL DEFAULT 0,
	tokens_out INTEGER NOT NULL DEFAULT 0,
	estimated INTEGER NOT NULL DEFAULT 0,
	cost REAL NOT NULL DEFAULT 0.0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_records_run_id ON usage_records(run_id);
CREATE INDEX IF NOT EXISTS idx_usage_records_model_id ON usage_records(model_id);
`

// Insert persists one record.
func (s *Store) Insert(rec models.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(`
		INSERT INTO usage_records
			(id, run_id, task, model_id, provider, tokens_in, tokens_out, estimated, cost, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.Task, rec.ModelID, string(rec.Provider),
		rec.TokensIn, rec.TokensOut, boolToInt(rec.Estimated), rec.Cost,
		rec.Duration.Milliseconds(), rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// ByRun returns all records for a run, oldest first.
func (s *Store) ByRun(runID string) ([]models.UsageRecord, error) {
	return s.query("SELECT id, run_id, task, model_id, provider, tokens_in, tokens_out, estimated, cost, duration_ms, created_at FROM usage_records WHERE run_id = ? ORDER BY created_at", runID)
}

// All returns every record, oldest first.
func (s *Store) All() ([]models.UsageRecord, error) {
	return s.query("SELECT id, run_id, task, model_id, provider, tokens_in, tokens_out, estimated, cost, duration_ms, created_at FROM usage_records ORDER BY created_at")
}

func (s *Store) query(q string, args ...any) ([]models.UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage records: %w", err)
	}
	defer rows.Close()

	var out []models.UsageRecord
	for rows.Next() {
		var rec models.UsageRecord
		var provider string
		var estimated int
		var durationMs int64
		var createdAt time.Time
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.Task, &rec.ModelID, &provider,
			&rec.TokensIn, &rec.TokensOut, &estimated, &rec.Cost, &durationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		rec.Provider = models.Provider(provider)
		rec.Estimated = estimated != 0
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.CreatedAt = createdAt
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
