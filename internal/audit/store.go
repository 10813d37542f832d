package audit

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// ErrNoRun is returned by writes before BeginRun.
var ErrNoRun = errors.New("audit: no active run")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	meta        TEXT
);

CREATE TABLE IF NOT EXISTS predictions (
	entry_id       TEXT PRIMARY KEY,
	run_id         TEXT NOT NULL,
	target_session INTEGER NOT NULL,
	predicted      TEXT NOT NULL,
	confidence     REAL NOT NULL,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_predictions_run ON predictions(run_id, target_session);

CREATE TABLE IF NOT EXISTS resolutions (
	entry_id       TEXT PRIMARY KEY,
	run_id         TEXT NOT NULL,
	target_session INTEGER NOT NULL,
	actual         TEXT NOT NULL,
	hit            INTEGER NOT NULL,
	resolved_at    TEXT NOT NULL,
	FOREIGN KEY (entry_id) REFERENCES predictions(entry_id)
);

CREATE TABLE IF NOT EXISTS weight_snapshots (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	session      INTEGER NOT NULL,
	weights_json TEXT NOT NULL,
	decision     TEXT NOT NULL,
	reason       TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store is an append-only SQLite audit trail of predictions, resolutions
// and weight updates. The engine only writes to it.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	runID   string
	entropy io.Reader
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion constructor

// #region runs
// BeginRun starts a new run and tags every later write with its ID.
func (s *Store) BeginRun(meta string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	run := Run{
		RunID:     ulid.MustNew(ulid.Timestamp(now), s.entropy).String(),
		StartedAt: now,
		Meta:      meta,
	}
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, started_at, meta) VALUES (?, ?, ?)`,
		run.RunID, now.Format(time.RFC3339Nano), nullIfEmpty(meta),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	s.runID = run.RunID
	return run, nil
}

// RunID returns the active run, or "" before BeginRun.
func (s *Store) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

func (s *Store) activeRun() (string, error) {
	id := s.RunID()
	if id == "" {
		return "", ErrNoRun
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. Run IDs are
// monotonic ULIDs, so ID order is start order.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, started_at, meta FROM runs ORDER BY run_id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedStr string
		var meta sql.NullString
		if err := rows.Scan(&r.RunID, &startedStr, &meta); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		r.Meta = meta.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// #endregion runs

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
