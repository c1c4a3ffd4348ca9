// Package anyhist stores the reward history of training
// runs in a SQLite database.
package anyhist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run ID is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunMeta describes a training run.
type RunMeta struct {
	// Label is a human-readable name for the run.
	Label string `json:"label"`

	// Params holds numeric hyperparameters by name.
	Params map[string]float64 `json:"params"`
}

// Run is a stored training run.
type Run struct {
	ID       uuid.UUID
	Meta     RunMeta
	Started  time.Time
	Finished time.Time
	Solved   bool
}

// Episode is one stored episode result.
type Episode struct {
	Index   int
	Reward  float64
	Epsilon float64
}

// A Store is a SQLite-backed run history.
// It is safe for concurrent use.
type Store struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewStore creates a Store for the database at path.
// Init must be called before the Store is used.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init opens the database and creates the tables if they
// do not exist.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// StartRun records the start of a run and returns its
// new ID.
func (s *Store) StartRun(ctx context.Context, meta RunMeta) (uuid.UUID, error) {
	db, err := s.getDB()
	if err != nil {
		return uuid.Nil, err
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode run meta: %w", err)
	}

	id := uuid.New()
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, meta, started_at)
		VALUES (?, ?, ?)
	`, id.String(), payload, time.Now().UnixNano())
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// RecordEpisode adds or replaces the result of an
// episode in a run.
func (s *Store) RecordEpisode(ctx context.Context, runID uuid.UUID, episode int,
	reward, epsilon float64) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if err := checkRun(ctx, db, runID); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO episodes (run_id, idx, reward, epsilon)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, idx) DO UPDATE SET
			reward = excluded.reward,
			epsilon = excluded.epsilon
	`, runID.String(), episode, reward, epsilon)
	return err
}

// FinishRun marks a run as finished.
// The solved flag tells whether the run met its success
// criterion.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID, solved bool) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, solved = ? WHERE id = ?
	`, time.Now().UnixNano(), solved, runID.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// Run looks up a run by ID.
func (s *Store) Run(ctx context.Context, runID uuid.UUID) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	var payload []byte
	var started int64
	var finished sql.NullInt64
	var solved bool
	err = db.QueryRowContext(ctx, `
		SELECT meta, started_at, finished_at, solved FROM runs WHERE id = ?
	`, runID.String()).Scan(&payload, &started, &finished, &solved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}

	run := Run{ID: runID, Started: time.Unix(0, started), Solved: solved}
	if finished.Valid {
		run.Finished = time.Unix(0, finished.Int64)
	}
	if err := json.Unmarshal(payload, &run.Meta); err != nil {
		return Run{}, false, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return run, true, nil
}

// Episodes returns the episodes of a run in order.
func (s *Store) Episodes(ctx context.Context, runID uuid.UUID) ([]Episode, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	if err := checkRun(ctx, db, runID); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT idx, reward, epsilon FROM episodes
		WHERE run_id = ? ORDER BY idx
	`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Episode
	for rows.Next() {
		var ep Episode
		if err := rows.Scan(&ep.Index, &ep.Reward, &ep.Epsilon); err != nil {
			return nil, err
		}
		res = append(res, ep)
	}
	return res, rows.Err()
}

// Rewards returns the episode rewards of a run in order.
func (s *Store) Rewards(ctx context.Context, runID uuid.UUID) ([]float64, error) {
	episodes, err := s.Episodes(ctx, runID)
	if err != nil {
		return nil, err
	}
	res := make([]float64, len(episodes))
	for i, ep := range episodes {
		res[i] = ep.Reward
	}
	return res, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func checkRun(ctx context.Context, db *sql.DB, runID uuid.UUID) error {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`,
		runID.String()).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			meta BLOB NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER,
			solved BOOLEAN NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL REFERENCES runs(id),
			idx INTEGER NOT NULL,
			reward REAL NOT NULL,
			epsilon REAL NOT NULL,
			PRIMARY KEY (run_id, idx)
		);
	`)
	return err
}
