package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps every run in a single database file. Metadata columns
// are queryable; the time series and snapshots are stored as a JSON payload.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
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

type runPayload struct {
	Times         []float64            `json:"times"`
	Series        map[string][]float64 `json:"series"`
	SnapshotTimes []float64            `json:"snapshot_times"`
	Snapshots     [][]float64          `json:"snapshots"`
}

func (s *SQLiteStore) Save(ctx context.Context, data *RunData) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	metrics, err := json.Marshal(data.Meta.Metrics)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(runPayload{
		Times:         data.Times,
		Series:        data.Series,
		SnapshotTimes: data.SnapshotTimes,
		Snapshots:     data.Snapshots,
	})
	if err != nil {
		return err
	}

	m := data.Meta
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, time_step, n_rows, n_cols, row_spacing, col_spacing,
			seed, steps, final_time, metrics, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			time_step = excluded.time_step,
			n_rows = excluded.n_rows,
			n_cols = excluded.n_cols,
			row_spacing = excluded.row_spacing,
			col_spacing = excluded.col_spacing,
			seed = excluded.seed,
			steps = excluded.steps,
			final_time = excluded.final_time,
			metrics = excluded.metrics,
			payload = excluded.payload
	`, m.ID, m.Timestamp.UnixNano(), m.TimeStep, m.Rows, m.Cols, m.RowSpacing, m.ColSpacing,
		m.Seed, m.Steps, m.FinalTime, metrics, payload)
	return err
}

const metaColumns = `id, created_at, time_step, n_rows, n_cols, row_spacing, col_spacing, seed, steps, final_time, metrics`

type scanner interface {
	Scan(dest ...any) error
}

func scanMeta(row scanner, extra ...any) (RunMetadata, error) {
	var (
		m       RunMetadata
		created int64
		metrics []byte
	)
	dest := append([]any{&m.ID, &created, &m.TimeStep, &m.Rows, &m.Cols, &m.RowSpacing,
		&m.ColSpacing, &m.Seed, &m.Steps, &m.FinalTime, &metrics}, extra...)
	if err := row.Scan(dest...); err != nil {
		return RunMetadata{}, err
	}
	m.Timestamp = time.Unix(0, created)
	if err := json.Unmarshal(metrics, &m.Metrics); err != nil {
		return RunMetadata{}, fmt.Errorf("decode metrics %s: %w", m.ID, err)
	}
	return m, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]RunMetadata, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+metaColumns+` FROM runs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		m, err := scanMeta(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, m)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Load(ctx context.Context, runID string) (*RunData, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var payload []byte
	row := db.QueryRowContext(ctx, `SELECT `+metaColumns+`, payload FROM runs WHERE id = ?`, runID)
	meta, err := scanMeta(row, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var p runPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &RunData{
		Meta:          meta,
		Times:         p.Times,
		Series:        p.Series,
		SnapshotTimes: p.SnapshotTimes,
		Snapshots:     p.Snapshots,
	}, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			time_step REAL NOT NULL,
			n_rows INTEGER NOT NULL,
			n_cols INTEGER NOT NULL,
			row_spacing REAL NOT NULL,
			col_spacing REAL NOT NULL,
			seed INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			final_time REAL NOT NULL,
			metrics BLOB NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
