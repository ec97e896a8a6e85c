// Package store persists evaluation results in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("evaluation not found")

// Metric is one matched geometry of one objective.
type Metric struct {
	Objective     string  `json:"objective"`
	Algorithm     string  `json:"algorithm"`
	GeometryIndex int     `json:"geometry_index"`
	Samples       int     `json:"samples"`
	Value         float64 `json:"value"`
}

type Evaluation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Steps     int       `json:"steps"`
	Metrics   []Metric  `json:"metrics"`
}

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	status     TEXT NOT NULL,
	message    TEXT NOT NULL,
	steps      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS metrics (
	evaluation_id  TEXT NOT NULL,
	position       INTEGER NOT NULL,
	objective      TEXT NOT NULL,
	algorithm      TEXT NOT NULL,
	geometry_index INTEGER NOT NULL,
	samples        INTEGER NOT NULL,
	value          DOUBLE NOT NULL,
	PRIMARY KEY (evaluation_id, position),
	FOREIGN KEY (evaluation_id) REFERENCES evaluations(id)
);
`

type Store struct {
	db *sql.DB
}

// Open creates the database at path if needed. Use ":memory:" in tests only
// when a single connection is enough.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveEvaluation inserts ev and its metrics in one transaction.
func (s *Store) SaveEvaluation(ctx context.Context, ev *Evaluation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluations (id, name, created_at, status, message, steps) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Name, ev.CreatedAt.UnixNano(), ev.Status, ev.Message, ev.Steps)
	if err != nil {
		return fmt.Errorf("insert evaluation %s: %w", ev.ID, err)
	}

	for i, m := range ev.Metrics {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO metrics (evaluation_id, position, objective, algorithm, geometry_index, samples, value)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, i, m.Objective, m.Algorithm, m.GeometryIndex, m.Samples, m.Value)
		if err != nil {
			return fmt.Errorf("insert metric %d of %s: %w", i, ev.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetEvaluation(ctx context.Context, id string) (*Evaluation, error) {
	var (
		ev      Evaluation
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, status, message, steps FROM evaluations WHERE id = ?`, id).
		Scan(&ev.ID, &ev.Name, &created, &ev.Status, &ev.Message, &ev.Steps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	ev.CreatedAt = time.Unix(0, created).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT objective, algorithm, geometry_index, samples, value
		 FROM metrics WHERE evaluation_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m Metric
		if err := rows.Scan(&m.Objective, &m.Algorithm, &m.GeometryIndex, &m.Samples, &m.Value); err != nil {
			return nil, err
		}
		ev.Metrics = append(ev.Metrics, m)
	}
	return &ev, rows.Err()
}

// ListEvaluations returns the newest evaluations first, without metrics.
func (s *Store) ListEvaluations(ctx context.Context, limit int) ([]Evaluation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, status, message, steps
		 FROM evaluations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Evaluation
	for rows.Next() {
		var (
			ev      Evaluation
			created int64
		)
		if err := rows.Scan(&ev.ID, &ev.Name, &created, &ev.Status, &ev.Message, &ev.Steps); err != nil {
			return nil, err
		}
		ev.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
