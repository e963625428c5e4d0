// Package store persists optimization runs and their evaluated trials in
// SQLite so finished studies can be inspected after the process exits.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eagleopt/eagle/pkg/core"
	"github.com/eagleopt/eagle/pkg/errors"
)

// SQLiteStore records trials grouped by run. It implements
// optimizers.Recorder for the run it was opened against.
type SQLiteStore struct {
	db    *sql.DB
	runID string
}

// Open creates or opens a trial database at path and registers a new run in
// it. Use ":memory:" for an ephemeral store.
func Open(path, studyName string) (*SQLiteStore, error) {
	if path == "" {
		path = "eagle_trials.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "opening trial database")
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db, runID: uuid.NewString()}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	// WAL keeps recording cheap while the optimizer loop runs.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.StorageFailed, "enabling WAL mode")
	}

	if _, err := db.Exec(
		`INSERT INTO runs (id, study, started_at) VALUES (?, ?, ?)`,
		s.runID, studyName, time.Now().UnixNano(),
	); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.StorageFailed, "registering run")
	}

	return s, nil
}

func (s *SQLiteStore) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		study TEXT NOT NULL,
		started_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trials (
		run_id TEXT NOT NULL REFERENCES runs(id),
		batch INTEGER NOT NULL,
		evaluated INTEGER NOT NULL,
		features TEXT NOT NULL,
		reward REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trials_run ON trials(run_id);
	CREATE INDEX IF NOT EXISTS idx_trials_reward ON trials(run_id, reward);
	`

	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "initializing trial schema")
	}
	return nil
}

// RunID returns the identifier of the run this store records into.
func (s *SQLiteStore) RunID() string { return s.runID }

// RecordBatch persists one evaluated batch. Feature vectors are stored as
// JSON arrays, one trial row per candidate.
func (s *SQLiteStore) RecordBatch(ctx context.Context, features [][]float64, rewards []float64, batch, evaluated int) error {
	if len(features) != len(rewards) {
		return errors.WithFields(
			errors.New(errors.InvalidInput, "features and rewards must be the same length"),
			errors.Fields{"features": len(features), "rewards": len(rewards)})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "beginning trial transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trials (run_id, batch, evaluated, features, reward) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "preparing trial insert")
	}
	defer stmt.Close()

	for i := range features {
		encoded, err := json.Marshal(features[i])
		if err != nil {
			return errors.Wrap(err, errors.StorageFailed, "encoding features")
		}
		if _, err := stmt.ExecContext(ctx, s.runID, batch, evaluated, string(encoded), rewards[i]); err != nil {
			return errors.Wrap(err, errors.StorageFailed, "inserting trial")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "committing trial batch")
	}
	return nil
}

// Trials returns every trial recorded for this run, in insertion order.
func (s *SQLiteStore) Trials(ctx context.Context) ([]core.Trial, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch, evaluated, features, reward FROM trials WHERE run_id = ? ORDER BY rowid`,
		s.runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "querying trials")
	}
	defer rows.Close()

	var trials []core.Trial
	for rows.Next() {
		var trial core.Trial
		var encoded string
		if err := rows.Scan(&trial.Batch, &trial.Evaluated, &encoded, &trial.Reward); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "scanning trial")
		}
		if err := json.Unmarshal([]byte(encoded), &trial.Features); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "decoding features")
		}
		trials = append(trials, trial)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "iterating trials")
	}
	return trials, nil
}

// BestTrial returns the highest-reward trial of this run.
func (s *SQLiteStore) BestTrial(ctx context.Context) (core.Trial, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT batch, evaluated, features, reward FROM trials
		 WHERE run_id = ? ORDER BY reward DESC, rowid ASC LIMIT 1`,
		s.runID)

	var trial core.Trial
	var encoded string
	if err := row.Scan(&trial.Batch, &trial.Evaluated, &encoded, &trial.Reward); err != nil {
		if err == sql.ErrNoRows {
			return core.Trial{}, errors.New(errors.ResourceNotFound, "run has no trials")
		}
		return core.Trial{}, errors.Wrap(err, errors.StorageFailed, "scanning best trial")
	}
	if err := json.Unmarshal([]byte(encoded), &trial.Features); err != nil {
		return core.Trial{}, errors.Wrap(err, errors.StorageFailed, "decoding features")
	}
	return trial, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
