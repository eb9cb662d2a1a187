// Package sqlite provides a durable core.RunStore backed by a sqlite
// database file. Records are stored one row per run with JSON encoded
// payload columns; status transitions are enforced in SQL so a terminal
// record can never be mutated.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/hupe1980/tripflow/core"
	"github.com/hupe1980/tripflow/runstore"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	input TEXT NOT NULL,
	steps TEXT NOT NULL DEFAULT '[]',
	transitions TEXT NOT NULL DEFAULT '[]',
	final TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	failure_reason TEXT NOT NULL DEFAULT '',
	created DATETIME NOT NULL,
	updated DATETIME NOT NULL
);`

// Store is a sqlite backed RunStore. Writes are serialized by a process-wide
// mutex, satisfying the single-writer-per-run discipline; reads go straight
// to the database.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists. Close the store when done serving runs.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Create implements core.RunStore.
func (s *Store) Create(input core.TravelRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("encode input: %w", err)
	}

	id := core.NewID()
	now := time.Now().UTC()

	_, err = s.db.Exec(
		`INSERT INTO runs (id, input, status, created, updated) VALUES (?, ?, ?, ?, ?)`,
		id, string(inputJSON), string(core.RunStatusRunning), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	return id, nil
}

// appendJSON loads a JSON array column from a running record, appends one
// element and writes it back. Caller must hold the mutex.
func (s *Store) appendJSON(runID, column string, element any) error {
	var raw string
	err := s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM runs WHERE id = ?`, column), runID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", runstore.ErrNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", column, err)
	}

	var arr []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}

	elemJSON, err := json.Marshal(element)
	if err != nil {
		return fmt.Errorf("encode %s element: %w", column, err)
	}
	arr = append(arr, elemJSON)

	updated, err := json.Marshal(arr)
	if err != nil {
		return fmt.Errorf("encode %s: %w", column, err)
	}

	res, err := s.db.Exec(
		fmt.Sprintf(`UPDATE runs SET %s = ?, updated = ? WHERE id = ? AND status = ?`, column),
		string(updated), time.Now().UTC(), runID, string(core.RunStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}

	return s.checkAffected(res, runID)
}

// checkAffected distinguishes a missing record from a terminal one when a
// status-guarded update matched no rows.
func (s *Store) checkAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var status string
	err = s.db.QueryRow(`SELECT status FROM runs WHERE id = ?`, runID).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", runstore.ErrNotFound, runID)
	}
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: %s", runstore.ErrTerminal, runID)
}

// AppendStepResult implements core.RunStore.
func (s *Store) AppendStepResult(runID string, res core.StepResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendJSON(runID, "steps", res)
}

// AppendTransition implements core.RunStore.
func (s *Store) AppendTransition(runID string, tr core.StageTransition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendJSON(runID, "transitions", tr)
}

// Complete implements core.RunStore.
func (s *Store) Complete(runID string, final string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE runs SET final = ?, status = ?, updated = ? WHERE id = ? AND status = ?`,
		final, string(core.RunStatusCompleted), time.Now().UTC(), runID, string(core.RunStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}

	return s.checkAffected(res, runID)
}

// Fail implements core.RunStore.
func (s *Store) Fail(runID string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE runs SET failure_reason = ?, status = ?, updated = ? WHERE id = ? AND status = ?`,
		reason, string(core.RunStatusFailed), time.Now().UTC(), runID, string(core.RunStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}

	return s.checkAffected(res, runID)
}

// Get implements core.RunStore.
func (s *Store) Get(runID string) (*core.RunRecord, error) {
	var (
		rec             core.RunRecord
		inputJSON       string
		stepsJSON       string
		transitionsJSON string
		status          string
	)

	err := s.db.QueryRow(
		`SELECT id, input, steps, transitions, final, status, failure_reason, created, updated FROM runs WHERE id = ?`,
		runID,
	).Scan(&rec.ID, &inputJSON, &stepsJSON, &transitionsJSON, &rec.Final, &status, &rec.FailureReason, &rec.Created, &rec.Updated)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", runstore.ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	rec.Status = core.RunStatus(status)

	if err := json.Unmarshal([]byte(inputJSON), &rec.Input); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if err := json.Unmarshal([]byte(stepsJSON), &rec.Steps); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	if err := json.Unmarshal([]byte(transitionsJSON), &rec.Transitions); err != nil {
		return nil, fmt.Errorf("decode transitions: %w", err)
	}

	return &rec, nil
}
