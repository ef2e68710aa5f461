// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resultstore persists evaluation runs in a local SQLite database so
// results can be compared across settings and over time.
package resultstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"pheno-scan/internal/eval"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	mode TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS metrics (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	label TEXT NOT NULL,
	precision REAL NOT NULL,
	recall REAL NOT NULL,
	f1 REAL NOT NULL,
	instances INTEGER NOT NULL,
	false_positives INTEGER NOT NULL,
	PRIMARY KEY (run_id, label)
);
CREATE INDEX IF NOT EXISTS idx_metrics_label ON metrics(label)
`

// Store is an open results database.
type Store struct {
	db *sql.DB
}

// Run is one recorded evaluation run. Rows are loaded separately through
// RunRows.
type Run struct {
	ID        string
	Mode      string
	Comment   string
	CreatedAt time.Time
}

// Open opens or creates the results database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("error opening results database %s: %w", path, err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error preparing results database %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// initSchema applies the embedded schema statement by statement.
func initSchema(db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records one evaluation run and its per-label metrics atomically,
// returning the generated run id.
func (s *Store) SaveRun(mode, comment string, rows []eval.Row) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (id, mode, comment, created_at) VALUES (?, ?, ?, ?)`,
		id, mode, comment, time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("error recording run: %w", err)
	}
	for _, row := range rows {
		if _, err := tx.Exec(
			`INSERT INTO metrics (run_id, label, precision, recall, f1, instances, false_positives)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, row.Label, row.Precision, row.Recall, row.F1, row.Instances, row.FalsePositives,
		); err != nil {
			return "", fmt.Errorf("error recording metrics for %s: %w", row.Label, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("error committing run: %w", err)
	}
	return id, nil
}

// ListRuns returns all recorded runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, mode, comment, created_at FROM runs ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Mode, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunRows loads the per-label metrics of one run, sorted by label.
func (s *Store) RunRows(runID string) ([]eval.Row, error) {
	rows, err := s.db.Query(
		`SELECT label, precision, recall, f1, instances, false_positives
		 FROM metrics WHERE run_id = ? ORDER BY label`, runID)
	if err != nil {
		return nil, fmt.Errorf("error loading metrics for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []eval.Row
	for rows.Next() {
		var r eval.Row
		if err := rows.Scan(&r.Label, &r.Precision, &r.Recall, &r.F1, &r.Instances, &r.FalsePositives); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LabelHistory returns the recorded metrics of one label across all runs,
// newest run first.
func (s *Store) LabelHistory(label string) ([]eval.Row, error) {
	rows, err := s.db.Query(
		`SELECT m.label, m.precision, m.recall, m.f1, m.instances, m.false_positives
		 FROM metrics m JOIN runs r ON r.id = m.run_id
		 WHERE m.label = ? ORDER BY r.created_at DESC, r.rowid DESC`, label)
	if err != nil {
		return nil, fmt.Errorf("error loading history for %s: %w", label, err)
	}
	defer rows.Close()

	var out []eval.Row
	for rows.Next() {
		var r eval.Row
		if err := rows.Scan(&r.Label, &r.Precision, &r.Recall, &r.F1, &r.Instances, &r.FalsePositives); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
