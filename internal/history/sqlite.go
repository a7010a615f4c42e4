// Package history persists completed triage results for audit and
// dashboard queries. Two backends: SQLite for single-instance
// deployments (the default) and PostgreSQL for shared ones.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/respicare/triage-engine/internal/domain"
)

// SQLiteStore implements domain.HistoryStore on a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the history database at
// dbPath and ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS triage_history (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		input_hash TEXT NOT NULL,
		symptoms TEXT NOT NULL DEFAULT '[]',
		condition_name TEXT NOT NULL,
		confidence REAL NOT NULL,
		urgency TEXT NOT NULL,
		severity TEXT NOT NULL,
		is_emergency INTEGER NOT NULL DEFAULT 0,
		validation_status TEXT NOT NULL DEFAULT 'passed',
		model_used TEXT DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_created_at ON triage_history(created_at);
	CREATE INDEX IF NOT EXISTS idx_history_condition ON triage_history(condition_name);
	CREATE INDEX IF NOT EXISTS idx_history_urgency ON triage_history(urgency);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*domain.TriageRecord, error) {
	rec := &domain.TriageRecord{}
	var symptoms, urgency, severity string

	err := s.Scan(
		&rec.ID, &rec.RequestID, &rec.InputHash, &symptoms,
		&rec.ConditionName, &rec.Confidence, &urgency, &severity,
		&rec.IsEmergency, &rec.Validation, &rec.ModelUsed,
		&rec.DurationMS, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(symptoms), &rec.Symptoms); err != nil {
		return nil, fmt.Errorf("failed to decode symptoms: %w", err)
	}
	rec.Urgency = domain.UrgencyLevel(urgency)
	rec.Severity = domain.SeverityLevel(severity)
	return rec, nil
}

// Save inserts one triage record.
func (s *SQLiteStore) Save(ctx context.Context, rec *domain.TriageRecord) error {
	symptoms, err := json.Marshal(rec.Symptoms)
	if err != nil {
		return fmt.Errorf("failed to encode symptoms: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO triage_history (
			id, request_id, input_hash, symptoms,
			condition_name, confidence, urgency, severity,
			is_emergency, validation_status, model_used, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.RequestID, rec.InputHash, string(symptoms),
		rec.ConditionName, rec.Confidence, string(rec.Urgency), string(rec.Severity),
		rec.IsEmergency, rec.Validation, rec.ModelUsed, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*domain.TriageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, input_hash, symptoms,
			condition_name, confidence, urgency, severity,
			is_emergency, validation_status, model_used, duration_ms, created_at
		FROM triage_history
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var records []*domain.TriageRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByCondition returns how many records each condition has.
func (s *SQLiteStore) CountByCondition(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT condition_name, COUNT(*)
		FROM triage_history
		GROUP BY condition_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

// Ping verifies the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
