// Package triage loads local-output captures into SQLite and summarizes
// them per property. It is a diagnostic aid for runs made outside the
// fuzzing environment with VOIDSTAR_SDK_LOCAL_OUTPUT set.
package triage

import (
	"bufio"
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Record kinds stored in the records table.
const (
	KindDefinition = "definition"
	KindOutcome    = "outcome"
	KindSetup      = "setup"
	KindSDK        = "sdk"
	KindEvent      = "event"
)

// Store holds ingested telemetry in SQLite. Use ":memory:" for a throwaway
// database.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at path and applies pragmas and
// the schema. Idempotent; safe to call on an existing triage database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY during ingest.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// IngestStats reports what an ingest pass consumed.
type IngestStats struct {
	Lines   int // non-empty lines seen
	Records int // lines stored
	Skipped int // lines that were not parsable JSON objects
}

// assertPayload is the subset of an assert record triage cares about.
type assertPayload struct {
	Hit         bool   `json:"hit"`
	Condition   bool   `json:"condition"`
	Message     string `json:"message"`
	DisplayType string `json:"display_type"`
	ID          string `json:"id"`
}

// Ingest reads a capture (one JSON record per line) and stores every
// classifiable line. Unparsable lines are counted, not fatal: captures from
// crashed runs may end mid-record.
func (s *Store) Ingest(ctx context.Context, r io.Reader) (*IngestStats, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingest: %w", err)
	}
	defer tx.Rollback()

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO records (kind, property, display, site_id, passed, payload)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	stats := &IngestStats{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(line, &envelope); err != nil {
			stats.Skipped++
			continue
		}
		kind, property, display, siteID, passed := classify(envelope)
		if _, err := insert.ExecContext(ctx, kind, property, display, siteID, passed, string(line)); err != nil {
			return nil, fmt.Errorf("failed to store record: %w", err)
		}
		stats.Records++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingest: %w", err)
	}
	return stats, nil
}

// classify maps one envelope to its table columns.
func classify(envelope map[string]json.RawMessage) (kind string, property, display, siteID any, passed any) {
	if raw, ok := envelope["voidstar_assert"]; ok {
		var rec assertPayload
		if err := json.Unmarshal(raw, &rec); err != nil {
			return KindEvent, nil, nil, nil, nil
		}
		if !rec.Hit {
			return KindDefinition, rec.Message, rec.DisplayType, rec.ID, nil
		}
		return KindOutcome, rec.Message, rec.DisplayType, rec.ID, rec.Condition
	}
	if _, ok := envelope["voidstar_setup"]; ok {
		return KindSetup, nil, nil, nil, nil
	}
	if _, ok := envelope["voidstar_sdk"]; ok {
		return KindSDK, nil, nil, nil, nil
	}
	// Events are wrapped as {name: details}; the sole key is the name.
	for name := range envelope {
		return KindEvent, name, nil, nil, nil
	}
	return KindEvent, nil, nil, nil, nil
}

// PropertySummary aggregates one property's records.
type PropertySummary struct {
	Message     string `json:"message"`
	DisplayType string `json:"display_type"`
	Definitions int64  `json:"definitions"`
	Passes      int64  `json:"passes"`
	Fails       int64  `json:"fails"`
}

// Summary returns per-property aggregates, ordered by message.
func (s *Store) Summary(ctx context.Context) ([]PropertySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT property,
		       COALESCE(MAX(display), ''),
		       SUM(kind = 'definition'),
		       SUM(kind = 'outcome' AND passed = 1),
		       SUM(kind = 'outcome' AND passed = 0)
		FROM records
		WHERE kind IN ('definition', 'outcome')
		GROUP BY property
		ORDER BY property`)
	if err != nil {
		return nil, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	var out []PropertySummary
	for rows.Next() {
		var ps PropertySummary
		if err := rows.Scan(&ps.Message, &ps.DisplayType, &ps.Definitions, &ps.Passes, &ps.Fails); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// EventCount aggregates one event name.
type EventCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Events returns per-event-name counts, ordered by name.
func (s *Store) Events(ctx context.Context) ([]EventCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT property, COUNT(*)
		FROM records
		WHERE kind = 'event' AND property IS NOT NULL
		GROUP BY property
		ORDER BY property`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []EventCount
	for rows.Next() {
		var ec EventCount
		if err := rows.Scan(&ec.Name, &ec.Count); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		out = append(out, ec)
	}
	return out, rows.Err()
}
