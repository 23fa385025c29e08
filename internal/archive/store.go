// Package archive persists finished reports so verdicts survive the
// process and runs can be compared over time. SQLite keeps it a single
// file next to the rules, no server to operate.
package archive

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vapkit/proctor/internal/model"
)

// Record is one archived report row.
type Record struct {
	SessionID  string            `json:"session_id"`
	TestID     string            `json:"test_id"`
	Objective  string            `json:"objective"`
	FinalScore int               `json:"final_score"`
	Status     model.Status      `json:"status"`
	Violations []model.Violation `json:"violations"`
	RulesHash  string            `json:"rules_hash,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// ErrNotFound is returned by Get when no report matches the session id.
var ErrNotFound = errors.New("archive: report not found")

// Store is a SQLite-backed report archive.
type Store struct {
	db *sql.DB
}

// Open creates or opens the archive database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("archive: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		session_id      TEXT PRIMARY KEY,
		test_id         TEXT NOT NULL,
		objective       TEXT NOT NULL,
		final_score     INTEGER NOT NULL,
		status          TEXT NOT NULL,
		violations_json TEXT NOT NULL,
		rules_hash      TEXT,
		created_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_test_id ON reports(test_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("archive: init schema: %w", err)
	}
	return nil
}

// Save stores one finished report under its session id.
func (s *Store) Save(sessionID string, r model.Report, rulesHash string) error {
	violations, err := json.Marshal(r.Violations)
	if err != nil {
		return fmt.Errorf("archive: marshal violations: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO reports
			(session_id, test_id, objective, final_score, status, violations_json, rules_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, r.TestID, r.Objective, r.FinalScore, string(r.Status),
		string(violations), rulesHash, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("archive: save report: %w", err)
	}
	return nil
}

// List returns archived reports, newest first, up to limit (0 = all).
func (s *Store) List(limit int) ([]Record, error) {
	query := `
		SELECT session_id, test_id, objective, final_score, status, violations_json, rules_hash, created_at
		FROM reports ORDER BY created_at DESC, session_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive: list reports: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: iterate reports: %w", err)
	}
	return out, nil
}

// Get returns the archived report for one session id.
func (s *Store) Get(sessionID string) (Record, error) {
	rows, err := s.db.Query(`
		SELECT session_id, test_id, objective, final_score, status, violations_json, rules_hash, created_at
		FROM reports WHERE session_id = ?`, sessionID)
	if err != nil {
		return Record{}, fmt.Errorf("archive: get report: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Record{}, fmt.Errorf("archive: get report: %w", err)
		}
		return Record{}, ErrNotFound
	}
	return scanRecord(rows)
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var status, violations, createdAt string
	var rulesHash sql.NullString

	if err := rows.Scan(&rec.SessionID, &rec.TestID, &rec.Objective,
		&rec.FinalScore, &status, &violations, &rulesHash, &createdAt); err != nil {
		return Record{}, fmt.Errorf("archive: scan report: %w", err)
	}

	rec.Status = model.Status(status)
	rec.RulesHash = rulesHash.String
	if err := json.Unmarshal([]byte(violations), &rec.Violations); err != nil {
		return Record{}, fmt.Errorf("archive: decode violations: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}

// Report reconstructs the model.Report stored in a record.
func (rec Record) Report() model.Report {
	return model.Report{
		TestID:     rec.TestID,
		Objective:  rec.Objective,
		FinalScore: rec.FinalScore,
		Status:     rec.Status,
		Violations: rec.Violations,
	}
}
