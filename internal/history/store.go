// Package history persists verification outcomes in SQLite so past
// decisions can be queried long after the terminal scrollback is gone.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/cmdwatch/internal/verify"
)

// Record is one verification outcome.
type Record struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Source          string    `json:"source"`
	Command         string    `json:"command"`
	Decision        string    `json:"decision"`
	HighestRisk     string    `json:"highest_risk"`
	AllKnown        bool      `json:"all_known"`
	CanAutoExecute  bool      `json:"can_auto_execute"`
	Unknown         []string  `json:"unknown,omitempty"`
	NeedsPermission []string  `json:"needs_permission,omitempty"`
}

// Stats aggregates decision counts over the whole store.
type Stats struct {
	Total      int `json:"total"`
	AllowCount int `json:"allow_count"`
	AskCount   int `json:"ask_count"`
	DenyCount  int `json:"deny_count"`
}

// Store is a SQLite-backed verification history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS verifications (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP,
		source           TEXT NOT NULL,
		command          TEXT NOT NULL,
		decision         TEXT NOT NULL,
		highest_risk     TEXT NOT NULL,
		all_known        INTEGER NOT NULL,
		can_auto_execute INTEGER NOT NULL,
		unknown          TEXT,
		needs_permission TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_verifications_time ON verifications(created_at);
	CREATE INDEX IF NOT EXISTS idx_verifications_decision ON verifications(decision);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores the outcome of one verification.
func (s *Store) Record(ctx context.Context, source string, v *verify.Verdict, decision string) error {
	unknown, err := json.Marshal(v.Unknown)
	if err != nil {
		return fmt.Errorf("marshal unknown: %w", err)
	}
	needsPermission, err := json.Marshal(v.NeedsPermission)
	if err != nil {
		return fmt.Errorf("marshal needs_permission: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verifications (created_at, source, command, decision, highest_risk, all_known, can_auto_execute, unknown, needs_permission)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), source, v.Original, decision, string(v.HighestRisk),
		v.AllKnown, v.CanAutoExecute, string(unknown), string(needsPermission),
	)
	return err
}

// Recent returns the last limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, command, decision, highest_risk, all_known, can_auto_execute, unknown, needs_permission
		 FROM verifications ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Search returns records whose command contains query, newest first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, command, decision, highest_risk, all_known, can_auto_execute, unknown, needs_permission
		 FROM verifications WHERE command LIKE ?
		 ORDER BY id DESC LIMIT ?`, pattern, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Stats counts decisions across the whole store.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	rows, err := s.db.QueryContext(ctx,
		`SELECT decision, COUNT(*) FROM verifications GROUP BY decision`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var decision string
		var count int
		if err := rows.Scan(&decision, &count); err != nil {
			return st, err
		}
		st.Total += count
		switch decision {
		case "allow":
			st.AllowCount = count
		case "ask":
			st.AskCount = count
		case "deny":
			st.DenyCount = count
		}
	}
	return st, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var unknown, needsPermission sql.NullString
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Source, &r.Command, &r.Decision,
			&r.HighestRisk, &r.AllKnown, &r.CanAutoExecute, &unknown, &needsPermission); err != nil {
			return nil, err
		}
		if unknown.Valid && unknown.String != "" {
			if err := json.Unmarshal([]byte(unknown.String), &r.Unknown); err != nil {
				return nil, fmt.Errorf("record %d: parse unknown: %w", r.ID, err)
			}
		}
		if needsPermission.Valid && needsPermission.String != "" {
			if err := json.Unmarshal([]byte(needsPermission.String), &r.NeedsPermission); err != nil {
				return nil, fmt.Errorf("record %d: parse needs_permission: %w", r.ID, err)
			}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// FormatRecords renders history rows as an aligned text table.
func FormatRecords(records []Record) string {
	if len(records) == 0 {
		return "No history entries.\n"
	}
	var b strings.Builder
	for _, r := range records {
		ts := r.CreatedAt.UTC().Format("2006-01-02 15:04:05")
		fmt.Fprintf(&b, "%-20s %-6s %-6s %-9s %s\n",
			ts, r.Source, strings.ToUpper(r.Decision), strings.ToUpper(r.HighestRisk), r.Command)
	}
	return b.String()
}
