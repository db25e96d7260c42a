// Package history persists a local log of completed conversions in an
// embedded SQLite database, so operators can audit which MOM produced
// which PO and with what field values.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound reports a missing conversion record.
var ErrNotFound = errors.New("conversion record not found")

// Record is one completed (or failed) conversion.
type Record struct {
	ID           string            `json:"id"`
	MOMFile      string            `json:"mom_file"`
	TemplateFile string            `json:"template_file"`
	PONo         string            `json:"po_no"`
	Status       string            `json:"status"`
	Fields       map[string]string `json:"fields,omitempty"`
	Replaced     int               `json:"replaced"`
	Unresolved   []string          `json:"unresolved,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Store manages the conversion history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			mom_file TEXT NOT NULL,
			template_file TEXT NOT NULL,
			po_no TEXT,
			status TEXT NOT NULL,
			fields TEXT,
			replaced INTEGER NOT NULL DEFAULT 0,
			unresolved TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_po_no ON conversions(po_no)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put inserts or replaces a conversion record.
func (s *Store) Put(ctx context.Context, rec Record) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	unresolved, err := json.Marshal(rec.Unresolved)
	if err != nil {
		return fmt.Errorf("encode unresolved: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions
			(id, mom_file, template_file, po_no, status, fields, replaced, unresolved, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.MOMFile, rec.TemplateFile, rec.PONo, rec.Status,
		string(fields), rec.Replaced, string(unresolved),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store conversion %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns one conversion record by ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, mom_file, template_file, po_no, status, fields, replaced, unresolved, created_at
		 FROM conversions WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load conversion %s: %w", id, err)
	}
	return rec, nil
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mom_file, template_file, po_no, status, fields, replaced, unresolved, created_at
		 FROM conversions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list conversions: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Delete removes one record.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversion %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

// Purge removes records older than the retention window and returns
// how many were dropped.
func (s *Store) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge conversions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*Record, error) {
	var rec Record
	var fields, unresolved, created string
	err := row.Scan(&rec.ID, &rec.MOMFile, &rec.TemplateFile, &rec.PONo,
		&rec.Status, &fields, &rec.Replaced, &unresolved, &created)
	if err != nil {
		return nil, err
	}
	if fields != "" && fields != "null" {
		if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
			return nil, fmt.Errorf("decode fields: %w", err)
		}
	}
	if unresolved != "" && unresolved != "null" {
		if err := json.Unmarshal([]byte(unresolved), &rec.Unresolved); err != nil {
			return nil, fmt.Errorf("decode unresolved: %w", err)
		}
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("decode created_at: %w", err)
	}
	return &rec, nil
}
