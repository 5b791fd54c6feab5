package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formtree/internal/ctxlog"
	"github.com/goliatone/go-formtree/pkg/tree"
)

// SQLite stores forms in a single SQLite database file.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*SQLite, error) {
	logger := ctxlog.FromContext(ctx)
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: create database dir: %w", err)
		}
	}
	// modernc.org/sqlite registers itself as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	s := &SQLite{db: db, logger: logger, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Debug("Opened form store", "path", path)
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forms (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			schema_json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_forms_name ON forms(name, id);`,
		`CREATE INDEX IF NOT EXISTS idx_forms_code ON forms(code);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// Close releases the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Form(ctx context.Context, id string) (tree.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT schema_json FROM forms WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return tree.Document{}, fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	if err != nil {
		return tree.Document{}, fmt.Errorf("store: load form %s: %w", id, err)
	}
	doc, err := tree.DecodeDocument([]byte(raw))
	if err != nil {
		return tree.Document{}, fmt.Errorf("store: decode form %s: %w", id, err)
	}
	doc.ID = id
	return doc, nil
}

func (s *SQLite) Save(ctx context.Context, doc tree.Document) (tree.Document, error) {
	doc, err := prepare(doc)
	if err != nil {
		return tree.Document{}, fmt.Errorf("store: save: %w", err)
	}
	raw, err := tree.EncodeDocument(doc)
	if err != nil {
		return tree.Document{}, fmt.Errorf("store: save: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forms (id, code, name, schema_json, updated_at_unixms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			schema_json = excluded.schema_json,
			updated_at_unixms = excluded.updated_at_unixms`,
		doc.ID, doc.Code, doc.Name, string(raw), s.now().UnixMilli(),
	)
	if err != nil {
		return tree.Document{}, fmt.Errorf("store: save form %s: %w", doc.ID, err)
	}
	s.logger.Debug("Saved form", "id", doc.ID, "name", doc.Name, "bytes", len(raw))
	return doc, nil
}

func (s *SQLite) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, updated_at_unixms FROM forms ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list forms: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum Summary
			ms  int64
		)
		if err := rows.Scan(&sum.ID, &sum.Code, &sum.Name, &ms); err != nil {
			return nil, fmt.Errorf("store: list forms: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list forms: %w", err)
	}
	return out, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete form %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete form %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrFormNotFound, id)
	}
	return nil
}
