// Package storage persists ledger revisions in a local SQLite
// database. Each save appends a full JSON snapshot of the document;
// reads return the newest revision. A bounded history is kept so a bad
// write never destroys the previous state.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/RiccardoZanardi/Calvenzano/internal/core"

	_ "modernc.org/sqlite"
)

// revisionsToKeep bounds how many ledger snapshots survive pruning.
const revisionsToKeep = 20

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadLedger implements backend.Backend.
func (r *SQLiteRepository) ReadLedger(ctx context.Context) (*core.Ledger, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM ledger_revisions ORDER BY id DESC LIMIT 1`,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return core.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read latest revision: %w", err)
	}

	var l core.Ledger
	if err := json.Unmarshal([]byte(payload), &l); err != nil {
		return nil, fmt.Errorf("decode ledger revision: %w", err)
	}
	l.Normalize()
	return &l, nil
}

// WriteLedger implements backend.Backend.
func (r *SQLiteRepository) WriteLedger(ctx context.Context, l *core.Ledger) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_revisions (payload, saved_at) VALUES (?, ?)`,
		string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM ledger_revisions
		 WHERE id <= (SELECT MAX(id) FROM ledger_revisions) - ?`,
		revisionsToKeep,
	); err != nil {
		return fmt.Errorf("prune revisions: %w", err)
	}

	id, _ := res.LastInsertId()
	slog.InfoContext(ctx, "Ledger revision saved",
		"revision", id,
		"members", len(l.Members),
		"categories", len(l.Categories))
	return nil
}
