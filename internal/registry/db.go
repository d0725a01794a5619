// Package registry implements the Activity Registry & Sync-State Store
// (spec.md §4.1, §6): a single-writer SQLite-backed store keyed by
// activity fingerprint rather than any one platform's activity id.
// Grounded on the teacher repo's internal/store package for the overall
// shape (Open/Store/sentinel errors) but with hand-written SQL in place
// of the teacher's sqlc-generated query layer — sqlc codegen cannot run
// in this environment, so queries are issued directly against
// database/sql, matching the teacher's own internal/store/store_custom.go
// for the parts it already hand-wrote outside sqlc.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup finds no matching row.
var ErrNotFound = errors.New("registry: not found")

// Store is the single-writer handle onto the registry database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the SQLite database at path and
// runs pending migrations. Pass "" to use the default
// ~/.fitsync/registry.db location.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		var err error
		path, err = defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("registry: resolving default db path: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("registry: creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("registry: opening database: %w", err)
	}
	db.SetMaxOpenConns(1) // single-writer model per spec.md §4.1 and §5

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: enabling foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: enabling WAL mode: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func defaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".fitsync", "registry.db"), nil
}
