// Package sqlite stores the ledger state in a local SQLite file, for
// single-user installs that run without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iho/cashledger/internal/adapter/repository/codec"
	"github.com/iho/cashledger/internal/domain"
)

const upsertStateSQL = `INSERT INTO ledger_state (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// StateStore implements usecase.StateStore on a SQLite database.
type StateStore struct {
	db   *sql.DB
	keys codec.Keys
	now  func() time.Time
}

// NewStateStore opens (creating if needed) the database at dbPath and applies
// the schema.
func NewStateStore(dbPath, namespace string) (*StateStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &StateStore{
		db:   db,
		keys: codec.NewKeys(namespace),
		now:  time.Now,
	}, nil
}

// Close closes the database.
func (s *StateStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database is reachable.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load reads the blobs of the namespace.
func (s *StateStore) Load(ctx context.Context) (*domain.LedgerState, error) {
	keys := s.keys.All()

	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM ledger_state WHERE key IN (?, ?, ?)`,
		keys[0], keys[1], keys[2],
	)
	if err != nil {
		return nil, fmt.Errorf("query ledger state: %w", err)
	}
	defer rows.Close()

	blobs := make(map[string][]byte)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan ledger state: %w", err)
		}
		blobs[key] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ledger state: %w", err)
	}

	return codec.Decode(s.keys, blobs)
}

// Save writes every blob in one transaction.
func (s *StateStore) Save(ctx context.Context, state *domain.LedgerState) error {
	blobs, err := codec.Encode(s.keys, state)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := s.now().UTC().Format(time.RFC3339Nano)
	for _, key := range s.keys.All() {
		blob, ok := blobs[key]
		if !ok {
			if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_state WHERE key = ?`, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, upsertStateSQL, key, string(blob), now); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
