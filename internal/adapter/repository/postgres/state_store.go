package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cashledger/internal/adapter/repository/codec"
	"github.com/iho/cashledger/internal/domain"
)

const (
	selectStateSQL = `SELECT key, value FROM ledger_state WHERE key = ANY($1)`
	upsertStateSQL = `INSERT INTO ledger_state (key, value, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteStateSQL = `DELETE FROM ledger_state WHERE key = $1`
)

type pgxPool interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// StateStore implements usecase.StateStore on the ledger_state table. A save
// writes every blob in one serializable transaction.
type StateStore struct {
	pool    pgxPool
	keys    codec.Keys
	retrier *Retrier
	now     func() time.Time
}

// NewStateStore creates a new StateStore.
func NewStateStore(pool *pgxpool.Pool, namespace string, retrier *Retrier) *StateStore {
	return newStateStoreWithPool(pool, namespace, retrier)
}

func newStateStoreWithPool(pool pgxPool, namespace string, retrier *Retrier) *StateStore {
	return &StateStore{
		pool:    pool,
		keys:    codec.NewKeys(namespace),
		retrier: retrier,
		now:     time.Now,
	}
}

// Load reads the blobs of the namespace.
func (s *StateStore) Load(ctx context.Context) (*domain.LedgerState, error) {
	rows, err := s.pool.Query(ctx, selectStateSQL, s.keys.All())
	if err != nil {
		return nil, fmt.Errorf("query ledger state: %w", err)
	}
	defer rows.Close()

	blobs := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan ledger state: %w", err)
		}
		blobs[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read ledger state: %w", err)
	}

	return codec.Decode(s.keys, blobs)
}

// Save upserts every blob atomically, retrying on serialization failures.
func (s *StateStore) Save(ctx context.Context, state *domain.LedgerState) error {
	blobs, err := codec.Encode(s.keys, state)
	if err != nil {
		return err
	}

	return s.retrier.Retry(ctx, func() error {
		return s.save(ctx, blobs)
	})
}

func (s *StateStore) save(ctx context.Context, blobs map[string][]byte) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	now := s.now().UTC()
	for _, key := range s.keys.All() {
		blob, ok := blobs[key]
		if !ok {
			if _, err = tx.Exec(ctx, deleteStateSQL, key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			continue
		}
		if _, err = tx.Exec(ctx, upsertStateSQL, key, blob, now); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}
