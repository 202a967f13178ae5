// Package memory keeps the ledger state in process memory. State is encoded
// the same way as in the durable backends so a save never aliases the
// caller's values.
package memory

import (
	"context"
	"sync"

	"github.com/iho/cashledger/internal/adapter/repository/codec"
	"github.com/iho/cashledger/internal/domain"
)

// StateStore implements usecase.StateStore in memory.
type StateStore struct {
	mu    sync.RWMutex
	keys  codec.Keys
	blobs map[string][]byte
}

// NewStateStore creates an empty StateStore.
func NewStateStore(namespace string) *StateStore {
	return &StateStore{
		keys:  codec.NewKeys(namespace),
		blobs: make(map[string][]byte),
	}
}

// Load returns the last saved state.
func (s *StateStore) Load(ctx context.Context) (*domain.LedgerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return codec.Decode(s.keys, s.blobs)
}

// Save replaces the stored state.
func (s *StateStore) Save(ctx context.Context, state *domain.LedgerState) error {
	blobs, err := codec.Encode(s.keys, state)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs = blobs
	return nil
}
