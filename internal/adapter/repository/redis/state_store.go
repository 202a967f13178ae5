package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/cashledger/internal/adapter/repository/codec"
	"github.com/iho/cashledger/internal/domain"
)

// StateStore implements usecase.StateStore using Redis. Each blob lives under
// its own key; saves go through MULTI/EXEC.
type StateStore struct {
	client *redis.Client
	keys   codec.Keys
}

// NewStateStore creates a new StateStore.
func NewStateStore(client *redis.Client, namespace string) *StateStore {
	return &StateStore{
		client: client,
		keys:   codec.NewKeys(namespace),
	}
}

// Load reads every blob in one round trip.
func (s *StateStore) Load(ctx context.Context) (*domain.LedgerState, error) {
	keys := s.keys.All()

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	blobs := make(map[string][]byte, len(keys))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		blobs[keys[i]] = []byte(str)
	}

	return codec.Decode(s.keys, blobs)
}

// Save writes every blob atomically.
func (s *StateStore) Save(ctx context.Context, state *domain.LedgerState) error {
	blobs, err := codec.Encode(s.keys, state)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range s.keys.All() {
			blob, ok := blobs[key]
			if !ok {
				pipe.Del(ctx, key)
				continue
			}
			pipe.Set(ctx, key, blob, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save state: %w", err)
	}

	return nil
}
