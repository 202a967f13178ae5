package usecase

import "time"

const (
	// DefaultStorageTimeout bounds a single load or save against the state store.
	DefaultStorageTimeout = 10 * time.Second

	// TransactionIDPrefix is prepended to every generated transaction id.
	TransactionIDPrefix = "txn_"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
