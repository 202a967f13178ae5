package usecase

import (
	"context"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// StateStore persists the ledger state as a whole.
type StateStore interface {
	// Load returns domain.ErrStateNotFound when nothing has been saved yet.
	Load(ctx context.Context) (*domain.LedgerState, error)
	// Save replaces the stored state atomically.
	Save(ctx context.Context, state *domain.LedgerState) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdentityProvider resolves the acting user of a request.
type IdentityProvider interface {
	// CurrentUser returns domain.ErrAuthenticationRequired when no user is
	// signed in.
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// ImportedRecord is one transaction as returned by an import parser. Every
// field is optional.
type ImportedRecord struct {
	Type             *string
	Amount           *string
	Scope            *string
	Denominations    map[string]int
	CustomerName     *string
	CompanyName      *string
	Location         *string
	AccountID        *string
	ATMID            *string
	PartnerBankUTR   *string
	UPITransactionID *string
}

// ImportParser turns free-form input into transaction records.
type ImportParser interface {
	Parse(ctx context.Context, data string) ([]ImportedRecord, error)
}

// MetricsRecorder receives ledger events. Implementations must be safe for
// concurrent use.
type MetricsRecorder interface {
	TransactionRecorded(t domain.TransactionType)
	TransactionsUpdated(n int)
	TransactionsDeleted(n int)
	VaultChanged(v domain.Vault)
	ImportFinished(records int, err error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
