package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/domain"
)

// LedgerOptions tunes a LedgerUseCase. Zero values pick the defaults.
type LedgerOptions struct {
	Policy  domain.VaultPolicy
	Clock   func() time.Time
	Logger  zerolog.Logger
	Metrics MetricsRecorder
}

// LedgerUseCase owns the transaction collection and the vault. It is the
// single writer: mutations are serialised and persisted before they become
// visible.
type LedgerUseCase struct {
	store    StateStore
	identity IdentityProvider
	idGen    IDGenerator
	policy   domain.VaultPolicy
	now      func() time.Time
	logger   zerolog.Logger
	metrics  MetricsRecorder

	mu      sync.RWMutex
	loaded  bool
	txs     []*domain.Transaction // newest first
	vault   domain.Vault
	opening domain.Vault
}

// NewLedgerUseCase creates a new LedgerUseCase. Load must be called before use.
func NewLedgerUseCase(
	store StateStore,
	identity IdentityProvider,
	idGen IDGenerator,
	opts LedgerOptions,
) *LedgerUseCase {
	if opts.Policy == "" {
		opts.Policy = domain.VaultPolicyPreserve
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}

	return &LedgerUseCase{
		store:    store,
		identity: identity,
		idGen:    idGen,
		policy:   opts.Policy,
		now:      opts.Clock,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		vault:    domain.NewVault(),
		opening:  domain.NewVault(),
	}
}

// Load reads the persisted state. A store without state starts an empty ledger.
func (uc *LedgerUseCase) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStorageTimeout)
	defer cancel()

	state, err := uc.store.Load(ctx)
	if err != nil && !errors.Is(err, domain.ErrStateNotFound) {
		return fmt.Errorf("load ledger state: %w", err)
	}
	if state == nil {
		state = &domain.LedgerState{Vault: domain.NewVault()}
	}

	vault := state.Vault.Clone()
	opening := domain.OpeningFor(vault, state.Transactions)
	if state.Opening != nil {
		opening = state.Opening.Clone()
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.txs = cloneTransactions(state.Transactions)
	uc.vault = vault
	uc.opening = opening
	uc.loaded = true

	uc.metrics.VaultChanged(vault)
	uc.logger.Info().
		Int("transactions", len(uc.txs)).
		Str("policy", string(uc.policy)).
		Msg("ledger loaded")

	return nil
}

// Ready reports whether Load has completed.
func (uc *LedgerUseCase) Ready() bool {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.loaded
}

// Policy returns the configured vault policy.
func (uc *LedgerUseCase) Policy() domain.VaultPolicy {
	return uc.policy
}

// AddTransaction records a single transaction.
func (uc *LedgerUseCase) AddTransaction(ctx context.Context, draft domain.TransactionDraft) (*domain.Transaction, error) {
	created, err := uc.AddTransactions(ctx, []domain.TransactionDraft{draft})
	if err != nil {
		return nil, err
	}

	return created[0], nil
}

// AddTransactions records a batch atomically. Every draft is validated before
// anything changes; the batch is prepended in order so the last draft ends up
// newest.
func (uc *LedgerUseCase) AddTransactions(ctx context.Context, drafts []domain.TransactionDraft) ([]*domain.Transaction, error) {
	user, err := uc.actingUser(ctx)
	if err != nil {
		return nil, err
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no transactions given", domain.ErrValidation)
	}

	validated := make([]domain.TransactionDraft, len(drafts))
	for i := range drafts {
		d := drafts[i]
		if err := d.Validate(); err != nil {
			if len(drafts) > 1 {
				return nil, fmt.Errorf("transaction %d: %w", i+1, err)
			}
			return nil, err
		}
		validated[i] = d
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.loaded {
		return nil, domain.ErrLedgerNotReady
	}

	at := uc.now().UTC()
	vault := uc.vault.Clone()
	created := make([]*domain.Transaction, len(validated))
	for i := range validated {
		tx := validated[i].NewTransaction(TransactionIDPrefix+uc.idGen.Generate(), at, user.Email)
		vault = vault.Apply(tx)
		created[i] = tx
	}

	txs := make([]*domain.Transaction, 0, len(uc.txs)+len(created))
	for i := len(created) - 1; i >= 0; i-- {
		txs = append(txs, created[i])
	}
	txs = append(txs, uc.txs...)

	if err := uc.commit(ctx, txs, vault, uc.opening); err != nil {
		return nil, err
	}

	for _, tx := range created {
		uc.metrics.TransactionRecorded(tx.Type)
		uc.logger.Debug().
			Str("id", tx.ID).
			Str("type", string(tx.Type)).
			Str("amount", tx.Amount.String()).
			Str("recorded_by", tx.RecordedBy).
			Msg("transaction recorded")
	}

	return cloneTransactions(created), nil
}

// UpdateTransaction merges the patch into the stored transaction. The id,
// type, timestamp and recorder are never changed.
func (uc *LedgerUseCase) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	if _, err := uc.actingUser(ctx); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.loaded {
		return nil, domain.ErrLedgerNotReady
	}

	idx := uc.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrTransactionNotFound
	}

	updated := patch.Apply(uc.txs[idx])
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	txs := make([]*domain.Transaction, len(uc.txs))
	copy(txs, uc.txs)
	txs[idx] = updated

	vault, opening := uc.afterHistoryChange(txs)
	if err := uc.commit(ctx, txs, vault, opening); err != nil {
		return nil, err
	}

	uc.metrics.TransactionsUpdated(1)
	uc.logger.Debug().Str("id", id).Msg("transaction updated")

	return updated.Clone(), nil
}

// DeleteTransactions removes every transaction whose id is listed. Unknown ids
// are ignored. It returns how many transactions were removed.
func (uc *LedgerUseCase) DeleteTransactions(ctx context.Context, ids []string) (int, error) {
	if _, err := uc.actingUser(ctx); err != nil {
		return 0, err
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.loaded {
		return 0, domain.ErrLedgerNotReady
	}

	txs := make([]*domain.Transaction, 0, len(uc.txs))
	for _, tx := range uc.txs {
		if _, ok := drop[tx.ID]; ok {
			continue
		}
		txs = append(txs, tx)
	}

	removed := len(uc.txs) - len(txs)
	if removed == 0 {
		return 0, nil
	}

	vault, opening := uc.afterHistoryChange(txs)
	if err := uc.commit(ctx, txs, vault, opening); err != nil {
		return 0, err
	}

	uc.metrics.TransactionsDeleted(removed)
	uc.logger.Info().Int("removed", removed).Msg("transactions deleted")

	return removed, nil
}

// UpdateVault overwrites vault fields from the patch. No transaction is
// recorded for the change.
func (uc *LedgerUseCase) UpdateVault(ctx context.Context, patch domain.VaultPatch) (domain.Vault, error) {
	user, err := uc.actingUser(ctx)
	if err != nil {
		return domain.Vault{}, err
	}

	if err := patch.Validate(); err != nil {
		return domain.Vault{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if !uc.loaded {
		return domain.Vault{}, domain.ErrLedgerNotReady
	}

	vault := patch.Merge(uc.vault)
	opening := domain.OpeningFor(vault, uc.txs)

	if err := uc.commit(ctx, uc.txs, vault, opening); err != nil {
		return domain.Vault{}, err
	}

	uc.logger.Info().
		Str("by", user.Email).
		Str("cash_total", vault.CashTotal().String()).
		Str("upi_balance", vault.UPIBalance.String()).
		Msg("vault overwritten")

	return vault.Clone(), nil
}

// Transactions returns a copy of the collection, newest first.
func (uc *LedgerUseCase) Transactions(ctx context.Context) ([]*domain.Transaction, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	if !uc.loaded {
		return nil, domain.ErrLedgerNotReady
	}

	return cloneTransactions(uc.txs), nil
}

// Transaction returns a copy of one transaction.
func (uc *LedgerUseCase) Transaction(ctx context.Context, id string) (*domain.Transaction, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	if !uc.loaded {
		return nil, domain.ErrLedgerNotReady
	}

	idx := uc.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrTransactionNotFound
	}

	return uc.txs[idx].Clone(), nil
}

// Vault returns a copy of the vault.
func (uc *LedgerUseCase) Vault(ctx context.Context) (domain.Vault, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	if !uc.loaded {
		return domain.Vault{}, domain.ErrLedgerNotReady
	}

	return uc.vault.Clone(), nil
}

// Snapshot returns copies of the collection and the vault taken together.
func (uc *LedgerUseCase) Snapshot(ctx context.Context) ([]*domain.Transaction, domain.Vault, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	if !uc.loaded {
		return nil, domain.Vault{}, domain.ErrLedgerNotReady
	}

	return cloneTransactions(uc.txs), uc.vault.Clone(), nil
}

func (uc *LedgerUseCase) actingUser(ctx context.Context) (*domain.User, error) {
	if uc.identity == nil {
		return nil, domain.ErrAuthenticationRequired
	}

	user, err := uc.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Email == "" {
		return nil, domain.ErrAuthenticationRequired
	}

	return user, nil
}

// afterHistoryChange returns the vault and opening balance after an edit or
// delete produced txs. Must be called with mu held.
func (uc *LedgerUseCase) afterHistoryChange(txs []*domain.Transaction) (domain.Vault, domain.Vault) {
	if uc.policy == domain.VaultPolicyRecompute {
		return domain.FoldVault(uc.opening, txs), uc.opening
	}
	return uc.vault, domain.OpeningFor(uc.vault, txs)
}

// commit persists the new state and swaps it in. Must be called with mu held.
func (uc *LedgerUseCase) commit(ctx context.Context, txs []*domain.Transaction, vault, opening domain.Vault) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStorageTimeout)
	defer cancel()

	state := &domain.LedgerState{
		Transactions: txs,
		Vault:        vault.Clone(),
	}
	o := opening.Clone()
	state.Opening = &o

	if err := uc.store.Save(ctx, state); err != nil {
		uc.logger.Error().Err(err).Msg("failed to persist ledger state")
		return fmt.Errorf("save ledger state: %w", err)
	}

	changed := !uc.vault.Equal(vault)

	uc.txs = txs
	uc.vault = state.Vault
	uc.opening = o

	if changed {
		uc.metrics.VaultChanged(uc.vault)
	}

	return nil
}

func (uc *LedgerUseCase) indexOf(id string) int {
	for i, tx := range uc.txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func cloneTransactions(txs []*domain.Transaction) []*domain.Transaction {
	out := make([]*domain.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = tx.Clone()
	}
	return out
}

type noopMetrics struct{}

func (noopMetrics) TransactionRecorded(domain.TransactionType) {}
func (noopMetrics) TransactionsUpdated(int)                    {}
func (noopMetrics) TransactionsDeleted(int)                    {}
func (noopMetrics) VaultChanged(domain.Vault)                  {}
func (noopMetrics) ImportFinished(int, error)                  {}
