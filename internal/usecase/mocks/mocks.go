package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/cashledger/internal/domain"
)

// FakeStateStore is an in-memory StateStore that records every save.
type FakeStateStore struct {
	mu    sync.Mutex
	state *domain.LedgerState
	Saves int

	LoadFunc func(ctx context.Context) (*domain.LedgerState, error)
	SaveFunc func(ctx context.Context, state *domain.LedgerState) error
}

func NewFakeStateStore(initial *domain.LedgerState) *FakeStateStore {
	return &FakeStateStore{state: initial}
}

func (m *FakeStateStore) Load(ctx context.Context) (*domain.LedgerState, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil, domain.ErrStateNotFound
	}
	return m.state, nil
}

func (m *FakeStateStore) Save(ctx context.Context, state *domain.LedgerState) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, state)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.Saves++
	return nil
}

// State returns the last saved state.
func (m *FakeStateStore) State() *domain.LedgerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FakeIdentityProvider returns a fixed user.
type FakeIdentityProvider struct {
	User *domain.User
	Err  error
}

func NewFakeIdentityProvider(email string) *FakeIdentityProvider {
	return &FakeIdentityProvider{User: &domain.User{ID: "user-1", Email: email, Role: domain.RoleAdmin}}
}

func (m *FakeIdentityProvider) CurrentUser(ctx context.Context) (*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.User == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	return m.User, nil
}

// FakeIDGenerator returns id-1, id-2, ...
type FakeIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewFakeIDGenerator() *FakeIDGenerator {
	return &FakeIDGenerator{}
}

func (m *FakeIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%d", m.counter)
}

// FakeMetrics counts recorded events.
type FakeMetrics struct {
	mu          sync.Mutex
	Recorded    map[domain.TransactionType]int
	Updated     int
	Deleted     int
	VaultEvents int
	Imported    int
	ImportFails int
}

func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{Recorded: make(map[domain.TransactionType]int)}
}

func (m *FakeMetrics) TransactionRecorded(t domain.TransactionType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Recorded[t]++
}

func (m *FakeMetrics) TransactionsUpdated(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updated += n
}

func (m *FakeMetrics) TransactionsDeleted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted += n
}

func (m *FakeMetrics) VaultChanged(v domain.Vault) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.VaultEvents++
}

func (m *FakeMetrics) ImportFinished(records int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.ImportFails++
		return
	}
	m.Imported += records
}
