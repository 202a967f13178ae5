package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
	"github.com/iho/cashledger/internal/usecase/mocks"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type ledgerFixture struct {
	uc       *usecase.LedgerUseCase
	store    *mocks.FakeStateStore
	identity *mocks.FakeIdentityProvider
	metrics  *mocks.FakeMetrics
}

func newLedger(t *testing.T, policy domain.VaultPolicy, initial *domain.LedgerState) *ledgerFixture {
	t.Helper()

	f := &ledgerFixture{
		store:    mocks.NewFakeStateStore(initial),
		identity: mocks.NewFakeIdentityProvider("operator@example.com"),
		metrics:  mocks.NewFakeMetrics(),
	}
	f.uc = usecase.NewLedgerUseCase(f.store, f.identity, mocks.NewFakeIDGenerator(), usecase.LedgerOptions{
		Policy:  policy,
		Clock:   func() time.Time { return fixedNow },
		Logger:  zerolog.Nop(),
		Metrics: f.metrics,
	})
	require.NoError(t, f.uc.Load(context.Background()))

	return f
}

func cashDraft(typ domain.TransactionType, c domain.DenominationCount) domain.TransactionDraft {
	return domain.TransactionDraft{Type: typ, Denominations: c}
}

func upiDraft(typ domain.TransactionType, amount int64) domain.TransactionDraft {
	return domain.TransactionDraft{Type: typ, Amount: decimal.NewFromInt(amount)}
}

func TestLedgerUseCase_AddTransaction(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	tx, err := f.uc.AddTransaction(ctx, domain.TransactionDraft{
		Type:          domain.TransactionTypeCashCredit,
		Amount:        decimal.NewFromInt(700),
		Denominations: domain.DenominationCount{domain.D500: 1, domain.D100: 2},
		Details:       domain.Details{CustomerName: "Ravi", CompanyName: "ACME"},
	})
	require.NoError(t, err)

	assert.Equal(t, "txn_id-1", tx.ID)
	assert.Equal(t, fixedNow, tx.Timestamp)
	assert.Equal(t, "operator@example.com", tx.RecordedBy)
	assert.Equal(t, domain.ScopeGlobal, tx.Scope)

	txs, err := f.uc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, tx.ID, txs[0].ID)

	assert.Equal(t, 1, f.store.Saves)
	assert.Len(t, f.store.State().Transactions, 1)
	assert.Equal(t, 1, f.metrics.Recorded[domain.TransactionTypeCashCredit])
}

func TestLedgerUseCase_AddTransactionRejectsMismatch(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	_, err := f.uc.AddTransaction(ctx, domain.TransactionDraft{
		Type:          domain.TransactionTypeCashCredit,
		Amount:        decimal.NewFromInt(650),
		Denominations: domain.DenominationCount{domain.D500: 1, domain.D100: 2},
	})
	require.ErrorIs(t, err, domain.ErrDenominationMismatch)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	txs, err := f.uc.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Equal(t, 0, f.store.Saves)
}

func TestLedgerUseCase_RejectsOversizedNoteCount(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	_, err := f.uc.AddTransaction(ctx, domain.TransactionDraft{
		Type:          domain.TransactionTypeCashCredit,
		Amount:        decimal.NewFromInt(1000),
		Denominations: domain.DenominationCount{domain.D500: 2 + (1 << 62)},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	vault, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, vault.Denominations[domain.D500])
	assert.Equal(t, 0, f.store.Saves)
}

func TestLedgerUseCase_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tx, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 10))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(tx.ID, usecase.TransactionIDPrefix))
		assert.False(t, seen[tx.ID], "duplicate id %s", tx.ID)
		seen[tx.ID] = true
	}

	txs, err := f.uc.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 50)
}

func TestLedgerUseCase_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	first, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 10))
	require.NoError(t, err)
	second, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPIDebit, 5))
	require.NoError(t, err)

	txs, err := f.uc.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, second.ID, txs[0].ID)
	assert.Equal(t, first.ID, txs[1].ID)
}

func TestLedgerUseCase_CashCreditVaultDelta(t *testing.T) {
	ctx := context.Background()
	opening := domain.NewVault()
	opening.Denominations[domain.D100] = 7
	opening.Denominations[domain.D500] = 3
	f := newLedger(t, domain.VaultPolicyPreserve, &domain.LedgerState{Vault: opening})

	_, err := f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashCredit, domain.DenominationCount{domain.D100: 2}))
	require.NoError(t, err)

	v, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	for _, info := range domain.Denominations {
		want := opening.Denominations[info.Value]
		if info.Value == domain.D100 {
			want += 2
		}
		assert.Equal(t, want, v.Denominations[info.Value], info.Value.Key())
	}
	assert.True(t, v.UPIBalance.Equal(opening.UPIBalance))
}

func TestLedgerUseCase_CashRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)
	before, err := f.uc.Vault(ctx)
	require.NoError(t, err)

	c := domain.DenominationCount{domain.D500: 2, domain.D20: 3, domain.D1: 4}
	_, err = f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashCredit, c))
	require.NoError(t, err)
	_, err = f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashDebit, c))
	require.NoError(t, err)

	after, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
}

func TestLedgerUseCase_UPICycle(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	_, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 1000))
	require.NoError(t, err)
	v, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, v.UPIBalance.Equal(decimal.NewFromInt(1000)))

	_, err = f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPIDebit, 400))
	require.NoError(t, err)
	v, err = f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, v.UPIBalance.Equal(decimal.NewFromInt(600)))
}

func TestLedgerUseCase_NonVaultTypes(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	for _, typ := range []domain.TransactionType{
		domain.TransactionTypeBankDeposit,
		domain.TransactionTypeATMWithdrawal,
		domain.TransactionTypeCompanyAdjustmentDebit,
	} {
		_, err := f.uc.AddTransaction(ctx, upiDraft(typ, 500))
		require.NoError(t, err)
	}

	v, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, v.Equal(domain.NewVault()))
}

func TestLedgerUseCase_DeletePreservesVault(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	tx, err := f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashCredit, domain.DenominationCount{domain.D200: 5}))
	require.NoError(t, err)
	before, err := f.uc.Vault(ctx)
	require.NoError(t, err)

	removed, err := f.uc.DeleteTransactions(ctx, []string{tx.ID, "txn_unknown"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	after, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
	assert.Equal(t, 5, after.Denominations[domain.D200])

	txs, err := f.uc.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.Equal(t, 1, f.metrics.Deleted)
}

func TestLedgerUseCase_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	_, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 10))
	require.NoError(t, err)
	saves := f.store.Saves

	removed, err := f.uc.DeleteTransactions(ctx, []string{"txn_missing"})
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Equal(t, saves, f.store.Saves)
}

func TestLedgerUseCase_DeleteRecomputesVault(t *testing.T) {
	ctx := context.Background()
	opening := domain.NewVault()
	opening.UPIBalance = decimal.NewFromInt(100)
	f := newLedger(t, domain.VaultPolicyRecompute, &domain.LedgerState{Vault: opening})

	credit, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 50))
	require.NoError(t, err)
	_, err = f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashCredit, domain.DenominationCount{domain.D10: 2}))
	require.NoError(t, err)

	_, err = f.uc.DeleteTransactions(ctx, []string{credit.ID})
	require.NoError(t, err)

	v, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, v.UPIBalance.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 2, v.Denominations[domain.D10])
}

func TestLedgerUseCase_UpdateTransaction(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	tx, err := f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashCredit, domain.DenominationCount{domain.D100: 1}))
	require.NoError(t, err)
	vaultBefore, err := f.uc.Vault(ctx)
	require.NoError(t, err)

	customer := "Meera"
	updated, err := f.uc.UpdateTransaction(ctx, tx.ID, domain.TransactionPatch{
		CustomerName:  &customer,
		Denominations: domain.DenominationCount{domain.D100: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, tx.ID, updated.ID)
	assert.Equal(t, tx.Type, updated.Type)
	assert.Equal(t, tx.Timestamp, updated.Timestamp)
	assert.Equal(t, tx.RecordedBy, updated.RecordedBy)
	assert.Equal(t, "Meera", updated.CustomerName)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(300)))

	vaultAfter, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, vaultBefore.Equal(vaultAfter), "preserve policy leaves the vault alone")

	stored, err := f.uc.Transaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera", stored.CustomerName)
	assert.Equal(t, 1, f.metrics.Updated)
}

func TestLedgerUseCase_UpdateRecomputesVault(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyRecompute, nil)

	tx, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 100))
	require.NoError(t, err)

	amount := decimal.NewFromInt(40)
	_, err = f.uc.UpdateTransaction(ctx, tx.ID, domain.TransactionPatch{Amount: &amount})
	require.NoError(t, err)

	v, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, v.UPIBalance.Equal(amount))
}

func TestLedgerUseCase_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	_, err := f.uc.UpdateTransaction(ctx, "txn_missing", domain.TransactionPatch{})
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)

	tx, err := f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashCredit, domain.DenominationCount{domain.D50: 2}))
	require.NoError(t, err)

	amount := decimal.NewFromInt(75)
	_, err = f.uc.UpdateTransaction(ctx, tx.ID, domain.TransactionPatch{Amount: &amount})
	require.ErrorIs(t, err, domain.ErrDenominationMismatch)

	stored, err := f.uc.Transaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(100)))
}

func TestLedgerUseCase_UpdateVault(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyRecompute, nil)

	_, err := f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashCredit, domain.DenominationCount{domain.D500: 2}))
	require.NoError(t, err)
	upiTx, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 300))
	require.NoError(t, err)

	upi := decimal.NewFromInt(1000)
	v, err := f.uc.UpdateVault(ctx, domain.VaultPatch{
		Denominations: domain.DenominationCount{domain.D100: 10},
		UPIBalance:    &upi,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, v.Denominations[domain.D100])
	assert.Equal(t, 0, v.Denominations[domain.D500])
	assert.Len(t, v.Denominations, len(domain.Denominations))

	txs, err := f.uc.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 2, "a vault edit records no transaction")

	// the manual edit holds through a later recompute
	_, err = f.uc.DeleteTransactions(ctx, []string{upiTx.ID})
	require.NoError(t, err)
	v, err = f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, v.UPIBalance.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, 10, v.Denominations[domain.D100])
}

func TestLedgerUseCase_RequiresIdentity(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)
	f.identity.User = nil

	_, err := f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 10))
	require.ErrorIs(t, err, domain.ErrAuthenticationRequired)

	_, err = f.uc.UpdateTransaction(ctx, "txn_1", domain.TransactionPatch{})
	require.ErrorIs(t, err, domain.ErrAuthenticationRequired)

	_, err = f.uc.DeleteTransactions(ctx, []string{"txn_1"})
	require.ErrorIs(t, err, domain.ErrAuthenticationRequired)

	_, err = f.uc.UpdateVault(ctx, domain.VaultPatch{})
	require.ErrorIs(t, err, domain.ErrAuthenticationRequired)

	f.identity.User = &domain.User{ID: "u"}
	_, err = f.uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 10))
	require.ErrorIs(t, err, domain.ErrAuthenticationRequired, "a user without email cannot record")
}

func TestLedgerUseCase_NotReady(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewLedgerUseCase(
		mocks.NewFakeStateStore(nil),
		mocks.NewFakeIdentityProvider("a@example.com"),
		mocks.NewFakeIDGenerator(),
		usecase.LedgerOptions{},
	)

	assert.False(t, uc.Ready())

	_, err := uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 10))
	require.ErrorIs(t, err, domain.ErrLedgerNotReady)
	_, err = uc.Transactions(ctx)
	require.ErrorIs(t, err, domain.ErrLedgerNotReady)
	_, err = uc.Vault(ctx)
	require.ErrorIs(t, err, domain.ErrLedgerNotReady)
	_, _, err = uc.Snapshot(ctx)
	require.ErrorIs(t, err, domain.ErrLedgerNotReady)

	require.NoError(t, uc.Load(ctx))
	assert.True(t, uc.Ready())
	assert.Equal(t, domain.VaultPolicyPreserve, uc.Policy())
}

func TestLedgerUseCase_SaveFailureLeavesState(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	store := mocks.NewMockStateStore(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)
	identity := mocks.NewMockIdentityProvider(ctrl)

	store.EXPECT().Load(gomock.Any()).Return(nil, domain.ErrStateNotFound)
	identity.EXPECT().CurrentUser(gomock.Any()).Return(&domain.User{Email: "a@example.com"}, nil)
	idGen.EXPECT().Generate().Return("01HX")
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	uc := usecase.NewLedgerUseCase(store, identity, idGen, usecase.LedgerOptions{})
	require.NoError(t, uc.Load(ctx))

	_, err := uc.AddTransaction(ctx, upiDraft(domain.TransactionTypeUPICredit, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	txs, err := uc.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	v, err := uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, v.UPIBalance.IsZero())
}

func TestLedgerUseCase_LoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStateStore(ctrl)
	store.EXPECT().Load(gomock.Any()).Return(nil, errors.New("connection refused"))

	uc := usecase.NewLedgerUseCase(store, nil, nil, usecase.LedgerOptions{})
	err := uc.Load(context.Background())
	require.Error(t, err)
	assert.False(t, uc.Ready())
}

func TestLedgerUseCase_LoadDerivesOpening(t *testing.T) {
	ctx := context.Background()

	// a stored vault with one UPI credit already applied
	vault := domain.NewVault()
	vault.UPIBalance = decimal.NewFromInt(250)
	state := &domain.LedgerState{
		Transactions: []*domain.Transaction{{
			ID:        "txn_old",
			Type:      domain.TransactionTypeUPICredit,
			Amount:    decimal.NewFromInt(50),
			Timestamp: fixedNow.Add(-time.Hour),
		}},
		Vault: vault,
	}
	f := newLedger(t, domain.VaultPolicyRecompute, state)

	_, err := f.uc.DeleteTransactions(ctx, []string{"txn_old"})
	require.NoError(t, err)

	v, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.True(t, v.UPIBalance.Equal(decimal.NewFromInt(200)))
	require.NotNil(t, f.store.State().Opening)
}

func TestLedgerUseCase_AddTransactionsBatch(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	created, err := f.uc.AddTransactions(ctx, []domain.TransactionDraft{
		upiDraft(domain.TransactionTypeUPICredit, 10),
		upiDraft(domain.TransactionTypeUPICredit, 20),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, 1, f.store.Saves)

	txs, err := f.uc.Transactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, created[1].ID, txs[0].ID)

	_, err = f.uc.AddTransactions(ctx, []domain.TransactionDraft{
		upiDraft(domain.TransactionTypeUPICredit, 10),
		upiDraft(domain.TransactionTypeUPICredit, 0),
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
	txs, err = f.uc.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestLedgerUseCase_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	f := newLedger(t, domain.VaultPolicyPreserve, nil)

	tx, err := f.uc.AddTransaction(ctx, cashDraft(domain.TransactionTypeCashCredit, domain.DenominationCount{domain.D5: 1}))
	require.NoError(t, err)
	tx.Denominations[domain.D5] = 99

	txs, err := f.uc.Transactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, txs[0].Denominations[domain.D5])

	v, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	v.Denominations[domain.D5] = 99
	again, err := f.uc.Vault(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Denominations[domain.D5])
}
