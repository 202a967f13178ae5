package usecase

import (
	"context"
	"time"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/report"
)

// LedgerReader gives read access to a consistent ledger snapshot.
type LedgerReader interface {
	Snapshot(ctx context.Context) ([]*domain.Transaction, domain.Vault, error)
}

// Summary is the dashboard view: totals over every transaction plus the vault.
type Summary struct {
	Totals domain.Totals
	Vault  domain.Vault
}

// QueryUseCase serves the read-only views over the ledger.
type QueryUseCase struct {
	ledger      LedgerReader
	layout      report.Layout
	recentLimit int
	now         func() time.Time
}

// NewQueryUseCase creates a new QueryUseCase.
func NewQueryUseCase(ledger LedgerReader, layout report.Layout, recentLimit int) *QueryUseCase {
	if recentLimit <= 0 {
		recentLimit = domain.DefaultRecentSize
	}

	return &QueryUseCase{
		ledger:      ledger,
		layout:      layout,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

// Summary returns the global totals and the vault.
func (uc *QueryUseCase) Summary(ctx context.Context) (*Summary, error) {
	txs, vault, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &Summary{Totals: GlobalTotals(txs), Vault: vault}, nil
}

// Recent returns the n newest transactions, the configured default when n is
// not positive.
func (uc *QueryUseCase) Recent(ctx context.Context, n int) ([]*domain.Transaction, error) {
	txs, _, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	if n <= 0 {
		n = uc.recentLimit
	}

	return Recent(txs, n), nil
}

// List returns the transactions matching the filter, newest first.
func (uc *QueryUseCase) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	txs, _, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return Filter(txs, filter), nil
}

// Companies returns one summary per company and location.
func (uc *QueryUseCase) Companies(ctx context.Context) ([]domain.CompanySummary, error) {
	txs, _, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return CompanySummaries(txs), nil
}

// CompanyTransactions returns the transactions of one company view together
// with their totals.
func (uc *QueryUseCase) CompanyTransactions(ctx context.Context, company, location string) ([]*domain.Transaction, domain.Totals, error) {
	txs, _, err := uc.ledger.Snapshot(ctx)
	if err != nil {
		return nil, domain.Totals{}, err
	}

	matched := CompanyTransactions(txs, company, location)
	return matched, GlobalTotals(matched), nil
}

// CompanyReport builds the report grid of one company view. A non-positive
// slots keeps the configured layout.
func (uc *QueryUseCase) CompanyReport(ctx context.Context, company, location string, slots int) (*report.CompanyReport, error) {
	matched, _, err := uc.CompanyTransactions(ctx, company, location)
	if err != nil {
		return nil, err
	}

	layout := uc.layout
	if slots > 0 {
		layout.Slots = slots
	}

	return report.BuildCompanyReport(matched, company, location, layout, uc.now()), nil
}
