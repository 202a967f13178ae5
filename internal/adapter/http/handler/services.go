package handler

import (
	"context"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/report"
	"github.com/iho/cashledger/internal/usecase"
)

// LedgerService is the write side of the ledger.
type LedgerService interface {
	AddTransaction(ctx context.Context, draft domain.TransactionDraft) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	DeleteTransactions(ctx context.Context, ids []string) (int, error)
	UpdateVault(ctx context.Context, patch domain.VaultPatch) (domain.Vault, error)
	Transaction(ctx context.Context, id string) (*domain.Transaction, error)
	Vault(ctx context.Context) (domain.Vault, error)
}

// QueryService serves the read-only views.
type QueryService interface {
	Summary(ctx context.Context) (*usecase.Summary, error)
	Recent(ctx context.Context, n int) ([]*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	Companies(ctx context.Context) ([]domain.CompanySummary, error)
	CompanyTransactions(ctx context.Context, company, location string) ([]*domain.Transaction, domain.Totals, error)
	CompanyReport(ctx context.Context, company, location string, slots int) (*report.CompanyReport, error)
}

// ImportService appends parsed transactions.
type ImportService interface {
	Import(ctx context.Context, data string) ([]*domain.Transaction, error)
}
