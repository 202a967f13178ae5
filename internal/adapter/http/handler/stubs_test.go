package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/report"
	"github.com/iho/cashledger/internal/usecase"
)

type ledgerServiceStub struct {
	addFn         func(ctx context.Context, draft domain.TransactionDraft) (*domain.Transaction, error)
	updateFn      func(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error)
	deleteFn      func(ctx context.Context, ids []string) (int, error)
	updateVaultFn func(ctx context.Context, patch domain.VaultPatch) (domain.Vault, error)
	getFn         func(ctx context.Context, id string) (*domain.Transaction, error)
	vaultFn       func(ctx context.Context) (domain.Vault, error)
}

func (s *ledgerServiceStub) AddTransaction(ctx context.Context, draft domain.TransactionDraft) (*domain.Transaction, error) {
	return s.addFn(ctx, draft)
}

func (s *ledgerServiceStub) UpdateTransaction(ctx context.Context, id string, patch domain.TransactionPatch) (*domain.Transaction, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *ledgerServiceStub) DeleteTransactions(ctx context.Context, ids []string) (int, error) {
	return s.deleteFn(ctx, ids)
}

func (s *ledgerServiceStub) UpdateVault(ctx context.Context, patch domain.VaultPatch) (domain.Vault, error) {
	return s.updateVaultFn(ctx, patch)
}

func (s *ledgerServiceStub) Transaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *ledgerServiceStub) Vault(ctx context.Context) (domain.Vault, error) {
	return s.vaultFn(ctx)
}

type queryServiceStub struct {
	summaryFn   func(ctx context.Context) (*usecase.Summary, error)
	recentFn    func(ctx context.Context, n int) ([]*domain.Transaction, error)
	listFn      func(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	companiesFn func(ctx context.Context) ([]domain.CompanySummary, error)
	companyFn   func(ctx context.Context, company, location string) ([]*domain.Transaction, domain.Totals, error)
	reportFn    func(ctx context.Context, company, location string, slots int) (*report.CompanyReport, error)
}

func (s *queryServiceStub) Summary(ctx context.Context) (*usecase.Summary, error) {
	return s.summaryFn(ctx)
}

func (s *queryServiceStub) Recent(ctx context.Context, n int) ([]*domain.Transaction, error) {
	return s.recentFn(ctx, n)
}

func (s *queryServiceStub) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	return s.listFn(ctx, filter)
}

func (s *queryServiceStub) Companies(ctx context.Context) ([]domain.CompanySummary, error) {
	return s.companiesFn(ctx)
}

func (s *queryServiceStub) CompanyTransactions(ctx context.Context, company, location string) ([]*domain.Transaction, domain.Totals, error) {
	return s.companyFn(ctx, company, location)
}

func (s *queryServiceStub) CompanyReport(ctx context.Context, company, location string, slots int) (*report.CompanyReport, error) {
	return s.reportFn(ctx, company, location, slots)
}

type importServiceStub struct {
	importFn func(ctx context.Context, data string) ([]*domain.Transaction, error)
}

func (s *importServiceStub) Import(ctx context.Context, data string) ([]*domain.Transaction, error) {
	return s.importFn(ctx, data)
}

// withURLParams attaches chi route parameters to req.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
