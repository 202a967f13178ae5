package dto

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

func TestCreateTransactionRequest_ToDraft(t *testing.T) {
	amount := decimal.RequireFromString("700")

	tests := []struct {
		name        string
		request     *CreateTransactionRequest
		check       func(t *testing.T, d domain.TransactionDraft)
		expectError error
	}{
		{
			name: "cash credit with breakdown",
			request: &CreateTransactionRequest{
				Type:          "CASH_CREDIT",
				Amount:        &amount,
				Denominations: map[string]int{"d500": 1, "200": 1, "d100": 0},
				CustomerName:  "  Asha ",
				CompanyName:   "Acme",
			},
			check: func(t *testing.T, d domain.TransactionDraft) {
				if d.Type != domain.TransactionTypeCashCredit || !d.Amount.Equal(amount) {
					t.Fatalf("unexpected draft: %+v", d)
				}
				want := domain.DenominationCount{domain.D500: 1, domain.D200: 1}
				if len(d.Denominations) != 2 || d.Denominations[domain.D500] != 1 || d.Denominations[domain.D200] != 1 {
					t.Fatalf("expected %v, got %v", want, d.Denominations)
				}
				if d.CustomerName != "Asha" {
					t.Fatalf("expected trimmed customer name, got %q", d.CustomerName)
				}
			},
		},
		{
			name:    "display label and scope",
			request: &CreateTransactionRequest{Type: "UPI Debit", Amount: &amount, Scope: "Company"},
			check: func(t *testing.T, d domain.TransactionDraft) {
				if d.Type != domain.TransactionTypeUPIDebit || d.Scope != domain.ScopeCompany {
					t.Fatalf("unexpected draft: %+v", d)
				}
				if d.Denominations != nil {
					t.Fatalf("expected no denominations, got %v", d.Denominations)
				}
			},
		},
		{
			name:        "unknown type",
			request:     &CreateTransactionRequest{Type: "WIRE"},
			expectError: domain.ErrValidation,
		},
		{
			name:        "unknown scope",
			request:     &CreateTransactionRequest{Type: "UPI_CREDIT", Scope: "branch"},
			expectError: domain.ErrInvalidScope,
		},
		{
			name:        "unknown note",
			request:     &CreateTransactionRequest{Type: "CASH_CREDIT", Denominations: map[string]int{"d3": 1}},
			expectError: domain.ErrInvalidDenomination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToDraft()
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestUpdateTransactionRequest_ToPatch(t *testing.T) {
	company := " Acme "
	scope := ""
	req := &UpdateTransactionRequest{
		CompanyName:   &company,
		Scope:         &scope,
		Denominations: map[string]int{"d50": 2},
	}

	patch, err := req.ToPatch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if patch.CompanyName == nil || *patch.CompanyName != "Acme" {
		t.Fatalf("expected trimmed company, got %v", patch.CompanyName)
	}
	if patch.Scope == nil || *patch.Scope != domain.ScopeGlobal {
		t.Fatalf("expected empty scope to reset to global, got %v", patch.Scope)
	}
	if patch.Amount != nil || patch.CustomerName != nil {
		t.Fatalf("expected absent fields to stay nil: %+v", patch)
	}
	if patch.Denominations[domain.D50] != 2 {
		t.Fatalf("unexpected denominations: %v", patch.Denominations)
	}
}

func TestUpdateVaultRequest_ToPatch(t *testing.T) {
	upi := decimal.RequireFromString("10")
	req := &UpdateVaultRequest{
		Denominations: map[string]int{"d10": 0, "d2": -1},
		UPIBalance:    &upi,
	}

	patch, err := req.ToPatch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(patch.Denominations) != 2 || patch.Denominations[domain.D2] != -1 {
		t.Fatalf("expected counts to be kept as given, got %v", patch.Denominations)
	}
	if patch.UPIBalance == nil || !patch.UPIBalance.Equal(upi) {
		t.Fatalf("unexpected UPI balance: %v", patch.UPIBalance)
	}

	if _, err := (&UpdateVaultRequest{Denominations: map[string]int{"x": 1}}).ToPatch(); err == nil {
		t.Fatalf("expected error for unknown note")
	}
}

func TestParseFilter(t *testing.T) {
	q := url.Values{}
	q.Set("from", "2024-03-01")
	q.Set("to", "2024-03-02")
	q.Set("customer", " asha ")
	q.Add("type", "CASH_CREDIT,upi credit")
	q.Add("type", "ENTRY")
	q.Set("scope", "company")
	q.Set("limit", "5000")

	f, err := ParseFilter(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !f.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", f.From)
	}
	if !f.To.Equal(time.Date(2024, 3, 2, 23, 59, 59, 999999999, time.UTC)) {
		t.Fatalf("expected to to cover the whole day, got %v", f.To)
	}
	if f.Customer != "asha" || f.Scope != domain.ScopeCompany {
		t.Fatalf("unexpected filter: %+v", f)
	}
	want := []domain.TransactionType{
		domain.TransactionTypeCashCredit,
		domain.TransactionTypeUPICredit,
		domain.TransactionTypeCompanyAdjustmentDebit,
	}
	if len(f.Types) != len(want) {
		t.Fatalf("expected %v, got %v", want, f.Types)
	}
	for i := range want {
		if f.Types[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, f.Types)
		}
	}
	if f.Limit != 1000 {
		t.Fatalf("expected limit to be capped at 1000, got %d", f.Limit)
	}
}

func TestParseFilter_Errors(t *testing.T) {
	for _, raw := range []string{"from=yesterday", "type=WIRE", "scope=branch", "limit=-1", "limit=x"} {
		q, _ := url.ParseQuery(raw)
		if _, err := ParseFilter(q); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", raw, err)
		}
	}
}

func TestParseFilter_Empty(t *testing.T) {
	f, err := ParseFilter(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.From != nil || f.To != nil || f.Types != nil || f.Limit != 0 {
		t.Fatalf("expected zero filter, got %+v", f)
	}
}
