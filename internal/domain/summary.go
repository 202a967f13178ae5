package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnnamedCompany is the group key for transactions without a company.
const UnnamedCompany = "NA"

// Totals is a credit/debit aggregate.
type Totals struct {
	Credit decimal.Decimal
	Debit  decimal.Decimal
	Net    decimal.Decimal
	Count  int
}

// Add folds one transaction into the totals.
func (t *Totals) Add(tx *Transaction) {
	if tx.Type.IsCredit() {
		t.Credit = t.Credit.Add(tx.Amount)
	} else {
		t.Debit = t.Debit.Add(tx.Amount)
	}
	t.Net = t.Credit.Sub(t.Debit)
	t.Count++
}

// CompanySummary aggregates one (company, location) group.
type CompanySummary struct {
	Company  string
	Location string
	Totals
}

// DisplayName is the company followed by the location, trimmed.
func (s CompanySummary) DisplayName() string {
	return CompanyDisplayName(s.Company, s.Location)
}

// CompanyDisplayName joins company and location for display and sorting.
func CompanyDisplayName(company, location string) string {
	name := company
	if location != "" {
		name += " " + location
	}
	return strings.TrimSpace(name)
}

// TransactionFilter narrows a transaction listing. Zero values match all.
type TransactionFilter struct {
	From     *time.Time
	To       *time.Time
	Customer string
	Company  string
	Types    []TransactionType
	Scope    Scope
	Limit    int
}
