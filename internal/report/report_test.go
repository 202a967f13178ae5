package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cashledger/internal/domain"
)

func credit(typ domain.TransactionType, customer string, amount int64) *domain.Transaction {
	return &domain.Transaction{
		Type:    typ,
		Amount:  decimal.NewFromInt(amount),
		Details: domain.Details{CustomerName: customer, CompanyName: "ACME", Location: "Pune"},
	}
}

func TestBuildCompanyReport(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	txs := []*domain.Transaction{
		credit(domain.TransactionTypeCashCredit, "Zoya", 500),
		credit(domain.TransactionTypeUPICredit, "Arun", 200),
		credit(domain.TransactionTypeCashCredit, "Arun", 100),
		credit(domain.TransactionTypeCashDebit, "", 50),
		credit(domain.TransactionTypeUPIDebit, "", 25),
		credit(domain.TransactionTypeCompanyAdjustmentDebit, "", 10),
	}

	r := BuildCompanyReport(txs, "ACME", "Pune", Layout{}, now)

	assert.Equal(t, "ACME Pune", r.Title)
	assert.Equal(t, DefaultSlots, r.Slots)
	require.Len(t, r.Credits, 2)
	assert.Equal(t, "Arun", r.Credits[0].Name)
	assert.Equal(t, "Zoya", r.Credits[1].Name)

	arun := r.Credits[0]
	require.Len(t, arun.Cash, 1)
	require.Len(t, arun.UPI, 1)
	assert.True(t, arun.Cash[0].Equal(decimal.NewFromInt(100)))
	assert.True(t, arun.UPI[0].Equal(decimal.NewFromInt(200)))
	assert.True(t, arun.Total.Equal(decimal.NewFromInt(300)))

	assert.Equal(t, EntryRowLabel, r.Entry.Name)
	require.Len(t, r.Entry.Cash, 1)
	require.Len(t, r.Entry.UPI, 1)

	assert.True(t, r.TotalCredit.Equal(decimal.NewFromInt(800)))
	assert.True(t, r.TotalDebit.Equal(decimal.NewFromInt(85)))
	assert.True(t, r.ClosingBalance.Equal(decimal.NewFromInt(715)))
	assert.Equal(t, "Rupees Seven Hundred Fifteen Only", r.AmountInWords)
}

func TestBuildCompanyReportTruncatesSlots(t *testing.T) {
	txs := make([]*domain.Transaction, 0)
	for i := 0; i < 6; i++ {
		txs = append(txs, credit(domain.TransactionTypeCashCredit, "Arun", 10))
	}

	r := BuildCompanyReport(txs, "ACME", "", Layout{Slots: 3}, time.Now())

	require.Len(t, r.Credits, 1)
	assert.Len(t, r.Credits[0].Cash, 3)
	assert.True(t, r.Credits[0].Total.Equal(decimal.NewFromInt(60)), "row total keeps truncated entries")
	assert.True(t, r.TotalCredit.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, []string{"1st", "2nd", "3rd"}, SlotHeaders(r.Slots))
}

func TestBuildCompanyReportCustomerFallback(t *testing.T) {
	noNames := &domain.Transaction{Type: domain.TransactionTypeUPICredit, Amount: decimal.NewFromInt(5)}
	companyOnly := &domain.Transaction{
		Type:    domain.TransactionTypeUPICredit,
		Amount:  decimal.NewFromInt(7),
		Details: domain.Details{CompanyName: "ACME"},
	}

	r := BuildCompanyReport([]*domain.Transaction{noNames, companyOnly}, "ACME", "", Layout{}, time.Now())

	require.Len(t, r.Credits, 2)
	assert.Equal(t, "ACME", r.Credits[0].Name)
	assert.Equal(t, "N/A", r.Credits[1].Name)
}

func TestFileName(t *testing.T) {
	r := &CompanyReport{Title: "ACME Corp Pune", GeneratedAt: time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)}
	assert.Equal(t, "ACME_Corp_Pune_2024-03-01.pdf", FileName(r, "pdf"))
	assert.Equal(t, "ACME_Corp_Pune_2024-03-01.xlsx", FileName(r, ".xlsx"))
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 21: "21st", 112: "112th"}
	for n, want := range tests {
		assert.Equal(t, want, ordinal(n))
	}
}
