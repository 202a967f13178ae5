package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)
	m.TransactionRecorded(domain.TransactionTypeCashCredit)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestLedgerEvents(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.TransactionRecorded(domain.TransactionTypeUPICredit)
	m.TransactionRecorded(domain.TransactionTypeUPICredit)
	m.TransactionsUpdated(1)
	m.TransactionsDeleted(3)

	if got := testutil.ToFloat64(m.TransactionsRecordedTotal.WithLabelValues("UPI_CREDIT")); got != 2 {
		t.Fatalf("expected 2 recorded UPI credits, got %v", got)
	}
	if got := testutil.ToFloat64(m.TransactionsUpdatedTotal); got != 1 {
		t.Fatalf("expected 1 update, got %v", got)
	}
	if got := testutil.ToFloat64(m.TransactionsDeletedTotal); got != 3 {
		t.Fatalf("expected 3 deletes, got %v", got)
	}
}

func TestVaultChanged(t *testing.T) {
	m := New(prometheus.NewRegistry())

	v := domain.NewVault()
	v.Denominations[domain.D500] = 2
	v.Denominations[domain.D10] = 3
	v.UPIBalance = decimal.RequireFromString("120.5")
	m.VaultChanged(v)

	if got := testutil.ToFloat64(m.VaultNotes.WithLabelValues("d500")); got != 2 {
		t.Fatalf("expected 2 d500 notes, got %v", got)
	}
	if got := testutil.ToFloat64(m.VaultCashTotal); got != 1030 {
		t.Fatalf("expected cash total 1030, got %v", got)
	}
	if got := testutil.ToFloat64(m.VaultUPIBalance); got != 120.5 {
		t.Fatalf("expected UPI balance 120.5, got %v", got)
	}
}

func TestImportFinished(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ImportFinished(4, nil)
	m.ImportFinished(0, errors.New("boom"))

	if got := testutil.ToFloat64(m.Imports.WithLabelValues("succeeded")); got != 1 {
		t.Fatalf("expected 1 successful import, got %v", got)
	}
	if got := testutil.ToFloat64(m.Imports.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected 1 failed import, got %v", got)
	}
	if got := testutil.ToFloat64(m.ImportedRecords); got != 4 {
		t.Fatalf("expected 4 imported records, got %v", got)
	}
}
