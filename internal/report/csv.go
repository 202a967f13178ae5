package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/iho/cashledger/internal/domain"
)

// TransactionColumns is the fixed CSV header of the transaction export.
func TransactionColumns() []string {
	cols := []string{
		"id", "type", "amount", "timestamp", "recordedBy", "scope",
		"customerName", "companyName", "location",
		"accountId", "atmId", "partnerBankUTR", "upiTransactionId",
	}
	for _, info := range domain.Denominations {
		cols = append(cols, info.Value.Key())
	}
	return cols
}

// WriteTransactionsCSV writes a header row and one row per transaction.
// Denomination columns are empty for non-cash transactions.
func WriteTransactionsCSV(w io.Writer, txs []*domain.Transaction) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(TransactionColumns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, tx := range txs {
		if err := writer.Write(transactionRecord(tx)); err != nil {
			return fmt.Errorf("write csv row %s: %w", tx.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func transactionRecord(tx *domain.Transaction) []string {
	record := []string{
		tx.ID,
		string(tx.Type),
		tx.Amount.String(),
		tx.Timestamp.UTC().Format(time.RFC3339),
		tx.RecordedBy,
		string(tx.Scope),
		tx.CustomerName,
		tx.CompanyName,
		tx.Location,
		tx.AccountID,
		tx.ATMID,
		tx.PartnerBankUTR,
		tx.UPITransactionID,
	}

	for _, info := range domain.Denominations {
		if !tx.Type.IsCash() {
			record = append(record, "")
			continue
		}
		record = append(record, strconv.Itoa(tx.Denominations.Count(info.Value)))
	}

	return record
}
