// Package importer holds the usecase.ImportParser implementations.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// ErrMissingTypeColumn is returned when the header has no type column.
var ErrMissingTypeColumn = errors.New("csv header has no type column")

// columnAliases maps normalised header names to record fields.
var columnAliases = map[string]string{
	"type":             "type",
	"transactiontype":  "type",
	"amount":           "amount",
	"scope":            "scope",
	"customer":         "customerName",
	"customername":     "customerName",
	"company":          "companyName",
	"companyname":      "companyName",
	"location":         "location",
	"accountid":        "accountId",
	"account":          "accountId",
	"atmid":            "atmId",
	"atm":              "atmId",
	"partnerbankutr":   "partnerBankUTR",
	"utr":              "partnerBankUTR",
	"upitransactionid": "upiTransactionId",
	"upiid":            "upiTransactionId",
}

// CSVParser reads comma-separated records with a header row. The header of
// the transaction export is accepted as is; columns it does not know, such as
// id or timestamp, are ignored.
type CSVParser struct{}

// NewCSVParser creates a CSV parser.
func NewCSVParser() *CSVParser {
	return &CSVParser{}
}

// Parse implements usecase.ImportParser.
func (p *CSVParser) Parse(ctx context.Context, data string) ([]usecase.ImportedRecord, error) {
	reader := csv.NewReader(strings.NewReader(strings.TrimSpace(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	fields, notes, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	records := make([]usecase.ImportedRecord, 0)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if blankRow(row) {
			continue
		}

		rec, err := buildRecord(row, fields, notes)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func mapHeader(header []string) (map[int]string, map[int]string, error) {
	fields := make(map[int]string)
	notes := make(map[int]string)
	hasType := false

	for i, name := range header {
		key := normaliseHeader(name)
		if field, ok := columnAliases[key]; ok {
			fields[i] = field
			hasType = hasType || field == "type"
			continue
		}
		if d, err := domain.ParseDenomination(strings.TrimPrefix(key, "₹")); err == nil {
			notes[i] = d.Key()
		}
	}

	if !hasType {
		return nil, nil, ErrMissingTypeColumn
	}
	return fields, notes, nil
}

func normaliseHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name)
}

func buildRecord(row []string, fields, notes map[int]string) (usecase.ImportedRecord, error) {
	var rec usecase.ImportedRecord

	for i, field := range fields {
		if i >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		v := value

		switch field {
		case "type":
			rec.Type = &v
		case "amount":
			rec.Amount = &v
		case "scope":
			rec.Scope = &v
		case "customerName":
			rec.CustomerName = &v
		case "companyName":
			rec.CompanyName = &v
		case "location":
			rec.Location = &v
		case "accountId":
			rec.AccountID = &v
		case "atmId":
			rec.ATMID = &v
		case "partnerBankUTR":
			rec.PartnerBankUTR = &v
		case "upiTransactionId":
			rec.UPITransactionID = &v
		}
	}

	for i, key := range notes {
		if i >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return rec, fmt.Errorf("%w: count %q for %s", domain.ErrInvalidDenomination, value, key)
		}
		if rec.Denominations == nil {
			rec.Denominations = make(map[string]int)
		}
		rec.Denominations[key] = n
	}

	return rec, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
