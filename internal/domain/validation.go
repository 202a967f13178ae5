package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxTextLength     = 255
	MaxAmount         = "1000000000000" // 1 trillion
	MinAmount         = "0.01"
	MaxImportRecords  = 5000
	DefaultRecentSize = 5
)

// ValidateAmount validates a transaction amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrInvalidAmount, MinAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxAmount)
	}

	return nil
}

// ValidateDetails checks the free-text fields stay within limits.
func ValidateDetails(d Details) error {
	fields := map[string]string{
		"customerName":     d.CustomerName,
		"companyName":      d.CompanyName,
		"location":         d.Location,
		"accountId":        d.AccountID,
		"atmId":            d.ATMID,
		"partnerBankUTR":   d.PartnerBankUTR,
		"upiTransactionId": d.UPITransactionID,
	}

	for name, value := range fields {
		if utf8.RuneCountInString(value) > MaxTextLength {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, name, MaxTextLength)
		}
	}

	return nil
}

// ParseTransactionType parses a type name case-insensitively. Display labels
// such as "Cash Credit" are accepted too.
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidTransactionType
	}

	candidate := TransactionType(strings.ToUpper(strings.ReplaceAll(s, " ", "_")))
	if candidate.IsValid() {
		return candidate, nil
	}

	for t, label := range transactionTypeLabels {
		if strings.EqualFold(label, s) {
			return t, nil
		}
	}

	return "", fmt.Errorf("%w: unknown type %q", ErrInvalidTransactionType, s)
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
