package dto

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

const dateLayout = "2006-01-02"

// CreateTransactionRequest represents a request to record a transaction.
// Amount may be omitted for cash transactions; it is then derived from the
// breakdown.
type CreateTransactionRequest struct {
	Type             string           `json:"type"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Scope            string           `json:"scope,omitempty"`
	Denominations    map[string]int   `json:"denominations,omitempty"`
	CustomerName     string           `json:"customerName,omitempty"`
	CompanyName      string           `json:"companyName,omitempty"`
	Location         string           `json:"location,omitempty"`
	AccountID        string           `json:"accountId,omitempty"`
	ATMID            string           `json:"atmId,omitempty"`
	PartnerBankUTR   string           `json:"partnerBankUTR,omitempty"`
	UPITransactionID string           `json:"upiTransactionId,omitempty"`
}

// ToDraft converts to a ledger draft.
func (r *CreateTransactionRequest) ToDraft() (domain.TransactionDraft, error) {
	var draft domain.TransactionDraft

	t, err := domain.ParseTransactionType(r.Type)
	if err != nil {
		return draft, err
	}
	draft.Type = t

	if r.Amount != nil {
		draft.Amount = *r.Amount
	}

	scope, err := parseScope(r.Scope)
	if err != nil {
		return draft, err
	}
	draft.Scope = scope

	counts, err := ParseDenominations(r.Denominations)
	if err != nil {
		return draft, err
	}
	if len(counts) > 0 {
		draft.Denominations = counts
	}

	draft.Details = domain.Details{
		CustomerName:     strings.TrimSpace(r.CustomerName),
		CompanyName:      strings.TrimSpace(r.CompanyName),
		Location:         strings.TrimSpace(r.Location),
		AccountID:        strings.TrimSpace(r.AccountID),
		ATMID:            strings.TrimSpace(r.ATMID),
		PartnerBankUTR:   strings.TrimSpace(r.PartnerBankUTR),
		UPITransactionID: strings.TrimSpace(r.UPITransactionID),
	}

	return draft, nil
}

// UpdateTransactionRequest represents a partial edit. Absent fields are left
// unchanged.
type UpdateTransactionRequest struct {
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Scope            *string          `json:"scope,omitempty"`
	Denominations    map[string]int   `json:"denominations,omitempty"`
	CustomerName     *string          `json:"customerName,omitempty"`
	CompanyName      *string          `json:"companyName,omitempty"`
	Location         *string          `json:"location,omitempty"`
	AccountID        *string          `json:"accountId,omitempty"`
	ATMID            *string          `json:"atmId,omitempty"`
	PartnerBankUTR   *string          `json:"partnerBankUTR,omitempty"`
	UPITransactionID *string          `json:"upiTransactionId,omitempty"`
}

// ToPatch converts to a ledger patch.
func (r *UpdateTransactionRequest) ToPatch() (domain.TransactionPatch, error) {
	patch := domain.TransactionPatch{
		Amount:           r.Amount,
		CustomerName:     trimmed(r.CustomerName),
		CompanyName:      trimmed(r.CompanyName),
		Location:         trimmed(r.Location),
		AccountID:        trimmed(r.AccountID),
		ATMID:            trimmed(r.ATMID),
		PartnerBankUTR:   trimmed(r.PartnerBankUTR),
		UPITransactionID: trimmed(r.UPITransactionID),
	}

	if r.Scope != nil {
		scope, err := parseScope(*r.Scope)
		if err != nil {
			return patch, err
		}
		if scope == "" {
			scope = domain.ScopeGlobal
		}
		patch.Scope = &scope
	}

	if r.Denominations != nil {
		counts, err := ParseDenominations(r.Denominations)
		if err != nil {
			return patch, err
		}
		patch.Denominations = counts
	}

	return patch, nil
}

// DeleteTransactionsRequest represents a batch delete.
type DeleteTransactionsRequest struct {
	IDs []string `json:"ids"`
}

// UpdateVaultRequest represents a manual vault edit. A present denominations
// object replaces every count; notes it omits become zero.
type UpdateVaultRequest struct {
	Denominations map[string]int   `json:"denominations,omitempty"`
	UPIBalance    *decimal.Decimal `json:"upiBalance,omitempty"`
}

// ToPatch converts to a vault patch.
func (r *UpdateVaultRequest) ToPatch() (domain.VaultPatch, error) {
	patch := domain.VaultPatch{UPIBalance: r.UPIBalance}

	if r.Denominations != nil {
		counts := make(domain.DenominationCount, len(r.Denominations))
		for key, n := range r.Denominations {
			d, err := domain.ParseDenomination(key)
			if err != nil {
				return patch, err
			}
			counts[d] = n
		}
		patch.Denominations = counts
	}

	return patch, nil
}

// ImportRequest carries the raw text to import.
type ImportRequest struct {
	FileData string `json:"fileData"`
}

// ParseDenominations converts "d500"/"500" keyed counts, dropping zeros.
func ParseDenominations(in map[string]int) (domain.DenominationCount, error) {
	if in == nil {
		return nil, nil
	}

	counts := make(domain.DenominationCount, len(in))
	for key, n := range in {
		d, err := domain.ParseDenomination(key)
		if err != nil {
			return nil, err
		}
		if n != 0 {
			counts[d] += n
		}
	}
	return counts, nil
}

// ParseFilter reads a transaction filter from query parameters: from, to
// (RFC 3339 or YYYY-MM-DD, inclusive), customer, company, type (repeated or
// comma separated), scope and limit.
func ParseFilter(q url.Values) (domain.TransactionFilter, error) {
	var f domain.TransactionFilter

	if v := q.Get("from"); v != "" {
		from, err := parseTime(v, false)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseTime(v, true)
		if err != nil {
			return f, err
		}
		f.To = &to
	}

	f.Customer = strings.TrimSpace(q.Get("customer"))
	f.Company = strings.TrimSpace(q.Get("company"))

	for _, raw := range q["type"] {
		for _, name := range strings.Split(raw, ",") {
			if strings.TrimSpace(name) == "" {
				continue
			}
			t, err := domain.ParseTransactionType(name)
			if err != nil {
				return f, err
			}
			f.Types = append(f.Types, t)
		}
	}

	scope, err := parseScope(q.Get("scope"))
	if err != nil {
		return f, err
	}
	f.Scope = scope

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return f, fmt.Errorf("%w: invalid limit %q", domain.ErrValidation, v)
		}
		if limit > 0 {
			f.Limit, _, _ = domain.ValidatePagination(limit, 0)
		}
	}

	return f, nil
}

func parseTime(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}

	day, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, v)
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return day, nil
}

func parseScope(v string) (domain.Scope, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", nil
	}

	scope := domain.Scope(v)
	if !scope.IsValid() {
		return "", domain.ErrInvalidScope
	}
	return scope, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
