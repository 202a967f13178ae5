package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID               string          `json:"id"`
	Type             string          `json:"type"`
	TypeLabel        string          `json:"typeLabel"`
	Amount           decimal.Decimal `json:"amount"`
	Timestamp        time.Time       `json:"timestamp"`
	RecordedBy       string          `json:"recordedBy"`
	Scope            string          `json:"scope,omitempty"`
	Denominations    map[string]int  `json:"denominations,omitempty"`
	CustomerName     string          `json:"customerName,omitempty"`
	CompanyName      string          `json:"companyName,omitempty"`
	Location         string          `json:"location,omitempty"`
	AccountID        string          `json:"accountId,omitempty"`
	ATMID            string          `json:"atmId,omitempty"`
	PartnerBankUTR   string          `json:"partnerBankUTR,omitempty"`
	UPITransactionID string          `json:"upiTransactionId,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		Type:             string(t.Type),
		TypeLabel:        t.Type.Label(),
		Amount:           t.Amount,
		Timestamp:        t.Timestamp,
		RecordedBy:       t.RecordedBy,
		Scope:            string(t.Scope),
		Denominations:    countsToMap(t.Denominations, false),
		CustomerName:     t.CustomerName,
		CompanyName:      t.CompanyName,
		Location:         t.Location,
		AccountID:        t.AccountID,
		ATMID:            t.ATMID,
		PartnerBankUTR:   t.PartnerBankUTR,
		UPITransactionID: t.UPITransactionID,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// VaultResponse represents the vault in API responses.
type VaultResponse struct {
	Denominations map[string]int  `json:"denominations"`
	CashTotal     decimal.Decimal `json:"cashTotal"`
	UPIBalance    decimal.Decimal `json:"upiBalance"`
	Total         decimal.Decimal `json:"total"`
}

// VaultFromDomain converts the vault to a response.
func VaultFromDomain(v domain.Vault) *VaultResponse {
	cash := v.CashTotal()
	return &VaultResponse{
		Denominations: countsToMap(v.Denominations, true),
		CashTotal:     cash,
		UPIBalance:    v.UPIBalance,
		Total:         cash.Add(v.UPIBalance),
	}
}

// TotalsResponse represents a credit/debit aggregate.
type TotalsResponse struct {
	TotalCredit decimal.Decimal `json:"totalCredit"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	Net         decimal.Decimal `json:"net"`
	Count       int             `json:"count"`
}

// TotalsFromDomain converts totals to a response.
func TotalsFromDomain(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		TotalCredit: t.Credit,
		TotalDebit:  t.Debit,
		Net:         t.Net,
		Count:       t.Count,
	}
}

// SummaryResponse represents the dashboard summary.
type SummaryResponse struct {
	TotalsResponse
	Vault *VaultResponse `json:"vault"`
}

// CompanySummaryResponse represents one company/location group.
type CompanySummaryResponse struct {
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	DisplayName string `json:"displayName"`
	TotalsResponse
}

// CompanySummariesFromDomain converts company summaries to responses.
func CompanySummariesFromDomain(summaries []domain.CompanySummary) []*CompanySummaryResponse {
	result := make([]*CompanySummaryResponse, len(summaries))
	for i, s := range summaries {
		result[i] = &CompanySummaryResponse{
			Company:        s.Company,
			Location:       s.Location,
			DisplayName:    s.DisplayName(),
			TotalsResponse: TotalsFromDomain(s.Totals),
		}
	}
	return result
}

// CompanyTransactionsResponse represents the detail view of one company.
type CompanyTransactionsResponse struct {
	Company  string `json:"company"`
	Location string `json:"location,omitempty"`
	TotalsResponse
	Transactions []*TransactionResponse `json:"transactions"`
}

// DenominationResponse represents one row of the denomination table.
type DenominationResponse struct {
	Key   string `json:"key"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

// DenominationsFromDomain converts the denomination table.
func DenominationsFromDomain(infos []domain.DenominationInfo) []DenominationResponse {
	result := make([]DenominationResponse, len(infos))
	for i, info := range infos {
		result[i] = DenominationResponse{
			Key:   info.Value.Key(),
			Value: int(info.Value),
			Label: info.Label,
		}
	}
	return result
}

// DeleteTransactionsResponse reports how many transactions were removed.
type DeleteTransactionsResponse struct {
	Deleted int `json:"deleted"`
}

// ImportResponse reports the appended transactions.
type ImportResponse struct {
	Imported     int                    `json:"imported"`
	Transactions []*TransactionResponse `json:"transactions"`
}

// UserResponse represents the acting identity.
type UserResponse struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  domain.Role `json:"role"`
}

// UserFromDomain converts a user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// countsToMap keys counts by note key. full includes every note.
func countsToMap(c domain.DenominationCount, full bool) map[string]int {
	if len(c) == 0 && !full {
		return nil
	}
	if full {
		c = c.Full()
	}

	out := make(map[string]int, len(c))
	for d, n := range c {
		if !full && n == 0 {
			continue
		}
		out[d.Key()] = n
	}
	return out
}
