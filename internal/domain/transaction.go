package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags a transaction and decides which payload it carries.
type TransactionType string

const (
	TransactionTypeCashCredit             TransactionType = "CASH_CREDIT"
	TransactionTypeCashDebit              TransactionType = "CASH_DEBIT"
	TransactionTypeUPICredit              TransactionType = "UPI_CREDIT"
	TransactionTypeUPIDebit               TransactionType = "UPI_DEBIT"
	TransactionTypeBankDeposit            TransactionType = "BANK_DEPOSIT"
	TransactionTypeATMWithdrawal          TransactionType = "ATM_WITHDRAWAL"
	TransactionTypeCompanyAdjustmentDebit TransactionType = "COMPANY_ADJUSTMENT_DEBIT"
)

var transactionTypeLabels = map[TransactionType]string{
	TransactionTypeCashCredit:             "Cash Credit",
	TransactionTypeCashDebit:              "Cash Debit",
	TransactionTypeUPICredit:              "UPI Credit",
	TransactionTypeUPIDebit:               "UPI Debit",
	TransactionTypeBankDeposit:            "Bank Deposit",
	TransactionTypeATMWithdrawal:          "ATM Withdrawal",
	TransactionTypeCompanyAdjustmentDebit: "ENTRY",
}

// TransactionTypes lists every type in display order.
var TransactionTypes = []TransactionType{
	TransactionTypeCashCredit,
	TransactionTypeCashDebit,
	TransactionTypeUPICredit,
	TransactionTypeUPIDebit,
	TransactionTypeBankDeposit,
	TransactionTypeATMWithdrawal,
	TransactionTypeCompanyAdjustmentDebit,
}

// IsValid checks if the type is a known transaction type.
func (t TransactionType) IsValid() bool {
	_, ok := transactionTypeLabels[t]
	return ok
}

// Label returns the display label.
func (t TransactionType) Label() string {
	if label, ok := transactionTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// IsCash reports whether the type carries a denomination breakdown.
func (t TransactionType) IsCash() bool {
	return t == TransactionTypeCashCredit || t == TransactionTypeCashDebit
}

// IsCredit classifies by substring: any type whose name contains CREDIT is a
// credit, everything else is a debit.
func (t TransactionType) IsCredit() bool {
	return strings.Contains(string(t), "CREDIT")
}

// Scope selects which ledger view a transaction belongs to.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeCompany Scope = "company"
)

// IsValid checks if the scope is known.
func (s Scope) IsValid() bool {
	return s == ScopeGlobal || s == ScopeCompany
}

// Details holds the optional descriptive and reference fields.
type Details struct {
	CustomerName     string `json:"customerName,omitempty"`
	CompanyName      string `json:"companyName,omitempty"`
	Location         string `json:"location,omitempty"`
	AccountID        string `json:"accountId,omitempty"`
	ATMID            string `json:"atmId,omitempty"`
	PartnerBankUTR   string `json:"partnerBankUTR,omitempty"`
	UPITransactionID string `json:"upiTransactionId,omitempty"`
}

// Transaction is a single ledger record.
type Transaction struct {
	ID            string            `json:"id"`
	Type          TransactionType   `json:"type"`
	Amount        decimal.Decimal   `json:"amount"`
	Timestamp     time.Time         `json:"timestamp"`
	RecordedBy    string            `json:"recordedBy"`
	Scope         Scope             `json:"scope,omitempty"`
	Denominations DenominationCount `json:"denominations,omitempty"`
	Details
}

// Validate checks the type-specific payload rules.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidTransactionType
	}

	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	if t.Scope != "" && !t.Scope.IsValid() {
		return ErrInvalidScope
	}

	if err := ValidateDetails(t.Details); err != nil {
		return err
	}

	if !t.Type.IsCash() {
		if len(t.Denominations) > 0 {
			return ErrUnexpectedDenominations
		}
		return nil
	}

	if t.Denominations.IsEmpty() {
		return ErrMissingDenominations
	}

	if err := t.Denominations.Validate(); err != nil {
		return err
	}

	if !t.Amount.Equal(t.Denominations.Total()) {
		return ErrDenominationMismatch
	}

	return nil
}

// Clone returns a deep copy.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Denominations = t.Denominations.Clone()
	return &c
}

// TransactionDraft is a transaction before the ledger assigns identity fields.
type TransactionDraft struct {
	Type          TransactionType
	Amount        decimal.Decimal
	Scope         Scope
	Denominations DenominationCount
	Details
}

// Normalize derives the amount of a cash draft from its breakdown when the
// amount was left at zero, and defaults the scope.
func (d *TransactionDraft) Normalize() {
	if d.Type.IsCash() && d.Amount.IsZero() {
		d.Amount = d.Denominations.Total()
	}
	if d.Scope == "" {
		d.Scope = ScopeGlobal
	}
	if len(d.Denominations) > 0 {
		d.Denominations = d.Denominations.Clone()
	}
}

// Validate normalises the draft and validates it as a transaction.
func (d *TransactionDraft) Validate() error {
	if d.Type == "" {
		return ErrInvalidTransactionType
	}
	d.Normalize()

	tx := d.toTransaction()
	return tx.Validate()
}

// NewTransaction builds a transaction from the draft and the ledger-assigned
// fields.
func (d *TransactionDraft) NewTransaction(id string, at time.Time, recordedBy string) *Transaction {
	tx := d.toTransaction()
	tx.ID = id
	tx.Timestamp = at
	tx.RecordedBy = recordedBy
	return tx
}

func (d *TransactionDraft) toTransaction() *Transaction {
	return &Transaction{
		Type:          d.Type,
		Amount:        d.Amount,
		Scope:         d.Scope,
		Denominations: d.Denominations.Clone(),
		Details:       d.Details,
	}
}

// TransactionPatch carries the mutable fields of an update. Nil means
// unchanged. ID, Type, Timestamp and RecordedBy cannot be patched.
type TransactionPatch struct {
	Amount           *decimal.Decimal
	Scope            *Scope
	Denominations    DenominationCount
	CustomerName     *string
	CompanyName      *string
	Location         *string
	AccountID        *string
	ATMID            *string
	PartnerBankUTR   *string
	UPITransactionID *string
}

// Apply returns a patched copy of tx. A cash transaction whose breakdown
// changes without an explicit amount gets the amount re-derived.
func (p TransactionPatch) Apply(tx *Transaction) *Transaction {
	out := tx.Clone()

	if p.Denominations != nil {
		out.Denominations = p.Denominations.Clone()
		if p.Amount == nil && out.Type.IsCash() {
			out.Amount = out.Denominations.Total()
		}
	}
	if p.Amount != nil {
		out.Amount = *p.Amount
	}
	if p.Scope != nil {
		out.Scope = *p.Scope
	}

	setString(&out.CustomerName, p.CustomerName)
	setString(&out.CompanyName, p.CompanyName)
	setString(&out.Location, p.Location)
	setString(&out.AccountID, p.AccountID)
	setString(&out.ATMID, p.ATMID)
	setString(&out.PartnerBankUTR, p.PartnerBankUTR)
	setString(&out.UPITransactionID, p.UPITransactionID)

	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
