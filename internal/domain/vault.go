package domain

import (
	"github.com/shopspring/decimal"
)

// Vault is the cash on hand by denomination plus the UPI balance.
type Vault struct {
	Denominations DenominationCount `json:"denominations"`
	UPIBalance    decimal.Decimal   `json:"upiBalance"`
}

// NewVault returns an empty vault with every denomination present.
func NewVault() Vault {
	return Vault{
		Denominations: DenominationCount{}.Full(),
		UPIBalance:    decimal.Zero,
	}
}

// Clone returns a deep copy with every denomination present.
func (v Vault) Clone() Vault {
	return Vault{
		Denominations: v.Denominations.Full(),
		UPIBalance:    v.UPIBalance,
	}
}

// CashTotal returns the value of all notes in the vault.
func (v Vault) CashTotal() decimal.Decimal {
	return v.Denominations.Total()
}

// Apply returns the vault after the creation-time delta of tx. Cash credits
// and debits move the listed note counts, UPI credits and debits move the
// UPI balance, and every other type leaves the vault unchanged.
// Counts may go negative.
func (v Vault) Apply(tx *Transaction) Vault {
	out := v.Clone()

	switch tx.Type {
	case TransactionTypeCashCredit:
		for d, n := range tx.Denominations {
			out.Denominations[d] += n
		}
	case TransactionTypeCashDebit:
		for d, n := range tx.Denominations {
			out.Denominations[d] -= n
		}
	case TransactionTypeUPICredit:
		out.UPIBalance = out.UPIBalance.Add(tx.Amount)
	case TransactionTypeUPIDebit:
		out.UPIBalance = out.UPIBalance.Sub(tx.Amount)
	}

	return out
}

// Sub returns v minus o, note by note.
func (v Vault) Sub(o Vault) Vault {
	out := v.Clone()
	for d, n := range o.Denominations {
		out.Denominations[d] -= n
	}
	out.UPIBalance = out.UPIBalance.Sub(o.UPIBalance)
	return out
}

// Add returns v plus o, note by note.
func (v Vault) Add(o Vault) Vault {
	out := v.Clone()
	for d, n := range o.Denominations {
		out.Denominations[d] += n
	}
	out.UPIBalance = out.UPIBalance.Add(o.UPIBalance)
	return out
}

// Equal reports whether both vaults hold the same counts and balance.
func (v Vault) Equal(o Vault) bool {
	a, b := v.Denominations.Full(), o.Denominations.Full()
	for d, n := range a {
		if b[d] != n {
			return false
		}
	}
	return v.UPIBalance.Equal(o.UPIBalance)
}

// OpeningFor returns the opening balance that, folded with txs, yields v.
func OpeningFor(v Vault, txs []*Transaction) Vault {
	return v.Sub(FoldVault(NewVault(), txs))
}

// FoldVault applies every transaction to opening in creation order. txs is
// expected newest first, the ledger's canonical order.
func FoldVault(opening Vault, txs []*Transaction) Vault {
	out := opening.Clone()
	for i := len(txs) - 1; i >= 0; i-- {
		out = out.Apply(txs[i])
	}
	return out
}

// VaultPatch is a partial vault. A non-nil Denominations replaces the whole
// count.
type VaultPatch struct {
	Denominations DenominationCount
	UPIBalance    *decimal.Decimal
}

// Merge returns v with the patch shallow-merged in.
func (p VaultPatch) Merge(v Vault) Vault {
	out := v.Clone()
	if p.Denominations != nil {
		out.Denominations = p.Denominations.Full()
	}
	if p.UPIBalance != nil {
		out.UPIBalance = *p.UPIBalance
	}
	return out
}

// Validate checks the patched denominations use supported notes.
func (p VaultPatch) Validate() error {
	for d := range p.Denominations {
		if !d.IsValid() {
			return ErrInvalidDenomination
		}
	}
	return nil
}

// VaultPolicy decides what happens to the vault when history changes.
type VaultPolicy string

const (
	// VaultPolicyPreserve applies deltas only on creation; edits and deletes
	// leave the vault as it is.
	VaultPolicyPreserve VaultPolicy = "preserve"
	// VaultPolicyRecompute rebuilds the vault from the opening balance and the
	// surviving transactions after every edit or delete.
	VaultPolicyRecompute VaultPolicy = "recompute"
)

// IsValid checks if the policy is known.
func (p VaultPolicy) IsValid() bool {
	return p == VaultPolicyPreserve || p == VaultPolicyRecompute
}

// LedgerState is the persisted state of the ledger.
type LedgerState struct {
	Transactions []*Transaction
	Vault        Vault
	// Opening is the base the recompute policy folds transactions onto. Nil
	// when the store holds none.
	Opening *Vault
}
