// Package codec maps the ledger state to the JSON blobs every storage backend
// keeps under namespaced keys.
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/iho/cashledger/internal/domain"
)

// DefaultNamespace prefixes the state keys when none is configured.
const DefaultNamespace = "denomination-depot"

// Keys names the three blobs of one ledger.
type Keys struct {
	Transactions string
	Vault        string
	Opening      string
}

// NewKeys returns the keys for namespace ns.
func NewKeys(ns string) Keys {
	if ns == "" {
		ns = DefaultNamespace
	}
	return Keys{
		Transactions: ns + "-transactions",
		Vault:        ns + "-vault",
		Opening:      ns + "-vault-opening",
	}
}

// All returns the keys in a fixed order.
func (k Keys) All() []string {
	return []string{k.Transactions, k.Vault, k.Opening}
}

// Encode serialises state into one blob per key.
func Encode(k Keys, state *domain.LedgerState) (map[string][]byte, error) {
	txs := state.Transactions
	if txs == nil {
		txs = []*domain.Transaction{}
	}

	txBlob, err := json.Marshal(txs)
	if err != nil {
		return nil, fmt.Errorf("encode transactions: %w", err)
	}

	vaultBlob, err := json.Marshal(state.Vault.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode vault: %w", err)
	}

	blobs := map[string][]byte{
		k.Transactions: txBlob,
		k.Vault:        vaultBlob,
	}

	if state.Opening != nil {
		openingBlob, err := json.Marshal(state.Opening.Clone())
		if err != nil {
			return nil, fmt.Errorf("encode opening vault: %w", err)
		}
		blobs[k.Opening] = openingBlob
	}

	return blobs, nil
}

// Decode rebuilds the state from blobs. Missing keys decode to their zero
// value; when neither transactions nor vault are present it returns
// domain.ErrStateNotFound.
func Decode(k Keys, blobs map[string][]byte) (*domain.LedgerState, error) {
	txBlob, hasTxs := blobs[k.Transactions]
	vaultBlob, hasVault := blobs[k.Vault]
	if !hasTxs && !hasVault {
		return nil, domain.ErrStateNotFound
	}

	state := &domain.LedgerState{
		Transactions: []*domain.Transaction{},
		Vault:        domain.NewVault(),
	}

	if hasTxs {
		if err := json.Unmarshal(txBlob, &state.Transactions); err != nil {
			return nil, fmt.Errorf("decode transactions: %w", err)
		}
	}

	if hasVault {
		if err := json.Unmarshal(vaultBlob, &state.Vault); err != nil {
			return nil, fmt.Errorf("decode vault: %w", err)
		}
		state.Vault = state.Vault.Clone()
	}

	if openingBlob, ok := blobs[k.Opening]; ok {
		var opening domain.Vault
		if err := json.Unmarshal(openingBlob, &opening); err != nil {
			return nil, fmt.Errorf("decode opening vault: %w", err)
		}
		opening = opening.Clone()
		state.Opening = &opening
	}

	return state, nil
}
