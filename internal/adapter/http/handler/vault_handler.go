package handler

import (
	"net/http"

	"github.com/iho/cashledger/internal/adapter/http/dto"
)

// VaultHandler handles vault requests.
type VaultHandler struct {
	ledger LedgerService
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(ledger LedgerService) *VaultHandler {
	return &VaultHandler{ledger: ledger}
}

// Get returns the vault with its totals.
func (h *VaultHandler) Get(w http.ResponseWriter, r *http.Request) {
	vault, err := h.ledger.Vault(r.Context())
	if err != nil {
		writeDomainError(w, "failed to get vault", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VaultFromDomain(vault))
}

// Update overwrites vault balances.
func (h *VaultHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateVaultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		writeDomainError(w, "invalid vault update", err)
		return
	}

	vault, err := h.ledger.UpdateVault(r.Context(), patch)
	if err != nil {
		writeDomainError(w, "failed to update vault", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VaultFromDomain(vault))
}
