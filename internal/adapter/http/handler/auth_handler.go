package handler

import (
	"net/http"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/usecase"
)

// AuthHandler exposes the acting identity.
type AuthHandler struct {
	identity usecase.IdentityProvider
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identity usecase.IdentityProvider) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// GetCurrentUser returns the current authenticated user
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.CurrentUser(r.Context())
	if err != nil {
		writeDomainError(w, "unauthorized", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}
