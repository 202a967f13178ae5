package domain

import (
	"errors"
)

// User is the acting identity resolved from the session.
type User struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin has full access, including deletes and manual vault edits
	RoleAdmin Role = "admin"

	// RoleOperator can record and edit transactions
	RoleOperator Role = "operator"

	// RoleViewer can only view the ledger
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleViewer:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanRecord checks if the role can add or edit transactions
func (r Role) CanRecord() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanDelete checks if the role can delete transactions
func (r Role) CanDelete() bool {
	return r == RoleAdmin
}

// CanEditVault checks if the role can overwrite vault balances
func (r Role) CanEditVault() bool {
	return r == RoleAdmin
}

// Authentication errors
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidToken           = errors.New("invalid token")
	ErrExpiredToken           = errors.New("token has expired")
	ErrInsufficientRole       = errors.New("insufficient role for this operation")
)
