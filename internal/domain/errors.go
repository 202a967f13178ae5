package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every input validation error.
var ErrValidation = errors.New("validation failed")

var (
	// Transaction validation errors
	ErrInvalidTransactionType  = fmt.Errorf("%w: transaction type is required", ErrValidation)
	ErrInvalidAmount           = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrInvalidDenomination     = fmt.Errorf("%w: invalid denomination", ErrValidation)
	ErrMissingDenominations    = fmt.Errorf("%w: cash transactions require a denomination breakdown", ErrValidation)
	ErrUnexpectedDenominations = fmt.Errorf("%w: denominations are only allowed on cash transactions", ErrValidation)
	ErrDenominationMismatch    = fmt.Errorf("%w: denomination total does not match amount", ErrValidation)
	ErrInvalidScope            = fmt.Errorf("%w: scope must be global or company", ErrValidation)

	// Ledger errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrLedgerNotReady      = errors.New("ledger is not loaded")
	ErrStateNotFound       = errors.New("ledger state not found")

	// Import errors
	ErrImportParseFailure = errors.New("import could not be parsed")
)
