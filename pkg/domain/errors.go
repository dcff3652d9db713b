package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrParse is returned when an amount, currency spec or policy document is malformed
	ErrParse = errors.New("parse error")
	// ErrAmbiguousMatch is returned when a lookup that must match one row matches several
	ErrAmbiguousMatch = errors.New("ambiguous match")
	// ErrStorage wraps failures of the underlying store that have no domain meaning
	ErrStorage = errors.New("storage error")
	// ErrWalletOpFailed is returned when a wallet operation cannot be carried out
	ErrWalletOpFailed = errors.New("wallet operation failed")
)

// Currency resolution and wallet errors. They wrap the generic errors above so
// callers can branch on either the specific or the general kind.
var (
	ErrNoMatchingCurrency         = fmt.Errorf("%w: no matching currency", ErrNotFound)
	ErrMultipleMatchingCurrencies = fmt.Errorf("%w: multiple matching currencies", ErrAmbiguousMatch)
	ErrInsufficientBalance        = fmt.Errorf("%w: insufficient balance", ErrWalletOpFailed)
)
