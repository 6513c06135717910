package domain

import "errors"

// Business failures reported synchronously to callers. The engine never
// retries any of these internally; retries are the calling network's job.
var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInvalidCurrency        = errors.New("invalid currency")
	ErrInvalidQuote           = errors.New("invalid quote")
	ErrUnsupportedAccountType = errors.New("unsupported account type")
	ErrRejectedBySimulation   = errors.New("reject account - cancelled")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransition      = errors.New("invalid transfer state transition")
	ErrTransferMismatch       = errors.New("transfer details do not match held record")
)
