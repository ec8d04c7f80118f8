package apperrors

import (
	"errors"
	"fmt"
)

// Generic kind, every *NotFound error below wraps it
var ErrNotFound = errors.New("not found")

var (
	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is not active")

	ErrUnauthorized = errors.New("not allowed")

	ErrAccountNotFound   = fmt.Errorf("account %w", ErrNotFound)
	ErrAccountInactive   = errors.New("account is not active")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCurrencyMismatch  = errors.New("currency does not match account")
	ErrInvalidAmount     = errors.New("amount must be positive with at most 4 decimal places")
	ErrSameAccount       = errors.New("source and destination accounts are the same")

	ErrTransactionNotFound    = fmt.Errorf("transaction %w", ErrNotFound)
	ErrInvalidStateTransition = errors.New("invalid transaction state transition")
	ErrAlreadyRedacted        = errors.New("transaction already redacted")

	ErrBeneficiaryNotFound = fmt.Errorf("beneficiary %w", ErrNotFound)
	ErrInstrumentNotFound  = fmt.Errorf("instrument %w", ErrNotFound)
	ErrContentNotFound     = fmt.Errorf("content %w", ErrNotFound)

	ErrOtpNoChallenge     = errors.New("no otp challenge")
	ErrOtpExpired         = errors.New("otp expired")
	ErrOtpTooManyAttempts = errors.New("too many otp attempts")
	ErrOtpMismatch        = errors.New("invalid otp")

	ErrSettingsNotFound = errors.New("settings not found")

	ErrInvalidValue = errors.New("invalid value")
)
