package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/handlers/render"
	"github.com/nkiryanov/bankledger/internal/logger"
)

// Status code and public message for every known error kind
// Order matters: specific not found errors are checked before generic one
var errorStatuses = []struct {
	err     error
	code    int
	message string
}{
	{apperrors.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{apperrors.ErrAccountNotFound, http.StatusNotFound, "Account not found"},
	{apperrors.ErrTransactionNotFound, http.StatusNotFound, "Transaction not found"},
	{apperrors.ErrBeneficiaryNotFound, http.StatusNotFound, "Beneficiary not found"},
	{apperrors.ErrInstrumentNotFound, http.StatusNotFound, "Instrument not found"},
	{apperrors.ErrContentNotFound, http.StatusNotFound, "Content not found"},
	{apperrors.ErrNotFound, http.StatusNotFound, "Not found"},

	{apperrors.ErrInsufficientFunds, http.StatusBadRequest, "Insufficient funds"},
	{apperrors.ErrOtpNoChallenge, http.StatusBadRequest, "No OTP found"},
	{apperrors.ErrOtpExpired, http.StatusBadRequest, "OTP expired"},
	{apperrors.ErrOtpTooManyAttempts, http.StatusBadRequest, "Too many attempts"},
	{apperrors.ErrOtpMismatch, http.StatusBadRequest, "Invalid OTP"},
	{apperrors.ErrCurrencyMismatch, http.StatusBadRequest, "Currency does not match account"},
	{apperrors.ErrInvalidAmount, http.StatusBadRequest, "Amount must be positive with at most 4 decimal places"},
	{apperrors.ErrSameAccount, http.StatusBadRequest, "Cannot transfer to the same account"},
	{apperrors.ErrInvalidValue, http.StatusBadRequest, "Invalid value"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},

	{apperrors.ErrUnauthorized, http.StatusForbidden, "Forbidden"},
	{apperrors.ErrUserInactive, http.StatusForbidden, "User is not active"},
	{apperrors.ErrAccountInactive, http.StatusForbidden, "Account is not active"},

	{apperrors.ErrDuplicateIdentity, http.StatusConflict, "Already exists"},
	{apperrors.ErrInvalidStateTransition, http.StatusConflict, "Invalid status transition"},
	{apperrors.ErrAlreadyRedacted, http.StatusConflict, "Transaction already redacted"},
}

// renderError writes response for error returned by service
// Unknown errors are logged and hidden behind 500
func renderError(w http.ResponseWriter, l logger.Logger, err error) {
	for _, s := range errorStatuses {
		if errors.Is(err, s.err) {
			render.ServiceError(w, s.message, s.code)
			return
		}
	}

	l.Error("Request failed", "error", err)
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}
