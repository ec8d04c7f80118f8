package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/bankledger/internal/apperrors"
)

func TestParseEnums(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		role, err := ParseRole("super_admin")
		require.NoError(t, err)
		require.Equal(t, RoleSuperAdmin, role)

		status, err := ParseTransactionStatus("approved")
		require.NoError(t, err)
		require.Equal(t, TransactionStatusApproved, status)

		currency, err := ParseCurrency("KWD")
		require.NoError(t, err)
		require.Equal(t, "KWD", currency)
	})

	t.Run("unknown values", func(t *testing.T) {
		_, err := ParseRole("root")
		require.ErrorIs(t, err, apperrors.ErrInvalidValue)

		_, err = ParseCurrency("usd")
		require.ErrorIs(t, err, apperrors.ErrInvalidValue, "currency codes are case sensitive")

		_, err = ParseOtpPurpose(string(OtpPurposeTest))
		require.ErrorIs(t, err, apperrors.ErrInvalidValue, "test purpose can't be requested by clients")

		_, err = ParseAccountType("")
		require.ErrorIs(t, err, apperrors.ErrInvalidValue)
	})
}

func TestRole_IsStaff(t *testing.T) {
	assert.False(t, RoleCustomer.IsStaff())
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleSuperAdmin.IsStaff())
}

func TestTransactionStatus(t *testing.T) {
	tests := []struct {
		status    TransactionStatus
		settled   bool
		abandoned bool
	}{
		{TransactionStatusPending, false, false},
		{TransactionStatusCompleted, true, false},
		{TransactionStatusApproved, true, false},
		{TransactionStatusRejected, false, true},
		{TransactionStatusCancelled, false, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.settled, tt.status.IsSettled())
			assert.Equal(t, tt.abandoned, tt.status.IsAbandoned())
			assert.Equal(t, tt.settled || tt.abandoned, tt.status.IsTerminal())
		})
	}
}

func TestNewReference(t *testing.T) {
	now := time.Date(2025, 3, 7, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*60*60))

	ref := NewReference(now)

	require.Len(t, ref, 18)
	require.Regexp(t, `^PB20250308[0-9A-F]{8}$`, ref, "date has to be taken in UTC")
	require.NotEqual(t, ref, NewReference(now), "references have to be unique")
}

func TestFitsScale(t *testing.T) {
	for v, fits := range map[string]bool{
		"100":      true,
		"0.0001":   true,
		"1.50000":  true,
		"0.00005":  false,
		"-3.14159": false,
	} {
		assert.Equal(t, fits, FitsScale(decimal.RequireFromString(v)), v)
	}
}
