package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

// Create active user with given role directly in storage
func CreateUser(t *testing.T, storage repository.Storage, role models.Role) models.User {
	t.Helper()

	id := uuid.New()
	user, err := storage.User().CreateUser(t.Context(), models.User{
		ID:             id,
		Email:          fmt.Sprintf("%s@bank.test", id),
		HashedPassword: "not-a-real-hash",
		FirstName:      "Test",
		LastName:       "User",
		UserType:       models.UserTypePersonal,
		Role:           role,
		Status:         models.UserStatusActive,
		KycStatus:      models.KycStatusPending,
	})
	require.NoError(t, err, "fixture user has to be created")

	return user
}

// Create active checking account with available balance only
func CreateAccount(t *testing.T, storage repository.Storage, userID uuid.UUID, currency string, available int64) models.Account {
	t.Helper()

	number := fmt.Sprintf("%012d", uuid.New().ID())
	account, err := storage.Account().CreateAccount(t.Context(), models.Account{
		UserID:        userID,
		AccountNumber: number,
		Type:          models.AccountTypeChecking,
		Currency:      currency,
		Status:        models.AccountStatusActive,
		Balances:      models.Balances{Available: decimal.NewFromInt(available)},
	})
	require.NoError(t, err, "fixture account has to be created")

	return account
}
