package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeKTT      AccountType = "ktt"
)

func ParseAccountType(s string) (AccountType, error) {
	return parseEnum("account type", s, AccountTypeChecking, AccountTypeSavings, AccountTypeKTT)
}

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusClosed    AccountStatus = "closed"
)

func ParseAccountStatus(s string) (AccountStatus, error) {
	return parseEnum("account status", s, AccountStatusActive, AccountStatusSuspended, AccountStatusClosed)
}

var SupportedCurrencies = []string{
	"USD", "EUR", "GBP", "CHF", "JPY", "AUD", "CAD", "NZD", "SGD", "HKD",
	"CNY", "INR", "BRL", "MXN", "ZAR", "AED", "SAR", "KWD", "QAR", "BHD",
}

func ParseCurrency(s string) (string, error) {
	return parseEnum("currency", s, SupportedCurrencies...)
}

func IsSupportedCurrency(s string) bool {
	return slices.Contains(SupportedCurrencies, s)
}

// Balance bucket of an account
type Tier string

const (
	TierAvailable Tier = "available"
	TierTransit   Tier = "transit"
	TierHeld      Tier = "held"
	TierBlocked   Tier = "blocked"
)

type Balances struct {
	Available decimal.Decimal `json:"available_balance"`
	Transit   decimal.Decimal `json:"transit_balance"`
	Held      decimal.Decimal `json:"held_balance"`
	Blocked   decimal.Decimal `json:"blocked_balance"`
}

type Account struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	AccountNumber string        `json:"account_number"`
	Type          AccountType   `json:"account_type"`
	Currency      string        `json:"currency"`
	Status        AccountStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`

	Balances
}

// Balances and amounts are stored as NUMERIC(20,4)
const AmountScale = 4

// FitsScale reports whether d has no digits past AmountScale
// Such amounts would be rounded per leg on write and break conservation
func FitsScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(AmountScale))
}

// Signed per-tier deltas to apply on one account
// Tiers missing in Deltas are left unchanged
type BalanceAdjustment struct {
	AccountID uuid.UUID
	Deltas    map[Tier]decimal.Decimal
}

// Sum of available balances of all accounts held in Currency
type CurrencyTotal struct {
	Currency string
	Total    decimal.Decimal
}
