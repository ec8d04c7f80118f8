package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

type AccountRepo struct {
	DB DBTX
}

const accountColumns = `id, user_id, account_number, account_type, currency,
	available, transit, held, blocked, status, created_at`

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, user_id, account_number, account_type, currency, available, transit, held, blocked, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + accountColumns

func (r *AccountRepo) CreateAccount(ctx context.Context, a models.Account) (models.Account, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createAccount,
		a.ID, a.UserID, a.AccountNumber, a.Type, a.Currency,
		a.Available, a.Transit, a.Held, a.Blocked, a.Status,
	)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
			return account, apperrors.ErrDuplicateIdentity
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
			return account, apperrors.ErrUserNotFound
		case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation:
			return account, apperrors.ErrInsufficientFunds
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const getAccount = `-- name: GetAccount
SELECT ` + accountColumns + ` FROM accounts
WHERE id = $1
`

func (r *AccountRepo) GetAccount(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Account, error) {
	query := getAccount
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

const listAccounts = `-- name: ListAccounts
SELECT ` + accountColumns + ` FROM accounts
WHERE ($1::uuid IS NULL OR user_id = $1)
ORDER BY created_at DESC, id
OFFSET $2 LIMIT $3
`

func (r *AccountRepo) ListAccounts(ctx context.Context, opts repository.ListAccountsOpts) ([]models.Account, error) {
	rows, _ := r.DB.Query(ctx, listAccounts, opts.UserID, opts.Offset, limitOrAll(opts.Limit))
	accounts, err := pgx.CollectRows(rows, rowToAccount)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepo) CountAccounts(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

// Conditional update: row is touched only if every tier stays non-negative
const adjustAccount = `-- name: AdjustAccount
UPDATE accounts SET
	available = available + $2,
	transit = transit + $3,
	held = held + $4,
	blocked = blocked + $5
WHERE id = $1
	AND available + $2 >= 0
	AND transit + $3 >= 0
	AND held + $4 >= 0
	AND blocked + $5 >= 0
RETURNING ` + accountColumns

const accountExists = `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`

func (r *AccountRepo) Adjust(ctx context.Context, adjustments ...models.BalanceAdjustment) ([]models.Account, error) {
	merged := mergeAdjustments(adjustments)

	// Lock rows in ascending id order, concurrent multi-account adjustments never deadlock
	ordered := slices.Clone(merged)
	slices.SortFunc(ordered, func(a, b models.BalanceAdjustment) int {
		return bytes.Compare(a.AccountID[:], b.AccountID[:])
	})

	byID := make(map[uuid.UUID]models.Account, len(ordered))

	err := inTx(ctx, r.DB, func(tx pgx.Tx) error {
		for _, adj := range ordered {
			rows, _ := tx.Query(ctx, adjustAccount,
				adj.AccountID,
				adj.Deltas[models.TierAvailable],
				adj.Deltas[models.TierTransit],
				adj.Deltas[models.TierHeld],
				adj.Deltas[models.TierBlocked],
			)
			account, err := pgx.CollectOneRow(rows, rowToAccount)

			switch {
			case err == nil:
				byID[account.ID] = account
			case errors.Is(err, pgx.ErrNoRows):
				var exists bool
				if err := tx.QueryRow(ctx, accountExists, adj.AccountID).Scan(&exists); err != nil {
					return fmt.Errorf("db error: %w", err)
				}
				if !exists {
					return apperrors.ErrAccountNotFound
				}
				return apperrors.ErrInsufficientFunds
			default:
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(merged))
	for _, adj := range merged {
		accounts = append(accounts, byID[adj.AccountID])
	}

	return accounts, nil
}

const balanceByCurrency = `-- name: BalanceByCurrency
SELECT currency, sum(available) FROM accounts
GROUP BY currency
ORDER BY currency
`

func (r *AccountRepo) BalanceByCurrency(ctx context.Context) ([]models.CurrencyTotal, error) {
	rows, _ := r.DB.Query(ctx, balanceByCurrency)
	totals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.CurrencyTotal, error) {
		var t models.CurrencyTotal
		err := row.Scan(&t.Currency, &t.Total)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return totals, nil
}

// mergeAdjustments sums deltas of the same account, keeping order of the first appearance
// Missing tiers are filled with zero
func mergeAdjustments(adjustments []models.BalanceAdjustment) []models.BalanceAdjustment {
	tiers := []models.Tier{models.TierAvailable, models.TierTransit, models.TierHeld, models.TierBlocked}

	index := make(map[uuid.UUID]int, len(adjustments))
	merged := make([]models.BalanceAdjustment, 0, len(adjustments))

	for _, adj := range adjustments {
		i, ok := index[adj.AccountID]
		if !ok {
			deltas := make(map[models.Tier]decimal.Decimal, len(tiers))
			for _, t := range tiers {
				deltas[t] = decimal.Zero
			}
			merged = append(merged, models.BalanceAdjustment{AccountID: adj.AccountID, Deltas: deltas})
			i = len(merged) - 1
			index[adj.AccountID] = i
		}

		for tier, delta := range adj.Deltas {
			merged[i].Deltas[tier] = merged[i].Deltas[tier].Add(delta)
		}
	}

	return merged
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(
		&a.ID, &a.UserID, &a.AccountNumber, &a.Type, &a.Currency,
		&a.Available, &a.Transit, &a.Held, &a.Blocked, &a.Status, &a.CreatedAt,
	)
	return a, err
}
