package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

type TransactionRepo struct {
	DB DBTX
}

const transactionColumns = `id, account_id, transaction_type, status, amount, currency, description, reference,
	counterparty, beneficiary_id, notes, is_redacted, redacted_by, redacted_at, created_at, updated_at`

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, account_id, transaction_type, status, amount, currency, description, reference, counterparty, beneficiary_id, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + transactionColumns

func (r *TransactionRepo) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createTransaction,
		t.ID, t.AccountID, t.Type, t.Status, t.Amount, t.Currency, t.Description, t.Reference,
		t.Counterparty, t.BeneficiaryID, t.Notes,
	)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getTransaction = `-- name: GetTransaction
SELECT ` + transactionColumns + ` FROM transactions
WHERE id = $1
`

func (r *TransactionRepo) GetTransaction(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Transaction, error) {
	query := getTransaction
	if forUpdate {
		query += "FOR UPDATE"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	return collectTransaction(rows, apperrors.ErrTransactionNotFound)
}

const transactionFilter = `
WHERE ($1::uuid IS NULL OR account_id = $1)
	AND (cardinality($2::text[]) = 0 OR status = ANY($2))
	AND ($3::timestamptz IS NULL OR created_at >= $3)
	AND ($4::timestamptz IS NULL OR created_at <= $4)
	AND ($5 OR NOT is_redacted)
`

const listTransactions = `-- name: ListTransactions
SELECT ` + transactionColumns + ` FROM transactions` + transactionFilter + `
ORDER BY created_at DESC, id
OFFSET $6 LIMIT $7
`

func (r *TransactionRepo) ListTransactions(ctx context.Context, opts repository.ListTransactionsOpts) ([]models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, listTransactions,
		opts.AccountID, statusesArg(opts.Statuses), opts.From, opts.To, opts.IncludeRedacted,
		opts.Offset, limitOrAll(opts.Limit),
	)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return transactions, nil
}

const countTransactions = `-- name: CountTransactions
SELECT count(*) FROM transactions` + transactionFilter

func (r *TransactionRepo) CountTransactions(ctx context.Context, opts repository.ListTransactionsOpts) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, countTransactions,
		opts.AccountID, statusesArg(opts.Statuses), opts.From, opts.To, opts.IncludeRedacted,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

const updateTransactionStatus = `-- name: UpdateTransactionStatus
UPDATE transactions SET status = $3, notes = $4, updated_at = now()
WHERE id = $1 AND status = $2
RETURNING ` + transactionColumns

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.TransactionStatus, notes string) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, updateTransactionStatus, id, from, to, notes)
	t, err := collectTransaction(rows, apperrors.ErrInvalidStateTransition)
	if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
		return t, err
	}

	// Nothing updated: tell missing transaction from a transaction in other status
	if _, getErr := r.GetTransaction(ctx, id, false); getErr != nil {
		return t, getErr
	}
	return t, err
}

const markTransactionRedacted = `-- name: MarkTransactionRedacted
UPDATE transactions SET is_redacted = true, redacted_by = $2, redacted_at = $3, updated_at = now()
WHERE id = $1 AND NOT is_redacted
RETURNING ` + transactionColumns

func (r *TransactionRepo) MarkRedacted(ctx context.Context, id uuid.UUID, redactedBy uuid.UUID, at time.Time) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, markTransactionRedacted, id, redactedBy, at)
	t, err := collectTransaction(rows, apperrors.ErrAlreadyRedacted)
	if !errors.Is(err, apperrors.ErrAlreadyRedacted) {
		return t, err
	}

	if _, getErr := r.GetTransaction(ctx, id, false); getErr != nil {
		return t, getErr
	}
	return t, err
}

// Internal transfer has to be a pair of transfer_out and transfer_in legs under the same reference
const listUnpairedReferences = `-- name: ListUnpairedReferences
SELECT reference FROM transactions
WHERE transaction_type IN ('transfer_out', 'transfer_in')
GROUP BY reference
HAVING count(*) FILTER (WHERE transaction_type = 'transfer_out') <> 1
	OR count(*) FILTER (WHERE transaction_type = 'transfer_in') <> 1
ORDER BY reference
`

func (r *TransactionRepo) ListUnpairedReferences(ctx context.Context) ([]string, error) {
	rows, _ := r.DB.Query(ctx, listUnpairedReferences)
	refs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return refs, nil
}

func collectTransaction(rows pgx.Rows, errNoRows error) (models.Transaction, error) {
	t, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, pgx.ErrNoRows):
		return t, errNoRows
	default:
		return t, fmt.Errorf("db error: %w", err)
	}
}

func statusesArg(statuses []models.TransactionStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.AccountID, &t.Type, &t.Status, &t.Amount, &t.Currency, &t.Description, &t.Reference,
		&t.Counterparty, &t.BeneficiaryID, &t.Notes, &t.IsRedacted, &t.RedactedBy, &t.RedactedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
