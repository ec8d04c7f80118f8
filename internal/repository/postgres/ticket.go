package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
)

type TicketRepo struct {
	DB DBTX
}

const ticketColumns = `id, user_id, subject, message, category, status, created_at`

const createTicket = `-- name: CreateTicket
INSERT INTO tickets (id, user_id, subject, message, category, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + ticketColumns

func (r *TicketRepo) CreateTicket(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Category == "" {
		t.Category = models.TicketCategoryGeneral
	}
	if t.Status == "" {
		t.Status = models.TicketStatusOpen
	}

	rows, _ := r.DB.Query(ctx, createTicket, t.ID, t.UserID, t.Subject, t.Message, t.Category, t.Status)
	created, err := pgx.CollectOneRow(rows, rowToTicket)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return created, apperrors.ErrUserNotFound
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listTickets = `-- name: ListTickets
SELECT ` + ticketColumns + ` FROM tickets
WHERE user_id = $1
ORDER BY created_at DESC, id
`

func (r *TicketRepo) ListTickets(ctx context.Context, userID uuid.UUID) ([]models.Ticket, error) {
	rows, _ := r.DB.Query(ctx, listTickets, userID)
	list, err := pgx.CollectRows(rows, rowToTicket)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return list, nil
}

func rowToTicket(row pgx.CollectableRow) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Category, &t.Status, &t.CreatedAt)
	return t, err
}
