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
	"github.com/nkiryanov/bankledger/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, address, country,
	user_type, role, status, kyc_status, notes, created_at, updated_at`

const createUser = `-- name: CreateUser
INSERT INTO users (id, email, password_hash, first_name, last_name, phone, address, country, user_type, role, status, kyc_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createUser,
		u.ID, u.Email, u.HashedPassword, u.FirstName, u.LastName, u.Phone, u.Address, u.Country,
		u.UserType, u.Role, u.Status, u.KycStatus,
	)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrDuplicateIdentity
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT ` + userColumns + ` FROM users
WHERE email = $1
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const updateUser = `-- name: UpdateUser
UPDATE users SET
	status = COALESCE($2, status),
	kyc_status = COALESCE($3, kyc_status),
	notes = COALESCE($4, notes),
	updated_at = now()
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) UpdateUser(ctx context.Context, id uuid.UUID, opts repository.UpdateUserOpts) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateUser, id, opts.Status, opts.KycStatus, opts.Notes)
	return collectUser(rows)
}

const listUsers = `-- name: ListUsers
SELECT ` + userColumns + ` FROM users
WHERE ($1 = '' OR role = $1) AND ($2 = '' OR status = $2)
ORDER BY created_at DESC, id
OFFSET $3 LIMIT $4
`

func (r *UserRepo) ListUsers(ctx context.Context, opts repository.ListUsersOpts) ([]models.User, error) {
	rows, _ := r.DB.Query(ctx, listUsers, string(opts.Role), string(opts.Status), opts.Offset, limitOrAll(opts.Limit))
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

const countUsers = `-- name: CountUsers
SELECT count(*) FROM users
WHERE ($1 = '' OR role = $1) AND ($2 = '' OR status = $2)
`

func (r *UserRepo) CountUsers(ctx context.Context, opts repository.ListUsersOpts) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, countUsers, string(opts.Role), string(opts.Status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName, &u.Phone, &u.Address, &u.Country,
		&u.UserType, &u.Role, &u.Status, &u.KycStatus, &u.Notes, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// limitOrAll converts zero limit to SQL 'LIMIT ALL' (NULL)
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
