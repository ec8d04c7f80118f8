package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/bankledger/internal/apperrors"
	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/testutil"
)

func Test_TicketRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create with defaults and list own", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := NewStorage(tx)
			user := testutil.CreateUser(t, storage, models.RoleCustomer)
			other := testutil.CreateUser(t, storage, models.RoleCustomer)

			created, err := storage.Ticket().CreateTicket(t.Context(), models.Ticket{
				UserID:  user.ID,
				Subject: "Card",
				Message: "My card is blocked",
			})
			require.NoError(t, err)
			assert.Equal(t, models.TicketCategoryGeneral, created.Category)
			assert.Equal(t, models.TicketStatusOpen, created.Status)

			_, err = storage.Ticket().CreateTicket(t.Context(), models.Ticket{UserID: other.ID, Subject: "x", Message: "y"})
			require.NoError(t, err)

			list, err := storage.Ticket().ListTickets(t.Context(), user.ID)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, created, list[0])
		})
	})

	t.Run("unknown user", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			_, err := NewStorage(tx).Ticket().CreateTicket(t.Context(), models.Ticket{UserID: uuid.New(), Subject: "x", Message: "y"})

			require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
