package ticket

import (
	"context"
	"fmt"

	"github.com/nkiryanov/bankledger/internal/models"
	"github.com/nkiryanov/bankledger/internal/repository"
)

type Service struct {
	repo repository.TicketRepo
}

func NewService(repo repository.TicketRepo) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Subject  string
	Message  string
	Category string // general if empty
}

// Create opens support ticket on behalf of actor
func (s *Service) Create(ctx context.Context, actor models.Actor, in CreateInput) (models.Ticket, error) {
	category := in.Category
	if category == "" {
		category = models.TicketCategoryGeneral
	}

	t, err := s.repo.CreateTicket(ctx, models.Ticket{
		UserID:   actor.UserID,
		Subject:  in.Subject,
		Message:  in.Message,
		Category: category,
		Status:   models.TicketStatusOpen,
	})
	if err != nil {
		return t, fmt.Errorf("can't create ticket. Err: %w", err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, actor models.Actor) ([]models.Ticket, error) {
	list, err := s.repo.ListTickets(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("can't list tickets. Err: %w", err)
	}
	return list, nil
}
