package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TicketCategoryGeneral = "general"
	TicketStatusOpen      = "open"
)

// Support request written by a customer
type Ticket struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
