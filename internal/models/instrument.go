package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InstrumentType string

const (
	InstrumentTypeKTT         InstrumentType = "ktt"
	InstrumentTypeCD          InstrumentType = "cd"
	InstrumentTypeEndorsement InstrumentType = "endorsement"
)

func ParseInstrumentType(s string) (InstrumentType, error) {
	return parseEnum("instrument type", s, InstrumentTypeKTT, InstrumentTypeCD, InstrumentTypeEndorsement)
}

type InstrumentVisibility string

const (
	InstrumentVisibleToAll       InstrumentVisibility = "all"
	InstrumentVisibleToRecipient InstrumentVisibility = "specific"
)

func ParseInstrumentVisibility(s string) (InstrumentVisibility, error) {
	return parseEnum("instrument visibility", s, InstrumentVisibleToAll, InstrumentVisibleToRecipient)
}

const InstrumentStatusActive = "active"

// Document published by staff: key tested telex, certificate of deposit or endorsement
type Instrument struct {
	ID          uuid.UUID            `json:"id"`
	Title       string               `json:"title"`
	Type        InstrumentType       `json:"instrument_type"`
	Content     string               `json:"content"`
	Amount      *decimal.Decimal     `json:"amount,omitempty"`
	Currency    string               `json:"currency,omitempty"`
	Visibility  InstrumentVisibility `json:"visibility"`
	RecipientID *uuid.UUID           `json:"recipient_id,omitempty"`
	Status      string               `json:"status"`
	CreatedBy   uuid.UUID            `json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
}

// VisibleTo reports whether a customer may read the instrument
func (i Instrument) VisibleTo(userID uuid.UUID) bool {
	if i.Status != InstrumentStatusActive {
		return false
	}
	if i.Visibility == InstrumentVisibleToAll {
		return true
	}
	return i.RecipientID != nil && *i.RecipientID == userID
}
