package models

import (
	"time"

	"github.com/google/uuid"
)

type ContentKind string

const ContentFundingInstructions ContentKind = "funding_instructions"

// Shown until staff saves the first version
const DefaultFundingInstructions = "Please contact us for funding instructions."

// Versioned text edited by staff
// Version starts at 1 and grows by one on every save
type Content struct {
	Kind      ContentKind `json:"-"`
	Body      string      `json:"content"`
	Version   int         `json:"version"`
	UpdatedBy *uuid.UUID  `json:"updated_by,omitempty"`
	UpdatedAt *time.Time  `json:"updated_at,omitempty"`
}
