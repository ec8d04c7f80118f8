package models

import (
	"time"

	"github.com/google/uuid"
)

type OtpPurpose string

const (
	OtpPurposeLogin       OtpPurpose = "login"
	OtpPurposeBeneficiary OtpPurpose = "beneficiary"
	OtpPurposeTransfer    OtpPurpose = "transfer"

	// Used only to check notification delivery, never stored as a challenge
	OtpPurposeTest OtpPurpose = "test"
)

func ParseOtpPurpose(s string) (OtpPurpose, error) {
	return parseEnum("otp purpose", s, OtpPurposeLogin, OtpPurposeBeneficiary, OtpPurposeTransfer)
}

type OtpChallenge struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Identity  string
	Purpose   OtpPurpose
	CodeHash  string
	Attempts  int
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}
