package models

import (
	"time"
)

// Runtime settings editable by admins
type Settings struct {
	SmtpHost         string    `json:"smtp_host"`
	SmtpPort         int       `json:"smtp_port"`
	SmtpUser         string    `json:"smtp_user"`
	SmtpPassword     string    `json:"smtp_password"`
	SmtpFromEmail    string    `json:"smtp_from_email"`
	OtpExpiryMinutes int       `json:"otp_expiry_minutes"`
	MaxOtpAttempts   int       `json:"max_otp_attempts"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Dashboard struct {
	TotalCustomers    int
	ActiveCustomers   int
	PendingTransfers  int
	TotalAccounts     int
	BalanceByCurrency []CurrencyTotal
}
