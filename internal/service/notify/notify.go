package notify

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
)

var deliveryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bankledger_notification_failures_total",
	Help: "One-time codes that could not be delivered",
}, []string{"sender"})

// Sender delivers one-time codes to the user
// Returns false if delivery failed, the failure is logged by the sender
type Sender interface {
	Send(ctx context.Context, identity string, code string, purpose models.OtpPurpose) bool
}

// LogSender writes codes to the log instead of delivering them
// Used when no delivery channel is configured
type LogSender struct {
	Logger logger.Logger

	// Reveal puts the code itself into the log.
	// Only set for dev environment: there is no mailbox there and the log is the only way to log in.
	Reveal bool
}

func (s LogSender) Send(ctx context.Context, identity string, code string, purpose models.OtpPurpose) bool {
	if !s.Reveal {
		s.Logger.Warn("No delivery channel configured, code is not delivered", "identity", identity, "purpose", purpose)
		return true
	}
	s.Logger.Info("Demo mode, code is not delivered", "identity", identity, "purpose", purpose, "demo_code", code)
	return true
}
