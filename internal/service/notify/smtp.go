package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
)

const (
	smtpTimeout      = 10 * time.Second
	defaultFromEmail = "noreply@bankledger.local"
)

type SettingsProvider interface {
	Get(ctx context.Context) (models.Settings, error)
}

// SMTPSender mails codes using SMTP settings editable by admins
// While SMTP host is not configured codes go to Fallback
type SMTPSender struct {
	Settings SettingsProvider
	Fallback Sender

	logger logger.Logger
}

func NewSMTPSender(settings SettingsProvider, logger logger.Logger) *SMTPSender {
	return &SMTPSender{
		Settings: settings,
		Fallback: LogSender{Logger: logger},
		logger:   logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, identity string, code string, purpose models.OtpPurpose) bool {
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		deliveryFailures.WithLabelValues("smtp").Inc()
		s.logger.Error("Failed to read smtp settings", "error", err)
		return false
	}

	if settings.SmtpHost == "" {
		return s.Fallback.Send(ctx, identity, code, purpose)
	}

	err = s.mail(ctx, settings, identity, code, purpose)
	if err != nil {
		deliveryFailures.WithLabelValues("smtp").Inc()
		s.logger.Error("Failed to mail code", "error", err, "identity", identity, "purpose", purpose)
		return false
	}

	return true
}

func (s *SMTPSender) mail(ctx context.Context, settings models.Settings, to string, code string, purpose models.OtpPurpose) error {
	msg, err := composeMessage(settings, to, code, purpose)
	if err != nil {
		return err
	}

	// STARTTLS is used when server offers it
	opts := []mail.Option{
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(smtpTimeout),
	}
	if settings.SmtpPort != 0 {
		opts = append(opts, mail.WithPort(settings.SmtpPort))
	}
	if settings.SmtpUser != "" && settings.SmtpPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(settings.SmtpUser),
			mail.WithPassword(settings.SmtpPassword),
		)
	}

	client, err := mail.NewClient(settings.SmtpHost, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func fromEmail(settings models.Settings) string {
	if settings.SmtpFromEmail == "" {
		return defaultFromEmail
	}
	return settings.SmtpFromEmail
}

// composeMessage fails on addresses that are not a single valid mailbox,
// so header values coming from admin settings can't carry extra headers
func composeMessage(settings models.Settings, to string, code string, purpose models.OtpPurpose) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(fromEmail(settings)); err != nil {
		return nil, fmt.Errorf("from address %q: %w", fromEmail(settings), err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("to address %q: %w", to, err)
	}
	msg.Subject(fmt.Sprintf("Your one-time code for %s", purpose))

	var b strings.Builder
	fmt.Fprintf(&b, "Your one-time code for %s is: %s\r\n\r\n", purpose, code)
	fmt.Fprintf(&b, "The code is valid for %d minutes.\r\n", settings.OtpExpiryMinutes)
	b.WriteString("If you did not request this code, please contact us immediately.\r\n")
	msg.SetBodyString(mail.TypeTextPlain, b.String())

	return msg, nil
}
