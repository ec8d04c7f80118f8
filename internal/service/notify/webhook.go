package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nkiryanov/bankledger/internal/logger"
	"github.com/nkiryanov/bankledger/internal/models"
)

const (
	CodeBadStatus = "bad-status"
	CodeUnknown   = "unknown"
)

const webhookTimeout = 5 * time.Second

type Error struct {
	Code       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("code: %s, status_code: %d, error: %v", e.Code, e.StatusCode, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Message struct {
	Identity string            `json:"identity"`
	Code     string            `json:"code"`
	Purpose  models.OtpPurpose `json:"purpose"`
}

// WebhookSender posts codes as JSON to external delivery service
type WebhookSender struct {
	URL string

	client *http.Client
	logger logger.Logger
}

func NewWebhookSender(url string, logger logger.Logger) *WebhookSender {
	return &WebhookSender{
		URL:    url,
		client: &http.Client{},
		logger: logger,
	}
}

func (s *WebhookSender) Send(ctx context.Context, identity string, code string, purpose models.OtpPurpose) bool {
	err := s.Deliver(ctx, Message{Identity: identity, Code: code, Purpose: purpose})
	if err != nil {
		deliveryFailures.WithLabelValues("webhook").Inc()
		s.logger.Error("Failed to deliver code", "error", err, "identity", identity, "purpose", purpose)
		return false
	}

	return true
}

// Deliver posts message and expects any 2xx reply
func (s *WebhookSender) Deliver(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	body, err := json.Marshal(msg)
	if err != nil {
		return &Error{Code: CodeUnknown, Err: fmt.Errorf("failed to encode message: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return &Error{Code: CodeUnknown, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &Error{Code: CodeUnknown, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Code: CodeBadStatus, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status code %d", resp.StatusCode)}
	}

	s.logger.Debug("Code delivered", "identity", msg.Identity, "purpose", msg.Purpose, "status_code", resp.StatusCode)
	return nil
}
