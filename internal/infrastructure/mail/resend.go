package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/invoicehub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ResendMailer sends email through the Resend HTTP API
type ResendMailer struct {
	apiBaseURL string
	apiKey     string
	from       string
	client     *http.Client
	logger     *zap.Logger
}

// NewResendMailer creates a mailer from configuration
func NewResendMailer(cfg *config.MailConfig, logger *zap.Logger) (*ResendMailer, error) {
	if cfg == nil {
		return nil, errors.New("mail configuration is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("mail API key is required")
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("mail from address is required")
	}

	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	timeout := cfg.SendTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &ResendMailer{
		apiBaseURL: cfg.APIBaseURL,
		apiKey:     cfg.APIKey,
		from:       from,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html,omitempty"`
	Text        string             `json:"text,omitempty"`
	ReplyTo     string             `json:"reply_to,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send delivers the message through the provider API
func (m *ResendMailer) Send(ctx context.Context, msg *Message) (string, error) {
	if msg == nil || len(msg.To) == 0 {
		return "", errors.New("message has no recipients")
	}
	if msg.Subject == "" {
		return "", errors.New("message has no subject")
	}

	payload := resendRequest{
		From:    m.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}
	for _, att := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, resendAttachment{
			Filename: att.Filename,
			Content:  base64.StdEncoding.EncodeToString(att.Data),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiBaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		m.logger.Warn("mail provider rejected message",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return "", fmt.Errorf("mail provider returned status %d", resp.StatusCode)
	}

	var parsed resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode mail response: %w", err)
	}

	m.logger.Info("mail sent",
		zap.String("message_id", parsed.ID),
		zap.Int("recipients", len(msg.To)))

	return parsed.ID, nil
}

// Ensure ResendMailer implements Mailer
var _ Mailer = (*ResendMailer)(nil)
