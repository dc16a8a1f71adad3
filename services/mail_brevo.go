package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"time"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent,omitempty"`
	TextContent string         `json:"textContent,omitempty"`
}

// BrevoMailer sends through the Brevo transactional email API.
type BrevoMailer struct {
	apiKey   string
	sender   brevoAddress
	endpoint string
	client   *http.Client
}

func NewBrevoMailer(apiKey, from string, client *http.Client) (*BrevoMailer, error) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("brevo sender %q: %w", from, err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &BrevoMailer{
		apiKey:   apiKey,
		sender:   brevoAddress{Name: addr.Name, Email: addr.Address},
		endpoint: brevoEndpoint,
		client:   client,
	}, nil
}

// WithEndpoint points the mailer at another API base; used by tests.
func (m *BrevoMailer) WithEndpoint(endpoint string) *BrevoMailer {
	m.endpoint = endpoint
	return m
}

func (m *BrevoMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(brevoRequest{
		Sender:      m.sender,
		To:          []brevoAddress{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("brevo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("brevo status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}
