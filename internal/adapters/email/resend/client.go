package resend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memoria-viva/internal/platform/httpclient"
	"memoria-viva/internal/ports/email"
)

var (
	ErrResendNotConfigured = errors.New("resend client not configured")
	ErrResendUpstream      = errors.New("resend upstream error")
)

const defaultBaseURL = "https://api.resend.com"

type Config struct {
	APIKey  string
	From    string // remitente, p. ej. "Memoria Viva <hola@memoriaviva.cl>"
	BaseURL string // opcional
	Timeout time.Duration
}

// Client implementa email.Sender sobre la API de Resend.
type Client struct {
	apiKey string
	from   string
	http   *httpclient.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		hc = httpclient.New(cfg.Timeout)
	}
	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		from:   strings.TrimSpace(cfg.From),
		http:   hc,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != "" && c.from != ""
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

func (c *Client) Send(ctx context.Context, msg email.Message) error {
	if !c.IsConfigured() {
		return ErrResendNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("resend: message has no recipients")
	}

	var resp sendResponse
	err := c.http.DoJSON(ctx, "POST", "/emails", map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, sendRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}, &resp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResendUpstream, err)
	}
	return nil
}

var _ email.Sender = (*Client)(nil)
