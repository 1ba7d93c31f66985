package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"memoria-viva/internal/platform/httpclient"
	"memoria-viva/internal/ports/ai"
)

var (
	ErrOpenAINotConfigured = errors.New("openai client not configured")
	ErrOpenAIUpstream      = errors.New("openai upstream error")
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"

	// Prompts en español: el contenido de la plataforma es en español
	// y los modelos responden mejor si el sistema también lo es.
	enhancePrompt = "Corrige ortografía y gramática del siguiente relato comunitario. " +
		"Mantén la voz, el tono y los modismos locales del autor. No agregues ni quites contenido. " +
		"Responde solo con el texto corregido."
	summarizePrompt = "Resume el siguiente relato comunitario en 2 o 3 frases, en español, " +
		"manteniendo un tono cálido. Responde solo con el resumen."
)

type Config struct {
	APIKey  string
	BaseURL string // opcional, para proxies compatibles
	Model   string // opcional
	Timeout time.Duration
}

// Client implementa ai.Assistant sobre la API de chat completions.
type Client struct {
	apiKey string
	model  string
	http   *httpclient.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	hc, err := httpclient.NewWithBaseURL(base, timeout)
	if err != nil {
		hc = httpclient.New(timeout)
	}
	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  model,
		http:   hc,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) chat(ctx context.Context, system, user string, temperature float64) (string, error) {
	if !c.IsConfigured() {
		return "", ErrOpenAINotConfigured
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}

	var resp chatResponse
	err := c.http.DoJSON(ctx, "POST", "/chat/completions", map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, req, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOpenAIUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrOpenAIUpstream)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) Enhance(ctx context.Context, text string) (string, error) {
	out, err := c.chat(ctx, enhancePrompt, text, 0.2)
	if err != nil {
		return "", err
	}
	if out == "" {
		// Nunca devolvemos vacío: mejor el original que borrar el relato.
		return text, nil
	}
	return out, nil
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	return c.chat(ctx, summarizePrompt, text, 0.3)
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// Moderate usa el endpoint de moderación. Un flag no rechaza contenido;
// solo lo marca para que lo mire un editor.
func (c *Client) Moderate(ctx context.Context, text string) (ai.ModerationResult, error) {
	if !c.IsConfigured() {
		return ai.ModerationResult{}, ErrOpenAINotConfigured
	}

	var resp moderationResponse
	err := c.http.DoJSON(ctx, "POST", "/moderations", map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	}, moderationRequest{Input: text}, &resp)
	if err != nil {
		return ai.ModerationResult{}, fmt.Errorf("%w: %v", ErrOpenAIUpstream, err)
	}
	if len(resp.Results) == 0 {
		return ai.ModerationResult{}, nil
	}

	res := resp.Results[0]
	if !res.Flagged {
		return ai.ModerationResult{}, nil
	}

	cats := make([]string, 0, len(res.Categories))
	for name, hit := range res.Categories {
		if hit {
			cats = append(cats, name)
		}
	}
	sort.Strings(cats)
	return ai.ModerationResult{
		Flagged: true,
		Reason:  strings.Join(cats, ", "),
	}, nil
}

var _ ai.Assistant = (*Client)(nil)
