package microlink

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"memoria-viva/internal/platform/httpclient"
	"memoria-viva/internal/ports/linkpreview"
)

var (
	ErrMicrolinkUpstream = errors.New("microlink upstream error")
	ErrBadTargetURL      = errors.New("microlink: invalid target url")
)

const defaultBaseURL = "https://api.microlink.io"

type Config struct {
	BaseURL string // opcional
	APIKey  string // opcional; el plan gratis no lo necesita
	Timeout time.Duration
}

// Client implementa linkpreview.Resolver contra la API de Microlink.
type Client struct {
	apiKey string
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
		http:   hc,
	}
}

type microlinkResponse struct {
	Status string `json:"status"`
	Data   struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Publisher   string `json:"publisher"`
		URL         string `json:"url"`
		Image       *struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"data"`
}

func (c *Client) Resolve(ctx context.Context, target string) (linkpreview.Preview, error) {
	target = strings.TrimSpace(target)
	u, err := url.ParseRequestURI(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return linkpreview.Preview{}, ErrBadTargetURL
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-api-key"] = c.apiKey
	}

	var resp microlinkResponse
	err = c.http.GetJSON(ctx, "/", url.Values{"url": {target}}, headers, &resp)
	if err != nil {
		return linkpreview.Preview{}, fmt.Errorf("%w: %v", ErrMicrolinkUpstream, err)
	}
	if resp.Status != "success" {
		return linkpreview.Preview{}, fmt.Errorf("%w: status=%s", ErrMicrolinkUpstream, resp.Status)
	}

	p := linkpreview.Preview{
		URL:         resp.Data.URL,
		Title:       resp.Data.Title,
		Description: resp.Data.Description,
		SiteName:    resp.Data.Publisher,
	}
	if p.URL == "" {
		p.URL = target
	}
	if resp.Data.Image != nil {
		p.ImageURL = resp.Data.Image.URL
	}
	return p, nil
}

var _ linkpreview.Resolver = (*Client)(nil)
