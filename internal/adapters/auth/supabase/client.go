package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"memoria-viva/internal/platform/httpclient"
	"memoria-viva/internal/ports/auth"
)

var (
	ErrSupabaseNotConfigured = errors.New("supabase client not configured")
	ErrSupabaseUnauthorized  = errors.New("supabase unauthorized")
	ErrSupabaseUpstream      = errors.New("supabase upstream error")
)

// Config del cliente Supabase (GoTrue).
// URL y AnonKey normalmente vendrán de env vars en el servicio que lo instancie.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

type Client struct {
	anonKey string
	http    *httpclient.Client
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		// URL inválida => cliente sin configurar; IsConfigured lo reporta.
		hc = httpclient.New(cfg.Timeout)
	}
	return &Client{
		anonKey: strings.TrimSpace(cfg.AnonKey),
		http:    hc,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.anonKey != ""
}

type userResponse struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	AppMetadata map[string]any `json:"app_metadata"`
}

// VerifyToken valida un access token contra GoTrue y trae el usuario.
// El rol editorial viene en app_metadata.role; cualquier otro valor es "user".
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrSupabaseNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrSupabaseUnauthorized
	}

	var out userResponse
	err := c.http.GetJSON(ctx, "/auth/v1/user", nil, map[string]string{
		"apikey":        c.anonKey,
		"Authorization": "Bearer " + token,
	}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == 401 || httpErr.StatusCode == 403 {
				return auth.Claims{}, ErrSupabaseUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrSupabaseUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrSupabaseUpstream, err)
	}

	out.ID = strings.TrimSpace(out.ID)
	if out.ID == "" {
		return auth.Claims{}, errors.New("supabase response missing user id")
	}

	role := auth.RoleUser
	if v, ok := out.AppMetadata["role"].(string); ok && auth.Role(v) == auth.RoleEditor {
		role = auth.RoleEditor
	}

	return auth.Claims{
		UserID: out.ID,
		Email:  strings.TrimSpace(out.Email),
		Role:   role,
	}, nil
}
