package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bunny-happiness/internal/platform/httpclient"
	"bunny-happiness/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identity client not configured")
	ErrUnauthorized  = errors.New("identity unauthorized")
	ErrUpstream      = errors.New("identity upstream error")
)

// Config del cliente del servicio de identidad.
// BaseURL y APIKey vienen de env vars en el servicio que lo instancia.
type Config struct {
	BaseURL string
	APIKey  string

	// Timeout HTTP (default 5s).
	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier contra un servicio de identidad
// externo. Si no está configurado, el middleware queda en modo dev.
type Verifier struct {
	apiKey string
	http   *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		apiKey: strings.TrimSpace(cfg.APIKey),
		http:   c,
	}, nil
}

func (v *Verifier) IsConfigured() bool {
	return v != nil && v.http != nil && v.http.BaseURL != "" && v.apiKey != ""
}

// Verify llama al servicio de identidad y trae los claims del token.
func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if !v.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	req := map[string]string{"token": token}

	var out struct {
		UserID   string `json:"user_id"`
		Email    string `json:"email"`
		TenantID string `json:"tenant_id"`
	}

	headers := map[string]string{
		"X-Api-Key":     v.apiKey,
		"Authorization": "Bearer " + token,
	}

	err := v.http.DoJSON(ctx, "POST", "/v1/tokens/verify", headers, req, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == 401 || httpErr.StatusCode == 403 {
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if strings.TrimSpace(out.UserID) == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	return auth.Claims{
		UserID:   out.UserID,
		Email:    out.Email,
		TenantID: out.TenantID,
	}, nil
}
