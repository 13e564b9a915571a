package gestor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"program-monitoring-api/internal/platform/httpclient"
	"program-monitoring-api/internal/ports/auth"
)

var (
	ErrGestorNotConfigured = errors.New("gestor client not configured")
	ErrGestorUnauthorized  = errors.New("gestor unauthorized")
	ErrGestorUpstream      = errors.New("gestor upstream error")
)

// Config del cliente del gestor de usuarios.
// BaseURL y APIKey normalmente vendrán de env vars en el servicio que lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	// Timeout HTTP del cliente.
	Timeout time.Duration
}

type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// VerifyToken llama al gestor para verificar un token y traer los claims del
// usuario (id, nombre y componente al que pertenece).
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrGestorNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrGestorUnauthorized
	}

	const verifyPath = "/api/sesiones/verificar"

	var out struct {
		UserID       string `json:"user_id"`
		Nombre       string `json:"nombre"`
		ComponenteID string `json:"componente_id"`
	}

	err := c.http.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{
			c.apiKeyHeader:  c.apiKey,
			"Authorization": "Bearer " + token,
		},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrGestorUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrGestorUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrGestorUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("gestor response missing user_id")
	}

	return auth.Claims{
		UserID:       out.UserID,
		Nombre:       strings.TrimSpace(out.Nombre),
		ComponenteID: strings.TrimSpace(out.ComponenteID),
	}, nil
}
