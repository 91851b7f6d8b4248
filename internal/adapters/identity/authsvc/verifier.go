package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cat-registry/internal/platform/httpclient"
	"cat-registry/internal/ports/auth"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrUnauthorized = errors.New("auth service unauthorized")
)

// Verifier implementa auth.AuthVerifier contra GET /users/token del auth
// service. No se integra automáticamente; main decide si lo instancia
// (modo dev = verifier nil + debug headers).
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var env userEnvelope
	err := v.client.http.DoJSON(ctx, http.MethodGet, "/users/token", httpclient.BearerHeader(token), nil, &env)
	if err != nil {
		switch httpclient.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("auth service verify failed: %w", err)
	}

	if env.User == nil || strings.TrimSpace(env.User.ID) == "" {
		return auth.Claims{}, fmt.Errorf("%w: verify missing user", ErrInvalidResponse)
	}

	return auth.Claims{
		UserID: strings.TrimSpace(env.User.ID),
		Role:   strings.TrimSpace(env.User.Role),
		Token:  token,
	}, nil
}
