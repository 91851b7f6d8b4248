package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cat-registry/internal/platform/httpclient"
	"cat-registry/internal/ports/identity"
)

var (
	ErrNotConfigured   = errors.New("auth service client not configured")
	ErrInvalidResponse = errors.New("auth service invalid response")
)

// Config del cliente. BaseURL viene de la config inyectada en main;
// este paquete no lee env.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client implementa identity.Client contra el auth service HTTP/JSON.
// Sin retries ni timeouts propios más allá del http.Client.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	hc, err := httpclient.New(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

// listEnvelope tolera las dos formas que el auth service usa para listas:
// array pelado o wrapper {"users": [...]}.
type listEnvelope struct {
	Users []identity.User `json:"users"`
}

func (c *Client) ListUsers(ctx context.Context) ([]identity.User, error) {
	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, http.MethodGet, "/users", nil, nil, &raw); err != nil {
		return nil, err
	}

	var bare []identity.User
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Users == nil {
		return nil, fmt.Errorf("%w: list users", ErrInvalidResponse)
	}
	return env.Users, nil
}

// userEnvelope: respuestas de un solo usuario vienen como {"user": {...}}.
type userEnvelope struct {
	Message string         `json:"message"`
	User    *identity.User `json:"user"`
}

func (c *Client) GetUser(ctx context.Context, id string) (identity.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return identity.User{}, fmt.Errorf("%w: empty user id", ErrInvalidResponse)
	}

	var env userEnvelope
	if err := c.http.DoJSON(ctx, http.MethodGet, "/users/"+id, nil, nil, &env); err != nil {
		return identity.User{}, err
	}
	if env.User == nil || strings.TrimSpace(env.User.ID) == "" {
		return identity.User{}, fmt.Errorf("%w: missing user", ErrInvalidResponse)
	}
	return *env.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (identity.LoginResult, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var out identity.LoginResult
	if err := c.http.DoJSON(ctx, http.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return identity.LoginResult{}, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return identity.LoginResult{}, fmt.Errorf("%w: login missing token", ErrInvalidResponse)
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, in identity.UserInput) (identity.AuthMessage, error) {
	var out identity.AuthMessage
	if err := c.http.DoJSON(ctx, http.MethodPost, "/users", nil, in, &out); err != nil {
		return identity.AuthMessage{}, err
	}
	return out, nil
}

func (c *Client) UpdateSelf(ctx context.Context, token string, in identity.UserInput) (identity.AuthMessage, error) {
	var out identity.AuthMessage
	err := c.http.DoJSON(ctx, http.MethodPut, "/users/", httpclient.BearerHeader(token), in, &out)
	if err != nil {
		return identity.AuthMessage{}, err
	}
	return out, nil
}

func (c *Client) DeleteSelf(ctx context.Context, token string, in identity.UserInput) (identity.AuthMessage, error) {
	var out identity.AuthMessage
	err := c.http.DoJSON(ctx, http.MethodDelete, "/users/", httpclient.BearerHeader(token), in, &out)
	if err != nil {
		return identity.AuthMessage{}, err
	}
	return out, nil
}

// UpdateUser (variante admin): mismo endpoint que UpdateSelf, target en el
// body y sin bearer token. El auth service confía en estos requests por red,
// no por credencial; no agregar forwarding acá sin decisión de producto.
func (c *Client) UpdateUser(ctx context.Context, in identity.UserInput) (identity.AuthMessage, error) {
	var out identity.AuthMessage
	if err := c.http.DoJSON(ctx, http.MethodPut, "/users/", nil, in, &out); err != nil {
		return identity.AuthMessage{}, err
	}
	return out, nil
}

// DeleteUser (variante admin): target en el body como user_id, sin token.
func (c *Client) DeleteUser(ctx context.Context, id string) (identity.AuthMessage, error) {
	body := map[string]string{"user_id": strings.TrimSpace(id)}

	var out identity.AuthMessage
	if err := c.http.DoJSON(ctx, http.MethodDelete, "/users/", nil, body, &out); err != nil {
		return identity.AuthMessage{}, err
	}
	return out, nil
}
