package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cat-registry/internal/platform/httpclient"
	"cat-registry/internal/ports/auth"
	"cat-registry/internal/ports/identity"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("authorization required")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("user not found")
	ErrUserNotUpdated = errors.New("user not updated")
	ErrUserNotDeleted = errors.New("user not deleted")
	ErrUpstream       = errors.New("auth service error")
)

// Service delega la gestión de cuentas al auth service externo. Acá no hay
// estado local: solo gates de rol, forwarding de tokens y normalización de
// errores para no filtrar detalle de transporte al caller.
type Service struct {
	client identity.Client
}

func NewService(client identity.Client) *Service {
	return &Service{client: client}
}

func (s *Service) List(ctx context.Context) ([]identity.User, error) {
	out, err := s.client.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (identity.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return identity.User{}, ErrInvalidInput
	}

	u, err := s.client.GetUser(ctx, id)
	if err != nil {
		if httpclient.StatusOf(err) == http.StatusNotFound {
			return identity.User{}, ErrNotFound
		}
		return identity.User{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return u, nil
}

// Login reenvía credenciales y devuelve la respuesta del auth service
// verbatim. Credenciales rechazadas upstream => ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (identity.LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return identity.LoginResult{}, ErrInvalidInput
	}

	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		switch httpclient.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return identity.LoginResult{}, ErrUnauthorized
		}
		return identity.LoginResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return res, nil
}

func (s *Service) Register(ctx context.Context, in identity.UserInput) (identity.AuthMessage, error) {
	if strings.TrimSpace(in.UserName) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return identity.AuthMessage{}, ErrInvalidInput
	}

	msg, err := s.client.Register(ctx, in)
	if err != nil {
		return identity.AuthMessage{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return msg, nil
}

// UpdateSelf reenvía el bearer del caller; el auth service decide si el token
// alcanza para el target. Cualquier falla remota se normaliza a
// ErrUserNotUpdated sin detalle de transporte.
func (s *Service) UpdateSelf(ctx context.Context, token string, in identity.UserInput) (identity.AuthMessage, error) {
	if strings.TrimSpace(token) == "" {
		return identity.AuthMessage{}, ErrUnauthorized
	}

	msg, err := s.client.UpdateSelf(ctx, token, in)
	if err != nil {
		return identity.AuthMessage{}, ErrUserNotUpdated
	}
	return msg, nil
}

func (s *Service) DeleteSelf(ctx context.Context, token string, in identity.UserInput) (identity.AuthMessage, error) {
	if strings.TrimSpace(token) == "" {
		return identity.AuthMessage{}, ErrUnauthorized
	}

	msg, err := s.client.DeleteSelf(ctx, token, in)
	if err != nil {
		return identity.AuthMessage{}, ErrUserNotDeleted
	}
	return msg, nil
}

// UpdateAsAdmin: gate de rol antes de cualquier llamada remota. No se
// reenvía bearer token (comportamiento heredado, ver DESIGN.md).
func (s *Service) UpdateAsAdmin(ctx context.Context, callerRole, targetID string, in identity.UserInput) (identity.AuthMessage, error) {
	if callerRole != auth.RoleAdmin {
		return identity.AuthMessage{}, ErrForbidden
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return identity.AuthMessage{}, ErrInvalidInput
	}

	in.ID = targetID
	msg, err := s.client.UpdateUser(ctx, in)
	if err != nil {
		return identity.AuthMessage{}, ErrUserNotUpdated
	}
	return msg, nil
}

func (s *Service) DeleteAsAdmin(ctx context.Context, callerRole, targetID string) (identity.AuthMessage, error) {
	if callerRole != auth.RoleAdmin {
		return identity.AuthMessage{}, ErrForbidden
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return identity.AuthMessage{}, ErrInvalidInput
	}

	msg, err := s.client.DeleteUser(ctx, targetID)
	if err != nil {
		return identity.AuthMessage{}, ErrUserNotDeleted
	}
	return msg, nil
}
