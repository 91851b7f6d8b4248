package identity

import "context"

// Client es el puerto hacia el auth service (HTTP/JSON).
// Las operaciones self-service reciben el bearer token del caller y lo
// reenvían; las variantes admin no adjuntan token (comportamiento heredado
// del diseño actual del auth service, ver DESIGN.md).
type Client interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (User, error)

	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, in UserInput) (AuthMessage, error)

	UpdateSelf(ctx context.Context, token string, in UserInput) (AuthMessage, error)
	DeleteSelf(ctx context.Context, token string, in UserInput) (AuthMessage, error)

	UpdateUser(ctx context.Context, in UserInput) (AuthMessage, error)
	DeleteUser(ctx context.Context, id string) (AuthMessage, error)
}
