package identity

// Schemas explícitos del auth service. El adapter valida las respuestas
// contra estos tipos en el borde; nada aguas arriba consume JSON crudo.

// User es la entidad remota referenciada por Cat.OwnerUserID.
type User struct {
	ID       string `json:"id"`
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserInput es el payload que se reenvía en register/update/delete.
// ID solo se usa en las variantes admin (el target va en el body).
type UserInput struct {
	ID       string `json:"id,omitempty"`
	UserName string `json:"user_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// AuthMessage es la respuesta de confirmación del auth service.
// User puede venir nil según el endpoint.
type AuthMessage struct {
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

// LoginResult es la respuesta del login, devuelta verbatim al caller.
type LoginResult struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}
