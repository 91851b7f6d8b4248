package auth

// RoleAdmin es el único rol con semántica propia en esta capa.
const RoleAdmin = "admin"

// Claims representa la identidad del caller ya verificada por el trust
// boundary upstream. Token se conserva para forwarding hacia el auth service;
// nunca se persiste en los registros.
type Claims struct {
	UserID string
	Role   string
	Token  string
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
