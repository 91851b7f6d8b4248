package cats

import (
	"time"

	"github.com/paulmach/orb"
)

// Cat representa un registro de gato. OwnerUserID apunta a un usuario del
// auth service externo; no es una foreign key local. Se fija una sola vez,
// al crear, con el id del caller autenticado.
type Cat struct {
	ID          string
	OwnerUserID string

	Name   string
	Breed  string
	Weight float64 // kg

	BirthDate *time.Time

	// Location en orden (lng, lat), el mismo orden que usa el storage.
	Location orb.Point

	// Attributes libres (color, temperamento, etc.)
	Attributes map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}
