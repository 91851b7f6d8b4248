package cats

import (
	"context"

	"github.com/paulmach/orb"
)

// Repository es el puerto hacia el storage de registros.
//
// Update y Delete aceptan un guard opcional requireOwner: si viene no vacío,
// el write solo aplica cuando owner_user_id sigue siendo ese valor (cierra la
// ventana entre el check de ownership y el write; ver DESIGN.md). Guard vacío
// = write incondicional (path admin).
type Repository interface {
	Create(ctx context.Context, c Cat) error
	GetByID(ctx context.Context, id string) (Cat, error)
	List(ctx context.Context) ([]Cat, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Cat, error)
	ListWithinBounds(ctx context.Context, bounds orb.Polygon) ([]Cat, error)
	Update(ctx context.Context, c Cat, requireOwner string) error
	Delete(ctx context.Context, id string, requireOwner string) error
}
