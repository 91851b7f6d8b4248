package cats

import (
	"context"
	"errors"
	"strings"
	"time"

	"cat-registry/internal/platform/geo"
	"cat-registry/internal/ports/auth"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("authorization required")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("cat not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name       string
	Breed      string
	Weight     float64
	BirthDate  *time.Time
	Lat        float64
	Lng        float64
	Attributes map[string]string
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name       *string
	Breed      *string
	Weight     *float64
	BirthDate  *time.Time
	Lat        *float64
	Lng        *float64
	Attributes map[string]string // nil = no tocar
}

// Create exige caller autenticado. El owner del registro es siempre el
// caller; cualquier owner que venga en el input se ignora.
func (s *Service) Create(ctx context.Context, callerUserID string, in CreateInput) (Cat, error) {
	callerUserID = strings.TrimSpace(callerUserID)
	if callerUserID == "" {
		return Cat{}, ErrUnauthorized
	}
	if strings.TrimSpace(in.Name) == "" {
		return Cat{}, ErrInvalidInput
	}
	if in.Weight < 0 {
		return Cat{}, ErrInvalidInput
	}

	now := s.now()
	c := Cat{
		ID:          uuid.NewString(),
		OwnerUserID: callerUserID,
		Name:        strings.TrimSpace(in.Name),
		Breed:       strings.TrimSpace(in.Breed),
		Weight:      in.Weight,
		BirthDate:   in.BirthDate,
		Location:    geo.NewPoint(in.Lat, in.Lng),
		Attributes:  in.Attributes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Cat{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Cat, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Cat, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Cat, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// ListByArea arma el polígono de bounds a partir de dos esquinas opuestas y
// devuelve los registros cuya location cae dentro.
func (s *Service) ListByArea(ctx context.Context, topRight, bottomLeft orb.Point) ([]Cat, error) {
	bounds := geo.RectangleBounds(topRight, bottomLeft)
	return s.repo.ListWithinBounds(ctx, bounds)
}

// Update (self-service): caller autenticado, registro existente y caller ==
// owner, en ese orden. El write final lleva guard de owner; si el owner
// cambió entre el check y el write, el repo responde ErrNotFound.
func (s *Service) Update(ctx context.Context, catID, callerUserID string, in UpdateInput) (Cat, error) {
	callerUserID = strings.TrimSpace(callerUserID)
	if callerUserID == "" {
		return Cat{}, ErrUnauthorized
	}

	current, err := s.repo.GetByID(ctx, catID)
	if err != nil {
		return Cat{}, err
	}
	if current.OwnerUserID != callerUserID {
		return Cat{}, ErrForbidden
	}

	return s.applyUpdate(ctx, current, in, callerUserID)
}

// UpdateAsAdmin: solo role admin; sin check de ownership. El rol se valida
// antes de cualquier lectura para no gastar un fetch en un caller rechazado.
func (s *Service) UpdateAsAdmin(ctx context.Context, catID, callerRole string, in UpdateInput) (Cat, error) {
	if callerRole != auth.RoleAdmin {
		return Cat{}, ErrForbidden
	}

	current, err := s.repo.GetByID(ctx, catID)
	if err != nil {
		return Cat{}, err
	}

	return s.applyUpdate(ctx, current, in, "")
}

// Delete (self-service): mismas reglas que Update. Devuelve el registro
// eliminado; la baja es inmediata y permanente (no hay soft-delete).
func (s *Service) Delete(ctx context.Context, catID, callerUserID string) (Cat, error) {
	callerUserID = strings.TrimSpace(callerUserID)
	if callerUserID == "" {
		return Cat{}, ErrUnauthorized
	}

	current, err := s.repo.GetByID(ctx, catID)
	if err != nil {
		return Cat{}, err
	}
	if current.OwnerUserID != callerUserID {
		return Cat{}, ErrForbidden
	}

	if err := s.repo.Delete(ctx, catID, callerUserID); err != nil {
		return Cat{}, err
	}
	return current, nil
}

func (s *Service) DeleteAsAdmin(ctx context.Context, catID, callerRole string) (Cat, error) {
	if callerRole != auth.RoleAdmin {
		return Cat{}, ErrForbidden
	}

	current, err := s.repo.GetByID(ctx, catID)
	if err != nil {
		return Cat{}, err
	}

	if err := s.repo.Delete(ctx, catID, ""); err != nil {
		return Cat{}, err
	}
	return current, nil
}

// applyUpdate aplica el patch sobre el registro actual y persiste.
// OwnerUserID nunca se toca: el input no tiene campo owner, ni en el path
// admin (owner se fija exactamente una vez, al crear).
func (s *Service) applyUpdate(ctx context.Context, current Cat, in UpdateInput, requireOwner string) (Cat, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Cat{}, ErrInvalidInput
		}
		current.Name = name
	}
	if in.Breed != nil {
		current.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Weight != nil {
		if *in.Weight < 0 {
			return Cat{}, ErrInvalidInput
		}
		current.Weight = *in.Weight
	}
	if in.BirthDate != nil {
		current.BirthDate = in.BirthDate
	}

	// Lat/Lng van juntos: mover solo una coordenada no tiene sentido.
	switch {
	case in.Lat != nil && in.Lng != nil:
		current.Location = geo.NewPoint(*in.Lat, *in.Lng)
	case in.Lat != nil || in.Lng != nil:
		return Cat{}, ErrInvalidInput
	}

	if in.Attributes != nil {
		current.Attributes = in.Attributes
	}

	current.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, current, requireOwner); err != nil {
		return Cat{}, err
	}
	return current, nil
}
