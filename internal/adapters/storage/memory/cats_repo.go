package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"cat-registry/internal/domain/cats"
	"cat-registry/internal/platform/geo"

	"github.com/paulmach/orb"
)

// catsRepo es el storage in-memory para dev y tests. El contains de área usa
// el mismo polígono que PostGIS, evaluado en planar.
type catsRepo struct {
	mu   sync.RWMutex
	byID map[string]cats.Cat
}

func NewCatsRepo() cats.Repository {
	return &catsRepo{
		byID: make(map[string]cats.Cat),
	}
}

func (r *catsRepo) Create(ctx context.Context, c cats.Cat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("cat id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("cat already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *catsRepo) GetByID(ctx context.Context, id string) (cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cats.Cat{}, cats.ErrNotFound
	}
	return c, nil
}

func (r *catsRepo) List(ctx context.Context) ([]cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cats.Cat, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sortByCreated(out)
	return out, nil
}

func (r *catsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cats.Cat, 0)
	for _, c := range r.byID {
		if c.OwnerUserID == ownerUserID {
			out = append(out, c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *catsRepo) ListWithinBounds(ctx context.Context, bounds orb.Polygon) ([]cats.Cat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cats.Cat, 0)
	for _, c := range r.byID {
		if geo.Contains(bounds, c.Location) {
			out = append(out, c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *catsRepo) Update(ctx context.Context, c cats.Cat, requireOwner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.byID[c.ID]
	if !exists {
		return cats.ErrNotFound
	}
	// Mismo guard condicional que el adapter de Postgres.
	if requireOwner != "" && current.OwnerUserID != requireOwner {
		return cats.ErrNotFound
	}

	r.byID[c.ID] = c
	return nil
}

func (r *catsRepo) Delete(ctx context.Context, id string, requireOwner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.byID[id]
	if !exists {
		return cats.ErrNotFound
	}
	if requireOwner != "" && current.OwnerUserID != requireOwner {
		return cats.ErrNotFound
	}

	delete(r.byID, id)
	return nil
}

// Orden estable por created_at asc (solo para consistencia en dev)
func sortByCreated(items []cats.Cat) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
