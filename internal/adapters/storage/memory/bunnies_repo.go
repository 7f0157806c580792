package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"bunny-happiness/internal/domain/bunnies"
)

type bunnyRepo struct {
	s *Store
}

func (r *bunnyRepo) Create(ctx context.Context, b bunnies.Bunny) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(b.ID) == "" {
		return errors.New("bunny id required")
	}
	if _, exists := r.s.bunnies[b.ID]; exists {
		return errors.New("bunny already exists")
	}
	r.s.bunnies[b.ID] = cloneBunny(b)
	return nil
}

func (r *bunnyRepo) GetByID(ctx context.Context, id string) (bunnies.Bunny, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bunnies[id]
	if !ok {
		return bunnies.Bunny{}, bunnies.ErrNotFound
	}
	return cloneBunny(b), nil
}

func (r *bunnyRepo) List(ctx context.Context) ([]bunnies.Bunny, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]bunnies.Bunny, 0, len(r.s.bunnies))
	for _, b := range r.s.bunnies {
		out = append(out, cloneBunny(b))
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *bunnyRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bunnies[id]; !ok {
		return bunnies.ErrNotFound
	}
	delete(r.s.bunnies, id)
	return nil
}
