package memory

import (
	"context"
	"errors"
	"sort"

	"bunny-happiness/internal/domain/events"
)

type eventRepo struct {
	s *Store
}

func (r *eventRepo) Create(ctx context.Context, e events.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.createLocked(e)
}

func (r *eventRepo) CreateBatch(ctx context.Context, evs []events.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, e := range evs {
		if err := r.createLocked(e); err != nil {
			return err
		}
	}
	return nil
}

func (r *eventRepo) createLocked(e events.Event) error {
	if e.ID == "" {
		return errors.New("event id required")
	}
	if _, exists := r.s.events[e.ID]; exists {
		return errors.New("event already exists")
	}
	r.s.events[e.ID] = e
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.events[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return e, nil
}

func (r *eventRepo) ListByBunny(ctx context.Context, bunnyID string, limit int) ([]events.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	out := make([]events.Event, 0)
	for _, e := range r.s.events {
		if e.BunnyID == bunnyID {
			out = append(out, e)
		}
	}

	// Más reciente primero
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *eventRepo) ListPending(ctx context.Context, limit int) ([]events.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	out := make([]events.Event, 0)
	for _, e := range r.s.events {
		if e.Status == events.StatusPending {
			out = append(out, e)
		}
	}

	// Más viejo primero: FIFO aproximado para el dispatcher
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
