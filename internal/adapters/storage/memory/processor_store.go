package memory

import (
	"context"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/domain/processor"
)

// ProcessorStore expone el Store como processor.Store.
func (s *Store) ProcessorStore() processor.Store {
	return &procStore{s: s}
}

type procStore struct {
	s *Store
}

func (p *procStore) ClaimEvent(ctx context.Context, id string) (events.Event, bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	e, ok := p.s.events[id]
	if !ok {
		return events.Event{}, false, events.ErrNotFound
	}
	if e.Status != events.StatusPending {
		return events.Event{}, false, nil
	}

	e.Status = events.StatusProcessing
	p.s.events[id] = e
	return e, true, nil
}

func (p *procStore) MarkEventError(ctx context.Context, id, message string, at time.Time) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	e, ok := p.s.events[id]
	if !ok {
		return events.ErrNotFound
	}

	e.Status = events.StatusError
	e.ErrorMessage = message
	e.ErrorAt = &at
	p.s.events[id] = e
	return nil
}

// RunInTx serializa con el lock global y bufferea las escrituras: si fn
// devuelve error no se aplica nada, igual que un rollback.
func (p *procStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx processor.Tx) error) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	tx := &procTx{
		s:          p.s,
		putBunnies: make(map[string]bunnies.Bunny),
		putEvents:  make(map[string]events.Event),
	}

	if err := fn(ctx, tx); err != nil {
		return err
	}

	for id, b := range tx.putBunnies {
		p.s.bunnies[id] = b
	}
	for id, e := range tx.putEvents {
		p.s.events[id] = e
	}
	return nil
}

type procTx struct {
	s          *Store
	putBunnies map[string]bunnies.Bunny
	putEvents  map[string]events.Event
}

func (t *procTx) GetBunny(ctx context.Context, id string) (bunnies.Bunny, error) {
	if b, ok := t.putBunnies[id]; ok {
		return cloneBunny(b), nil
	}
	b, ok := t.s.bunnies[id]
	if !ok {
		return bunnies.Bunny{}, bunnies.ErrNotFound
	}
	return cloneBunny(b), nil
}

func (t *procTx) PutBunny(ctx context.Context, b bunnies.Bunny) error {
	if _, ok := t.s.bunnies[b.ID]; !ok {
		if _, buffered := t.putBunnies[b.ID]; !buffered {
			return bunnies.ErrNotFound
		}
	}
	t.putBunnies[b.ID] = cloneBunny(b)
	return nil
}

func (t *procTx) UpdateEvent(ctx context.Context, e events.Event) error {
	if _, ok := t.s.events[e.ID]; !ok {
		return events.ErrNotFound
	}
	t.putEvents[e.ID] = e
	return nil
}
