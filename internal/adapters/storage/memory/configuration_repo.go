package memory

import (
	"context"

	"bunny-happiness/internal/domain/configuration"
)

type configurationRepo struct {
	s *Store
}

func (r *configurationRepo) Get(ctx context.Context) (configuration.Configuration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if r.s.config == nil {
		return configuration.Configuration{}, configuration.ErrNotFound
	}
	return *r.s.config, nil
}

func (r *configurationRepo) Put(ctx context.Context, c configuration.Configuration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := c
	r.s.config = &cp
	return nil
}
