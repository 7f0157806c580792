package configuration

import (
	"context"
	"errors"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context) (Configuration, error) {
	return s.repo.Get(ctx)
}

// EnsureDefault siembra la configuración base si no existe.
// Se invoca en el arranque; no pisa valores ya administrados.
func (s *Service) EnsureDefault(ctx context.Context) (Configuration, error) {
	c, err := s.repo.Get(ctx)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Configuration{}, err
	}

	c = Default()
	if err := s.repo.Put(ctx, c); err != nil {
		return Configuration{}, err
	}
	return c, nil
}

// Update reemplaza la configuración completa (path administrativo).
// Scores negativos solo tienen sentido para decays internos, no para config.
func (s *Service) Update(ctx context.Context, c Configuration) (Configuration, error) {
	if c.RewardScore < 0 || c.PlayScore < 0 ||
		c.Meals.Lettuce < 0 || c.Meals.Carrot < 0 ||
		c.Activities.Petting < 0 || c.Activities.Grooming < 0 {
		return Configuration{}, ErrInvalidInput
	}

	if err := s.repo.Put(ctx, c); err != nil {
		return Configuration{}, err
	}
	return c, nil
}
