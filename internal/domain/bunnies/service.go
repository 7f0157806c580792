package bunnies

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"bunny-happiness/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Lifecycle recibe altas y bajas de conejos. Lo implementa el mantenedor
// del summary; el service no conoce su implementación.
type Lifecycle interface {
	OnBunnyCreated(ctx context.Context, b Bunny) error
	OnBunnyDeleted(ctx context.Context, b Bunny) error
}

type Service struct {
	repo  Repository
	hooks Lifecycle // puede ser nil
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, hooks Lifecycle, log logger.Logger) *Service {
	return &Service{
		repo:  repo,
		hooks: hooks,
		log:   log,
		now:   time.Now,
	}
}

type CreateInput struct {
	Name      string
	Color     string
	BirthDate *time.Time
	Happiness *int // opcional; default 5
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Bunny, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Bunny{}, ErrInvalidInput
	}

	color := Color(strings.TrimSpace(in.Color))
	if color == "" {
		color = ColorBrown
	}
	if !ValidColor(color) {
		return Bunny{}, ErrInvalidInput
	}

	happiness := 5
	if in.Happiness != nil {
		happiness = *in.Happiness
	}
	if happiness < HappinessMin || happiness > HappinessMax {
		return Bunny{}, ErrInvalidInput
	}

	b := Bunny{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Color:     color,
		BirthDate: in.BirthDate,
		Happiness: happiness,
		PlayMates: []string{},
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return Bunny{}, err
	}

	if s.hooks != nil {
		if err := s.hooks.OnBunnyCreated(ctx, b); err != nil {
			// El alta ya está persistida; el summary se reconcilia con rescan.
			s.log.Warn("summary increment failed", map[string]any{
				"bunny_id": b.ID,
				"error":    err.Error(),
			})
		}
	}
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Bunny, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Bunny{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Bunny, error) {
	return s.repo.List(ctx)
}

// Delete borra el conejo y notifica la baja con el snapshot previo,
// para que el summary descuente exactamente su felicidad al momento del borrado.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.hooks != nil {
		if err := s.hooks.OnBunnyDeleted(ctx, b); err != nil {
			// La baja ya está persistida; el summary se reconcilia con rescan.
			s.log.Warn("summary decrement failed", map[string]any{
				"bunny_id": b.ID,
				"error":    err.Error(),
			})
		}
	}
	return nil
}
