package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Waker despierta al dispatcher después de encolar un evento,
// para no depender solo del intervalo de polling.
type Waker interface {
	Wake()
}

type Service struct {
	repo  Repository
	waker Waker // puede ser nil
	now   func() time.Time
}

func NewService(repo Repository, waker Waker) *Service {
	return &Service{
		repo:  repo,
		waker: waker,
		now:   time.Now,
	}
}

// SubmitFeed encola un evento feed en pending (fire-and-forget).
// La validación de timing y el efecto los resuelve el procesador async.
func (s *Service) SubmitFeed(ctx context.Context, bunnyID string, feedType FeedType) (Event, error) {
	if strings.TrimSpace(bunnyID) == "" {
		return Event{}, ErrInvalidInput
	}
	if feedType != FeedLettuce && feedType != FeedCarrot {
		return Event{}, ErrInvalidInput
	}

	e := Event{
		ID:        uuid.NewString(),
		BunnyID:   strings.TrimSpace(bunnyID),
		Kind:      KindFeed,
		Payload:   FeedPayload{FeedType: feedType},
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	return s.submit(ctx, e)
}

// SubmitPlay encola un evento play con el partner indicado.
func (s *Service) SubmitPlay(ctx context.Context, bunnyID, partnerBunnyID string) (Event, error) {
	if strings.TrimSpace(bunnyID) == "" || strings.TrimSpace(partnerBunnyID) == "" {
		return Event{}, ErrInvalidInput
	}

	e := Event{
		ID:        uuid.NewString(),
		BunnyID:   strings.TrimSpace(bunnyID),
		Kind:      KindPlay,
		Payload:   PlayPayload{PartnerBunnyID: strings.TrimSpace(partnerBunnyID)},
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	return s.submit(ctx, e)
}

// NewIdleEvent arma un evento idle pendiente con el snapshot del scan.
// No lo persiste: el scanner los escribe en batch.
func NewIdleEvent(bunnyID string, payload IdlePayload, now time.Time) Event {
	return Event{
		ID:        uuid.NewString(),
		BunnyID:   bunnyID,
		Kind:      KindIdle,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: now,
	}
}

func (s *Service) submit(ctx context.Context, e Event) (Event, error) {
	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	if s.waker != nil {
		s.waker.Wake()
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Event{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByBunny(ctx context.Context, bunnyID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByBunny(ctx, bunnyID, limit)
}
