package events

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven los adapters cuando el evento no existe.
var ErrNotFound = errors.New("event not found")

type Repository interface {
	Create(ctx context.Context, e Event) error

	// CreateBatch persiste varios eventos en una sola escritura multi-documento.
	// No necesita transacción entre ellos: cada evento es independiente y lo
	// levanta el procesador por separado.
	CreateBatch(ctx context.Context, evs []Event) error

	GetByID(ctx context.Context, id string) (Event, error)
	ListByBunny(ctx context.Context, bunnyID string, limit int) ([]Event, error)

	// ListPending devuelve eventos en status pending, más viejos primero.
	// Es la fuente del dispatcher; la redelivery es segura porque el claim
	// del procesador es condicional.
	ListPending(ctx context.Context, limit int) ([]Event, error)
}
