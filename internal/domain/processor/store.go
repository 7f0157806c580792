package processor

import (
	"context"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/events"
)

// Tx es la vista transaccional del store que usa el procesador: lecturas
// y escrituras sobre conejos y sobre el evento en curso, todas dentro de
// la misma transacción read-write.
type Tx interface {
	GetBunny(ctx context.Context, id string) (bunnies.Bunny, error)
	PutBunny(ctx context.Context, b bunnies.Bunny) error
	UpdateEvent(ctx context.Context, e events.Event) error
}

// Store es el acceso tipado que el procesador necesita del storage.
// Lo implementan los adapters de memoria y postgres.
type Store interface {
	// ClaimEvent pasa el evento de pending a processing con un update
	// condicional atómico. Si el evento ya no está pending (otro worker lo
	// reclamó, o ya es terminal) devuelve claimed=false sin tocar nada.
	// Ese check-and-act único es lo que vuelve segura la entrega at-least-once.
	ClaimEvent(ctx context.Context, id string) (e events.Event, claimed bool, err error)

	// MarkEventError escribe el status terminal error fuera de transacción.
	MarkEventError(ctx context.Context, id, message string, at time.Time) error

	// RunInTx ejecuta fn dentro de una transacción read-write. Si fn devuelve
	// error no se persiste nada. El bloque tiene que ser re-ejecutable: el
	// store puede reintentar por contención.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
