package memory

import (
	"sync"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/configuration"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/domain/summary"
)

// Store agrupa todas las colecciones en memoria detrás de un único mutex.
// Las transacciones serializan sobre ese lock y bufferean sus escrituras,
// así un error en el medio no deja estado a medias. Es el backend de
// dev/tests; el contrato es el mismo que el de postgres.
type Store struct {
	mu sync.RWMutex

	bunnies map[string]bunnies.Bunny
	events  map[string]events.Event
	config  *configuration.Configuration
	summary *summary.Summary
}

func NewStore() *Store {
	return &Store{
		bunnies: make(map[string]bunnies.Bunny),
		events:  make(map[string]events.Event),
	}
}

// Vistas por colección, cada una implementa el Repository de su dominio.

func (s *Store) Bunnies() bunnies.Repository {
	return &bunnyRepo{s: s}
}

func (s *Store) Events() events.Repository {
	return &eventRepo{s: s}
}

func (s *Store) Configurations() configuration.Repository {
	return &configurationRepo{s: s}
}

// cloneBunny evita aliasing del slice de playmates entre el store y los callers.
func cloneBunny(b bunnies.Bunny) bunnies.Bunny {
	if b.PlayMates != nil {
		mates := make([]string, len(b.PlayMates))
		copy(mates, b.PlayMates)
		b.PlayMates = mates
	}
	return b
}
