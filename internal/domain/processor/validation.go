package processor

import (
	"fmt"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/events"
)

// minEventInterval es el intervalo mínimo entre dos eventos del mismo tipo
// para un conejo. El cliente tiene su propio debounce, pero la autoridad
// es el procesador.
const minEventInterval = time.Minute

// validateEventTiming decide si el evento llega demasiado pronto respecto
// del último timestamp relevante (lastFeed para feed, lastPlay para play).
// Sin timestamp previo siempre valida. Los eventos idle no pasan por acá:
// los genera el sistema.
func validateEventTiming(b bunnies.Bunny, kind events.Kind, now time.Time) (bool, string) {
	var last *time.Time
	var action string

	switch kind {
	case events.KindFeed:
		last = b.LastFeed
		action = "fed"
	case events.KindPlay:
		last = b.LastPlay
		action = "played with"
	default:
		return true, ""
	}

	if last == nil {
		return true, ""
	}

	elapsed := now.Sub(*last)
	if elapsed < minEventInterval {
		return false, fmt.Sprintf("%s was %s %s ago, wait at least %s between events",
			b.Name, action, elapsed.Round(time.Second), minEventInterval)
	}
	return true, ""
}
