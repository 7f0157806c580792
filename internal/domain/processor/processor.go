package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/configuration"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/platform/logger"
)

var errBunnyNotFound = errors.New("bunny not found")

// Completions recibe los eventos que terminaron en finished, ya con el
// commit hecho. Lo implementa el mantenedor del summary.
type Completions interface {
	OnEventFinished(ctx context.Context, e events.Event) error
}

// Processor consume eventos recién creados y los lleva a un status terminal:
// pending → processing → {finished, rejected, error}.
//
// Contrato de fallos (ver Process): todo lo que sale mal durante el
// procesamiento queda registrado en el propio evento, nunca se propaga al
// que lo encoló — el caller ya recibió su 202.
type Processor struct {
	store       Store
	configs     configuration.Repository
	completions Completions // puede ser nil
	log         logger.Logger
	now         func() time.Time
}

func New(store Store, configs configuration.Repository, completions Completions, log logger.Logger) *Processor {
	return &Processor{
		store:       store,
		configs:     configs,
		completions: completions,
		log:         log,
		now:         time.Now,
	}
}

// Process procesa un evento por ID. Es seguro invocarlo más de una vez para
// el mismo evento (entrega at-least-once): el claim condicional garantiza que
// solo una invocación aplica efectos.
//
// Devuelve error solo si ni siquiera se pudo reclamar o registrar el fallo;
// en ese caso el evento sigue pending y el dispatcher lo reintenta.
func (p *Processor) Process(ctx context.Context, eventID string) error {
	ev, claimed, err := p.store.ClaimEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("claim event %s: %w", eventID, err)
	}
	if !claimed {
		// Otro worker lo tomó, o ya es terminal. No-op.
		p.log.Debug("event already claimed", map[string]any{"event_id": eventID})
		return nil
	}

	now := p.now()

	// La config se lee fuera de la transacción: es read-only para el
	// procesador y sus cambios no se linealizan con los eventos.
	cfg, err := p.configs.Get(ctx)
	if err != nil {
		p.fail(ctx, ev, err, now)
		return nil
	}

	var finished *events.Event

	txErr := p.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		finished = nil // el bloque puede reintentarse por contención

		var partnerID string
		if ev.Kind == events.KindPlay {
			payload, ok := ev.Payload.(events.PlayPayload)
			if !ok || payload.PartnerBunnyID == "" {
				return errNoPlayPartner
			}
			partnerID = payload.PartnerBunnyID
		}

		b, partner, err := lockBunnies(ctx, tx, ev.BunnyID, partnerID)
		if err != nil {
			if errors.Is(err, bunnies.ErrNotFound) {
				return errBunnyNotFound
			}
			return err
		}

		// Timing solo para feed/play: los idle los genera el sistema.
		if ev.Kind == events.KindFeed || ev.Kind == events.KindPlay {
			if ok, reason := validateEventTiming(b, ev.Kind, now); !ok {
				return p.reject(ctx, tx, ev, reason, now)
			}
		}

		var eff effect
		switch ev.Kind {
		case events.KindFeed:
			payload, ok := ev.Payload.(events.FeedPayload)
			if !ok {
				return errUnknownFeedType
			}
			eff, err = feedEffect(cfg, b, payload, now)
			if err != nil {
				return err
			}

		case events.KindPlay:
			if ok, reason := validateEventTiming(partner, events.KindPlay, now); !ok {
				return p.reject(ctx, tx, ev, fmt.Sprintf("partner bunny %s: %s", partner.Name, reason), now)
			}

			eff = playEffect(cfg, b, partner, now)

		case events.KindIdle:
			eff = idleEffect(b)

		default:
			return errUnknownKind
		}

		if err := tx.PutBunny(ctx, eff.primary); err != nil {
			return err
		}
		if eff.partner != nil {
			if err := tx.PutBunny(ctx, *eff.partner); err != nil {
				return err
			}
		}

		ev.Status = events.StatusFinished
		ev.ProcessedAt = &now
		ev.Outcome = eff.outcome
		if err := tx.UpdateEvent(ctx, ev); err != nil {
			return err
		}

		done := ev
		finished = &done
		return nil
	})

	if txErr != nil {
		p.fail(ctx, ev, txErr, now)
		return nil
	}

	if finished != nil {
		p.log.Info("event finished", map[string]any{
			"event_id": finished.ID,
			"bunny_id": finished.BunnyID,
			"kind":     string(finished.Kind),
			"delta":    finished.Outcome.DeltaHappiness,
		})
		if p.completions != nil {
			if err := p.completions.OnEventFinished(ctx, *finished); err != nil {
				// El evento quedó finished; el summary se reconcilia con rescan.
				p.log.Error("summary update failed", map[string]any{
					"event_id": finished.ID,
					"error":    err.Error(),
				})
			}
		}
	} else {
		p.log.Info("event rejected", map[string]any{
			"event_id": ev.ID,
			"bunny_id": ev.BunnyID,
			"kind":     string(ev.Kind),
		})
	}

	return nil
}

// lockBunnies trae el conejo del evento y, para play, también el partner.
// Los row locks se piden siempre en orden de ID: dos eventos play cruzados
// sobre el mismo par (A juega con B mientras B juega con A) no pueden
// quedar esperándose en círculo y deadlockear en el store.
func lockBunnies(ctx context.Context, tx Tx, primaryID, partnerID string) (bunnies.Bunny, bunnies.Bunny, error) {
	if partnerID == "" {
		b, err := tx.GetBunny(ctx, primaryID)
		return b, bunnies.Bunny{}, err
	}
	if partnerID == primaryID {
		b, err := tx.GetBunny(ctx, primaryID)
		return b, b, err
	}

	firstID, secondID := primaryID, partnerID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	first, err := tx.GetBunny(ctx, firstID)
	if err != nil {
		return bunnies.Bunny{}, bunnies.Bunny{}, err
	}
	second, err := tx.GetBunny(ctx, secondID)
	if err != nil {
		return bunnies.Bunny{}, bunnies.Bunny{}, err
	}

	if firstID == primaryID {
		return first, second, nil
	}
	return second, first, nil
}

// reject escribe el status rejected dentro de la transacción y corta el
// procesamiento. Es un resultado normal, no un error: devolvemos nil para
// que la transacción commitee la escritura del rechazo.
func (p *Processor) reject(ctx context.Context, tx Tx, ev events.Event, reason string, now time.Time) error {
	ev.Status = events.StatusRejected
	ev.RejectionReason = reason
	ev.RejectedAt = &now
	return tx.UpdateEvent(ctx, ev)
}

// fail registra el status terminal error. Sin retry automático: la
// resubmisión es manual (un evento nuevo) o un fix operacional.
func (p *Processor) fail(ctx context.Context, ev events.Event, cause error, now time.Time) {
	p.log.Error("event processing failed", map[string]any{
		"event_id": ev.ID,
		"bunny_id": ev.BunnyID,
		"kind":     string(ev.Kind),
		"error":    cause.Error(),
	})

	if err := p.store.MarkEventError(ctx, ev.ID, cause.Error(), now); err != nil {
		// Peor caso: evento clavado en processing. Estado fatal que pide
		// intervención operacional, igual que un worker que murió a mitad.
		p.log.Error("could not mark event as error", map[string]any{
			"event_id": ev.ID,
			"error":    err.Error(),
		})
	}
}
