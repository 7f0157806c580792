package summary

import (
	"context"
	"errors"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/platform/logger"
)

// errSummaryMissing corta la transacción incremental cuando el singleton no
// existe; el caller cae al rescan, que ya incluye el cambio que disparó todo.
var errSummaryMissing = errors.New("summary missing, rescan required")

// Broadcaster publica cada summary nuevo a los suscriptores en vivo.
type Broadcaster interface {
	Publish(s Summary)
}

// Maintainer mantiene el summary con aritmética de deltas y cae a un rescan
// completo cuando el registro falta. Cada trigger re-chequea la existencia
// por su cuenta; no hay lock entre triggers: si dos corren sobre la ventana
// sin summary, ambos rescans escriben lo mismo (last write wins).
type Maintainer struct {
	store     Store
	bunnies   bunnies.Repository
	broadcast Broadcaster // puede ser nil
	log       logger.Logger
	now       func() time.Time
}

func NewMaintainer(store Store, bunniesRepo bunnies.Repository, broadcast Broadcaster, log logger.Logger) *Maintainer {
	return &Maintainer{
		store:     store,
		bunnies:   bunniesRepo,
		broadcast: broadcast,
		log:       log,
		now:       time.Now,
	}
}

// OnBunnyCreated suma el conejo nuevo al summary (count+1, total+felicidad).
func (m *Maintainer) OnBunnyCreated(ctx context.Context, b bunnies.Bunny) error {
	return m.applyDelta(ctx, func(s Summary) Summary {
		s.TotalBunnies++
		s.TotalHappiness += b.Happiness
		return s
	}, "")
}

// OnBunnyDeleted descuenta exactamente la felicidad que el conejo tenía al
// momento del borrado. Count y total nunca bajan de cero, ni siquiera con
// deletes concurrentes de los últimos conejos.
func (m *Maintainer) OnBunnyDeleted(ctx context.Context, b bunnies.Bunny) error {
	return m.applyDelta(ctx, func(s Summary) Summary {
		s.TotalBunnies = max(0, s.TotalBunnies-1)
		s.TotalHappiness = max(0, s.TotalHappiness-b.Happiness)
		return s
	}, "")
}

// OnEventFinished pliega los deltas grabados en el evento (primario y, para
// play, el del partner) sobre el total. El count no cambia: la felicidad no
// altera la población. Deltas todos en cero => no-op para evitar escrituras
// espurias.
func (m *Maintainer) OnEventFinished(ctx context.Context, e events.Event) error {
	delta := e.Outcome.DeltaHappiness + e.Outcome.PartnerDeltaHappiness
	if delta == 0 {
		m.log.Debug("event has no happiness delta, skipping summary update", map[string]any{
			"event_id": e.ID,
		})
		return nil
	}

	return m.applyDelta(ctx, func(s Summary) Summary {
		s.TotalHappiness += delta
		return s
	}, e.ID)
}

// applyDelta corre la actualización incremental dentro de una transacción que
// re-lee el summary. Si el summary no existe, hace el rescan completo en su
// lugar (el rescan ya refleja el cambio que disparó este trigger).
func (m *Maintainer) applyDelta(ctx context.Context, apply func(Summary) Summary, lastEventID string) error {
	var updated Summary

	err := m.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		s, err := tx.GetSummary(ctx)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return errSummaryMissing
			}
			return err
		}

		s = apply(s)
		s.AverageHappiness = RoundAverage(s.TotalHappiness, s.TotalBunnies)
		s.LastUpdated = m.now()
		if lastEventID != "" {
			s.LastEventID = lastEventID
		}

		if err := tx.PutSummary(ctx, s); err != nil {
			return err
		}
		updated = s
		return nil
	})

	if errors.Is(err, errSummaryMissing) {
		_, err := m.initialize(ctx)
		return err
	}
	if err != nil {
		return err
	}

	m.publish(updated)
	return nil
}

// Rescan recalcula el summary desde el estado actual de todos los conejos.
// Correcto por construcción; es el mecanismo de reconciliación.
func (m *Maintainer) Rescan(ctx context.Context) (Summary, error) {
	list, err := m.bunnies.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	total := 0
	for _, b := range list {
		total += b.Happiness
	}

	return Summary{
		TotalBunnies:     len(list),
		TotalHappiness:   total,
		AverageHappiness: RoundAverage(total, len(list)),
		LastUpdated:      m.now(),
	}, nil
}

// Ensure devuelve el summary, inicializándolo desde un rescan si no existe
// (lazy init para las consultas).
func (m *Maintainer) Ensure(ctx context.Context) (Summary, error) {
	s, err := m.store.GetSummary(ctx)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Summary{}, err
	}
	return m.initialize(ctx)
}

// Recalculate fuerza el rescan y pisa el summary (entry point administrativo).
func (m *Maintainer) Recalculate(ctx context.Context) (Summary, error) {
	return m.initialize(ctx)
}

func (m *Maintainer) initialize(ctx context.Context) (Summary, error) {
	s, err := m.Rescan(ctx)
	if err != nil {
		return Summary{}, err
	}

	// Escritura idempotente: dos inicializaciones concurrentes escriben el
	// mismo resultado, last write wins.
	if err := m.store.PutSummary(ctx, s); err != nil {
		return Summary{}, err
	}

	m.log.Info("summary initialized from rescan", map[string]any{
		"total_bunnies":   s.TotalBunnies,
		"total_happiness": s.TotalHappiness,
	})

	m.publish(s)
	return s, nil
}

func (m *Maintainer) publish(s Summary) {
	if m.broadcast != nil {
		m.broadcast.Publish(s)
	}
}
