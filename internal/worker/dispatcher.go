package worker

import (
	"context"
	"time"

	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/platform/logger"
)

// Processor es lo único que el dispatcher sabe del procesador.
type Processor interface {
	Process(ctx context.Context, eventID string) error
}

// Dispatcher conecta la cola de eventos pending con el procesador: polea la
// colección a intervalo fijo y además se despierta apenas un submit encola
// algo. Cada invocación del procesador corre como unidad de trabajo
// independiente, acotada por un pool de workers.
//
// La redelivery es inofensiva: si un tick y un wake levantan el mismo evento,
// el claim condicional del procesador deja pasar a uno solo.
type Dispatcher struct {
	repo      events.Repository
	processor Processor
	log       logger.Logger

	interval  time.Duration
	batchSize int
	workers   int

	wake chan struct{}
}

type Options struct {
	Interval  time.Duration // default 5s
	BatchSize int           // default 50
	Workers   int           // default 4
}

func NewDispatcher(repo events.Repository, p Processor, log logger.Logger, opts Options) *Dispatcher {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	return &Dispatcher{
		repo:      repo,
		processor: p,
		log:       log,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
		workers:   opts.Workers,
		wake:      make(chan struct{}, 1),
	}
}

// Wake despierta el loop sin bloquear; si ya hay un wake pendiente, alcanza.
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run procesa hasta que el contexto se cancele.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	// Semáforo simple para acotar invocaciones concurrentes.
	sem := make(chan struct{}, d.workers)

	d.log.Info("dispatcher started", map[string]any{
		"interval": d.interval.String(),
		"workers":  d.workers,
	})

	for {
		select {
		case <-ctx.Done():
			// Drenar: esperar a los workers en vuelo.
			for i := 0; i < d.workers; i++ {
				sem <- struct{}{}
			}
			d.log.Info("dispatcher stopped", nil)
			return
		case <-ticker.C:
		case <-d.wake:
		}

		pending, err := d.repo.ListPending(ctx, d.batchSize)
		if err != nil {
			d.log.Error("list pending events failed", map[string]any{"error": err.Error()})
			continue
		}

		for _, ev := range pending {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				continue
			}

			go func(id string) {
				defer func() { <-sem }()
				if err := d.processor.Process(ctx, id); err != nil {
					// El evento sigue pending; el próximo tick lo reintenta.
					d.log.Error("process event failed", map[string]any{
						"event_id": id,
						"error":    err.Error(),
					})
				}
			}(ev.ID)
		}
	}
}
