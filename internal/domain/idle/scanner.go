package idle

import (
	"context"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/platform/logger"
)

// Threshold de inactividad: un conejo queda idle si no comió ni jugó en
// las últimas 3 horas.
const Threshold = 3 * time.Hour

const idleReason = "no activity in last 3 hours"

// Report es el resultado de un scan, para visibilidad operacional del
// trigger manual.
type Report struct {
	IdleCount     int
	IdleBunnies   []IdleBunny
	ThresholdTime time.Time
}

type IdleBunny struct {
	ID       string
	Name     string
	LastFeed *time.Time
	LastPlay *time.Time
}

// Scanner recorre todos los conejos y sintetiza un evento idle pendiente por
// cada uno inactivo. Los eventos van en una sola escritura batch y los levanta
// el procesador uno por uno, igual que cualquier evento de usuario.
type Scanner struct {
	bunnies bunnies.Repository
	events  events.Repository
	log     logger.Logger
	now     func() time.Time
}

func NewScanner(bunniesRepo bunnies.Repository, eventsRepo events.Repository, log logger.Logger) *Scanner {
	return &Scanner{
		bunnies: bunniesRepo,
		events:  eventsRepo,
		log:     log,
		now:     time.Now,
	}
}

// Scan ejecuta el barrido: threshold = now − Threshold; idle si lastFeed y
// lastPlay están ambos ausentes o son más viejos que el threshold.
func (s *Scanner) Scan(ctx context.Context) (Report, error) {
	now := s.now()
	threshold := now.Add(-Threshold)

	list, err := s.bunnies.List(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		IdleBunnies:   []IdleBunny{},
		ThresholdTime: threshold,
	}

	var idleEvents []events.Event
	for _, b := range list {
		if !isIdle(b, threshold) {
			continue
		}

		report.IdleBunnies = append(report.IdleBunnies, IdleBunny{
			ID:       b.ID,
			Name:     b.Name,
			LastFeed: b.LastFeed,
			LastPlay: b.LastPlay,
		})

		idleEvents = append(idleEvents, events.NewIdleEvent(b.ID, events.IdlePayload{
			Reason:        idleReason,
			ThresholdTime: threshold,
			LastFeed:      b.LastFeed,
			LastPlay:      b.LastPlay,
		}, now))
	}
	report.IdleCount = len(report.IdleBunnies)

	if len(idleEvents) > 0 {
		if err := s.events.CreateBatch(ctx, idleEvents); err != nil {
			return Report{}, err
		}
	}

	s.log.Info("idle scan completed", map[string]any{
		"scanned": len(list),
		"idle":    report.IdleCount,
	})
	return report, nil
}

// Run ejecuta el scan en cada tick hasta que el contexto se cancele. El
// scheduling real (cron, timezone) es un detalle del deployment; acá solo
// hace falta que alguien invoque el scan a intervalo fijo.
func (s *Scanner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				s.log.Error("idle scan failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

func isIdle(b bunnies.Bunny, threshold time.Time) bool {
	fedRecently := b.LastFeed != nil && !b.LastFeed.Before(threshold)
	playedRecently := b.LastPlay != nil && !b.LastPlay.Before(threshold)
	return !fedRecently && !playedRecently
}
