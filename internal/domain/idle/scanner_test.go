package idle

import (
	"context"
	"testing"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/platform/logger"
)

type fakeBunnies struct {
	list []bunnies.Bunny
}

func (r *fakeBunnies) Create(_ context.Context, b bunnies.Bunny) error {
	r.list = append(r.list, b)
	return nil
}

func (r *fakeBunnies) GetByID(_ context.Context, id string) (bunnies.Bunny, error) {
	for _, b := range r.list {
		if b.ID == id {
			return b, nil
		}
	}
	return bunnies.Bunny{}, bunnies.ErrNotFound
}

func (r *fakeBunnies) List(_ context.Context) ([]bunnies.Bunny, error) {
	return r.list, nil
}

func (r *fakeBunnies) Delete(_ context.Context, id string) error { return nil }

type fakeEvents struct {
	batches [][]events.Event
}

func (r *fakeEvents) Create(_ context.Context, e events.Event) error { return nil }

func (r *fakeEvents) CreateBatch(_ context.Context, evs []events.Event) error {
	r.batches = append(r.batches, evs)
	return nil
}

func (r *fakeEvents) GetByID(_ context.Context, id string) (events.Event, error) {
	return events.Event{}, events.ErrNotFound
}

func (r *fakeEvents) ListByBunny(_ context.Context, bunnyID string, limit int) ([]events.Event, error) {
	return nil, nil
}

func (r *fakeEvents) ListPending(_ context.Context, limit int) ([]events.Event, error) {
	return nil, nil
}

func TestScanClassifiesActivity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recentFeed := now.Add(-time.Hour)
	recentPlay := now.Add(-30 * time.Minute)
	oldFeed := now.Add(-5 * time.Hour)
	oldPlay := now.Add(-4 * time.Hour)

	bunniesRepo := &fakeBunnies{list: []bunnies.Bunny{
		{ID: "never", Name: "Never"},
		{ID: "fed", Name: "Fed", LastFeed: &recentFeed},
		{ID: "played", Name: "Played", LastPlay: &recentPlay},
		{ID: "stale", Name: "Stale", LastFeed: &oldFeed, LastPlay: &oldPlay},
	}}
	eventsRepo := &fakeEvents{}

	s := NewScanner(bunniesRepo, eventsRepo, logger.New(logger.Options{Level: logger.Error}))
	s.now = func() time.Time { return now }

	report, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if report.IdleCount != 2 {
		t.Fatalf("idle count = %d, want 2 (never + stale), got %+v", report.IdleCount, report.IdleBunnies)
	}
	if !report.ThresholdTime.Equal(now.Add(-Threshold)) {
		t.Errorf("threshold = %v, want now-3h", report.ThresholdTime)
	}

	ids := map[string]bool{}
	for _, b := range report.IdleBunnies {
		ids[b.ID] = true
	}
	if !ids["never"] || !ids["stale"] {
		t.Errorf("idle bunnies = %v, want never and stale", ids)
	}

	if len(eventsRepo.batches) != 1 {
		t.Fatalf("batches = %d, want one batch write", len(eventsRepo.batches))
	}
	for _, e := range eventsRepo.batches[0] {
		if e.Kind != events.KindIdle || e.Status != events.StatusPending {
			t.Errorf("event = %+v, want pending idle", e)
		}
		p, ok := e.Payload.(events.IdlePayload)
		if !ok {
			t.Fatalf("payload = %+v, want IdlePayload", e.Payload)
		}
		if !p.ThresholdTime.Equal(report.ThresholdTime) {
			t.Errorf("payload threshold = %v, want %v", p.ThresholdTime, report.ThresholdTime)
		}
	}
}

func TestScanNoIdleBunniesWritesNothing(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Minute)

	bunniesRepo := &fakeBunnies{list: []bunnies.Bunny{
		{ID: "b1", Name: "Activo", LastFeed: &recent},
	}}
	eventsRepo := &fakeEvents{}

	s := NewScanner(bunniesRepo, eventsRepo, logger.New(logger.Options{Level: logger.Error}))
	s.now = func() time.Time { return now }

	report, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.IdleCount != 0 {
		t.Errorf("idle count = %d, want 0", report.IdleCount)
	}
	if len(eventsRepo.batches) != 0 {
		t.Error("empty scan must not write a batch")
	}
}

func TestScanBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	exactly := now.Add(-Threshold)

	bunniesRepo := &fakeBunnies{list: []bunnies.Bunny{
		{ID: "b1", Name: "Borde", LastFeed: &exactly},
	}}
	eventsRepo := &fakeEvents{}

	s := NewScanner(bunniesRepo, eventsRepo, logger.New(logger.Options{Level: logger.Error}))
	s.now = func() time.Time { return now }

	report, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	// Actividad exactamente en el threshold cuenta como reciente.
	if report.IdleCount != 0 {
		t.Errorf("idle count = %d, activity at the threshold is still recent", report.IdleCount)
	}
}
