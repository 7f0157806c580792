package processor

import (
	"context"
	"strings"
	"testing"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/configuration"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/platform/logger"
)

// fakeStore implementa Store en memoria con el mismo contrato que los
// adapters: claim condicional y transacciones con rollback.
type fakeStore struct {
	bunnies map[string]bunnies.Bunny
	events  map[string]events.Event
	gets    []string // IDs en el orden en que se pidieron los row locks
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bunnies: map[string]bunnies.Bunny{},
		events:  map[string]events.Event{},
	}
}

func (s *fakeStore) ClaimEvent(_ context.Context, id string) (events.Event, bool, error) {
	e, ok := s.events[id]
	if !ok {
		return events.Event{}, false, events.ErrNotFound
	}
	if e.Status != events.StatusPending {
		return events.Event{}, false, nil
	}
	e.Status = events.StatusProcessing
	s.events[id] = e
	return e, true, nil
}

func (s *fakeStore) MarkEventError(_ context.Context, id, message string, at time.Time) error {
	e, ok := s.events[id]
	if !ok {
		return events.ErrNotFound
	}
	e.Status = events.StatusError
	e.ErrorMessage = message
	e.ErrorAt = &at
	s.events[id] = e
	return nil
}

func (s *fakeStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &fakeTx{
		s:          s,
		putBunnies: map[string]bunnies.Bunny{},
		putEvents:  map[string]events.Event{},
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, b := range tx.putBunnies {
		s.bunnies[id] = b
	}
	for id, e := range tx.putEvents {
		s.events[id] = e
	}
	return nil
}

type fakeTx struct {
	s          *fakeStore
	putBunnies map[string]bunnies.Bunny
	putEvents  map[string]events.Event
}

func (t *fakeTx) GetBunny(_ context.Context, id string) (bunnies.Bunny, error) {
	t.s.gets = append(t.s.gets, id)
	if b, ok := t.putBunnies[id]; ok {
		return b, nil
	}
	b, ok := t.s.bunnies[id]
	if !ok {
		return bunnies.Bunny{}, bunnies.ErrNotFound
	}
	return b, nil
}

func (t *fakeTx) PutBunny(_ context.Context, b bunnies.Bunny) error {
	t.putBunnies[b.ID] = b
	return nil
}

func (t *fakeTx) UpdateEvent(_ context.Context, e events.Event) error {
	t.putEvents[e.ID] = e
	return nil
}

type fakeConfigs struct {
	cfg     configuration.Configuration
	missing bool
}

func (f *fakeConfigs) Get(_ context.Context) (configuration.Configuration, error) {
	if f.missing {
		return configuration.Configuration{}, configuration.ErrNotFound
	}
	return f.cfg, nil
}

func (f *fakeConfigs) Put(_ context.Context, c configuration.Configuration) error {
	f.cfg = c
	return nil
}

type recordedCompletions struct {
	finished []events.Event
}

func (r *recordedCompletions) OnEventFinished(_ context.Context, e events.Event) error {
	r.finished = append(r.finished, e)
	return nil
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProcessor(store *fakeStore) (*Processor, *recordedCompletions) {
	comp := &recordedCompletions{}
	p := New(store, &fakeConfigs{cfg: configuration.Default()}, comp, logger.New(logger.Options{Level: logger.Error}))
	p.now = func() time.Time { return testNow }
	return p, comp
}

func seedBunny(s *fakeStore, id string, happiness int) {
	s.bunnies[id] = bunnies.Bunny{
		ID:        id,
		Name:      "bunny-" + id,
		Color:     bunnies.ColorBrown,
		Happiness: happiness,
		PlayMates: []string{},
	}
}

func seedFeed(s *fakeStore, id, bunnyID string, feedType events.FeedType) {
	s.events[id] = events.Event{
		ID:        id,
		BunnyID:   bunnyID,
		Kind:      events.KindFeed,
		Payload:   events.FeedPayload{FeedType: feedType},
		Status:    events.StatusPending,
		CreatedAt: testNow,
	}
}

func seedPlay(s *fakeStore, id, bunnyID, partnerID string) {
	s.events[id] = events.Event{
		ID:        id,
		BunnyID:   bunnyID,
		Kind:      events.KindPlay,
		Payload:   events.PlayPayload{PartnerBunnyID: partnerID},
		Status:    events.StatusPending,
		CreatedAt: testNow,
	}
}

func TestProcessFeedCarrot(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 5)
	seedFeed(store, "e1", "b1", events.FeedCarrot)

	p, comp := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Status != events.StatusFinished {
		t.Fatalf("status = %q, want finished (error=%q)", e.Status, e.ErrorMessage)
	}
	if e.Outcome.NewHappiness != 8 || e.Outcome.DeltaHappiness != 3 {
		t.Errorf("outcome = %+v, want new=8 delta=3", e.Outcome)
	}
	if e.ProcessedAt == nil || !e.ProcessedAt.Equal(testNow) {
		t.Errorf("processed_at = %v, want %v", e.ProcessedAt, testNow)
	}

	b := store.bunnies["b1"]
	if b.Happiness != 8 {
		t.Errorf("happiness = %d, want 8", b.Happiness)
	}
	if b.LastFeed == nil || !b.LastFeed.Equal(testNow) {
		t.Errorf("last_feed = %v, want %v", b.LastFeed, testNow)
	}
	if len(comp.finished) != 1 {
		t.Errorf("completions = %d, want 1", len(comp.finished))
	}
}

func TestProcessFeedClampsAtMax(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 9)
	seedFeed(store, "e1", "b1", events.FeedCarrot)

	p, _ := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Outcome.NewHappiness != 10 || e.Outcome.DeltaHappiness != 1 {
		t.Errorf("outcome = %+v, want clamped new=10 delta=1", e.Outcome)
	}
}

func TestProcessPlayFirstTime(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 5)
	seedBunny(store, "b2", 5)
	seedPlay(store, "e1", "b1", "b2")

	p, _ := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Status != events.StatusFinished {
		t.Fatalf("status = %q, want finished", e.Status)
	}
	if e.Outcome.DeltaHappiness != 2 || e.Outcome.PartnerDeltaHappiness != 2 {
		t.Errorf("deltas = %+v, want 2 per side without bonus", e.Outcome)
	}
	if e.Outcome.PlaymateBonus {
		t.Error("first play should not carry the playmate bonus")
	}

	b1, b2 := store.bunnies["b1"], store.bunnies["b2"]
	if b1.Happiness != 7 || b2.Happiness != 7 {
		t.Errorf("happiness = %d/%d, want 7/7", b1.Happiness, b2.Happiness)
	}
	if !b1.IsPlayMate("b2") || !b2.IsPlayMate("b1") {
		t.Error("playmates should be registered on both sides")
	}
	if b1.LastPlay == nil || b2.LastPlay == nil {
		t.Error("last_play should be set on both sides")
	}
}

func TestProcessPlayWithBonus(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 2)
	seedBunny(store, "b2", 2)

	earlier := testNow.Add(-2 * time.Hour)
	b1 := store.bunnies["b1"]
	b1.PlayMates = []string{"b2"}
	b1.LastPlay = &earlier
	store.bunnies["b1"] = b1

	b2 := store.bunnies["b2"]
	b2.PlayMates = []string{"b1"}
	b2.LastPlay = &earlier
	store.bunnies["b2"] = b2

	seedPlay(store, "e1", "b1", "b2")

	p, _ := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if !e.Outcome.PlaymateBonus {
		t.Error("expected playmate bonus")
	}
	if e.Outcome.DeltaHappiness != 4 || e.Outcome.PartnerDeltaHappiness != 4 {
		t.Errorf("deltas = %+v, want doubled 4 per side", e.Outcome)
	}
	if got := store.bunnies["b1"].PlayMates; len(got) != 1 {
		t.Errorf("playmates = %v, repeat plays must not duplicate entries", got)
	}
}

func TestProcessPlayLocksInStableIDOrder(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 5)
	seedBunny(store, "b2", 5)

	// Primario b2, partner b1: los locks igual se piden b1 primero. Dos
	// eventos cruzados sobre el mismo par piden los locks en el mismo orden.
	seedPlay(store, "e1", "b2", "b1")

	p, _ := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	if len(store.gets) != 2 || store.gets[0] != "b1" || store.gets[1] != "b2" {
		t.Fatalf("lock order = %v, want [b1 b2]", store.gets)
	}

	// El orden de locks no puede alterar los roles del evento.
	e := store.events["e1"]
	if e.Status != events.StatusFinished {
		t.Fatalf("status = %q, want finished", e.Status)
	}
	if e.Outcome.PartnerBunnyID != "b1" {
		t.Errorf("partner = %q, want b1", e.Outcome.PartnerBunnyID)
	}
	if store.bunnies["b1"].Happiness != 7 || store.bunnies["b2"].Happiness != 7 {
		t.Errorf("happiness = %d/%d, want 7/7",
			store.bunnies["b1"].Happiness, store.bunnies["b2"].Happiness)
	}
	if !store.bunnies["b2"].IsPlayMate("b1") || !store.bunnies["b1"].IsPlayMate("b2") {
		t.Error("playmates should be registered on both sides")
	}
}

func TestProcessUnknownFeedTypeMarksError(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 5)
	seedFeed(store, "e1", "b1", events.FeedType("chocolate"))

	p, comp := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Status != events.StatusError {
		t.Fatalf("status = %q, want error", e.Status)
	}
	if e.ErrorMessage == "" {
		t.Error("error message should not be empty")
	}
	if e.ErrorAt == nil {
		t.Error("error_at should be set")
	}
	if store.bunnies["b1"].Happiness != 5 {
		t.Errorf("happiness = %d, an unknown feed type must not change the bunny", store.bunnies["b1"].Happiness)
	}
	if store.bunnies["b1"].LastFeed != nil {
		t.Error("last_feed must stay untouched")
	}
	if len(comp.finished) != 0 {
		t.Error("errored events must not reach completions")
	}
}

func TestProcessFeedTooSoonRejected(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 5)

	recent := testNow.Add(-30 * time.Second)
	b := store.bunnies["b1"]
	b.LastFeed = &recent
	store.bunnies["b1"] = b

	seedFeed(store, "e1", "b1", events.FeedLettuce)

	p, comp := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Status != events.StatusRejected {
		t.Fatalf("status = %q, want rejected", e.Status)
	}
	if !strings.Contains(e.RejectionReason, "wait at least") {
		t.Errorf("reason = %q, want wait-between-events message", e.RejectionReason)
	}
	if e.RejectedAt == nil {
		t.Error("rejected_at should be set")
	}
	if store.bunnies["b1"].Happiness != 5 {
		t.Errorf("happiness = %d, rejection must not change state", store.bunnies["b1"].Happiness)
	}
	if len(comp.finished) != 0 {
		t.Error("rejected events must not reach completions")
	}
}

func TestProcessPlayPartnerTooSoonRejected(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 5)
	seedBunny(store, "b2", 5)

	recent := testNow.Add(-10 * time.Second)
	b2 := store.bunnies["b2"]
	b2.LastPlay = &recent
	store.bunnies["b2"] = b2

	seedPlay(store, "e1", "b1", "b2")

	p, _ := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Status != events.StatusRejected {
		t.Fatalf("status = %q, want rejected", e.Status)
	}
	if !strings.Contains(e.RejectionReason, "partner bunny") {
		t.Errorf("reason = %q, want partner attribution", e.RejectionReason)
	}
	if store.bunnies["b1"].Happiness != 5 || store.bunnies["b2"].Happiness != 5 {
		t.Error("rejection must leave both bunnies unchanged")
	}
}

func TestProcessIdleAtFloor(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 0)

	old := testNow.Add(-5 * time.Hour)
	b := store.bunnies["b1"]
	b.LastFeed = &old
	store.bunnies["b1"] = b

	store.events["e1"] = events.Event{
		ID:      "e1",
		BunnyID: "b1",
		Kind:    events.KindIdle,
		Payload: events.IdlePayload{Reason: "no activity in last 3 hours"},
		Status:  events.StatusPending,
	}

	p, _ := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Status != events.StatusFinished {
		t.Fatalf("status = %q, want finished", e.Status)
	}
	if e.Outcome.NewHappiness != 0 || e.Outcome.DeltaHappiness != 0 {
		t.Errorf("outcome = %+v, want floor 0 with delta 0", e.Outcome)
	}

	got := store.bunnies["b1"]
	if got.LastFeed == nil || !got.LastFeed.Equal(old) {
		t.Error("idle decay must not touch activity timestamps")
	}
}

func TestProcessIdleDecay(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 6)
	store.events["e1"] = events.Event{
		ID:      "e1",
		BunnyID: "b1",
		Kind:    events.KindIdle,
		Payload: events.IdlePayload{},
		Status:  events.StatusPending,
	}

	p, _ := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Outcome.NewHappiness != 5 || e.Outcome.DeltaHappiness != -1 {
		t.Errorf("outcome = %+v, want new=5 delta=-1", e.Outcome)
	}
}

func TestProcessMissingBunnyMarksError(t *testing.T) {
	store := newFakeStore()
	seedFeed(store, "e1", "ghost", events.FeedCarrot)

	p, _ := newTestProcessor(store)
	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Status != events.StatusError {
		t.Fatalf("status = %q, want error", e.Status)
	}
	if e.ErrorMessage != "bunny not found" {
		t.Errorf("error = %q, want bunny not found", e.ErrorMessage)
	}
	if e.ErrorAt == nil {
		t.Error("error_at should be set")
	}
}

func TestProcessMissingConfigMarksError(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 5)
	seedFeed(store, "e1", "b1", events.FeedCarrot)

	p := New(store, &fakeConfigs{missing: true}, nil, logger.New(logger.Options{Level: logger.Error}))
	p.now = func() time.Time { return testNow }

	if err := p.Process(context.Background(), "e1"); err != nil {
		t.Fatalf("process: %v", err)
	}

	e := store.events["e1"]
	if e.Status != events.StatusError {
		t.Fatalf("status = %q, want error", e.Status)
	}
	if store.bunnies["b1"].Happiness != 5 {
		t.Error("failed event must not change the bunny")
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	store := newFakeStore()
	seedBunny(store, "b1", 5)
	seedFeed(store, "e1", "b1", events.FeedCarrot)

	p, comp := newTestProcessor(store)
	for i := 0; i < 3; i++ {
		if err := p.Process(context.Background(), "e1"); err != nil {
			t.Fatalf("process #%d: %v", i+1, err)
		}
	}

	if store.bunnies["b1"].Happiness != 8 {
		t.Errorf("happiness = %d, redelivery must apply effects once", store.bunnies["b1"].Happiness)
	}
	if len(comp.finished) != 1 {
		t.Errorf("completions = %d, want 1", len(comp.finished))
	}
}

func TestProcessUnknownEventReturnsError(t *testing.T) {
	store := newFakeStore()
	p, _ := newTestProcessor(store)

	if err := p.Process(context.Background(), "missing"); err == nil {
		t.Fatal("expected error claiming a missing event")
	}
}
