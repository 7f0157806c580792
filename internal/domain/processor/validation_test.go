package processor

import (
	"strings"
	"testing"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/events"
)

func TestValidateEventTiming(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-30 * time.Second)
	exact := now.Add(-time.Minute)
	old := now.Add(-2 * time.Hour)

	cases := []struct {
		name  string
		bunny bunnies.Bunny
		kind  events.Kind
		valid bool
	}{
		{"feed without history", bunnies.Bunny{Name: "a"}, events.KindFeed, true},
		{"feed too soon", bunnies.Bunny{Name: "a", LastFeed: &recent}, events.KindFeed, false},
		{"feed at exact interval", bunnies.Bunny{Name: "a", LastFeed: &exact}, events.KindFeed, true},
		{"feed after long gap", bunnies.Bunny{Name: "a", LastFeed: &old}, events.KindFeed, true},
		{"play ignores last feed", bunnies.Bunny{Name: "a", LastFeed: &recent}, events.KindPlay, true},
		{"play too soon", bunnies.Bunny{Name: "a", LastPlay: &recent}, events.KindPlay, false},
		{"feed ignores last play", bunnies.Bunny{Name: "a", LastPlay: &recent}, events.KindFeed, true},
		{"idle always valid", bunnies.Bunny{Name: "a", LastFeed: &recent, LastPlay: &recent}, events.KindIdle, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ok, reason := validateEventTiming(c.bunny, c.kind, now)
			if ok != c.valid {
				t.Fatalf("valid = %v (reason=%q), want %v", ok, reason, c.valid)
			}
			if !ok && reason == "" {
				t.Error("invalid timing should carry a reason")
			}
			if ok && reason != "" {
				t.Errorf("valid timing should not carry a reason, got %q", reason)
			}
		})
	}
}

func TestValidateEventTimingReason(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-45 * time.Second)
	b := bunnies.Bunny{Name: "Luna", LastPlay: &recent}

	ok, reason := validateEventTiming(b, events.KindPlay, now)
	if ok {
		t.Fatal("expected invalid timing")
	}
	for _, want := range []string{"Luna", "played with", "45s", "wait at least"} {
		if !strings.Contains(reason, want) {
			t.Errorf("reason %q should mention %q", reason, want)
		}
	}
}
