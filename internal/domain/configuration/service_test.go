package configuration

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	stored *Configuration
	puts   int
}

func (r *fakeRepo) Get(_ context.Context) (Configuration, error) {
	if r.stored == nil {
		return Configuration{}, ErrNotFound
	}
	return *r.stored, nil
}

func (r *fakeRepo) Put(_ context.Context, c Configuration) error {
	cp := c
	r.stored = &cp
	r.puts++
	return nil
}

func TestEnsureDefaultSeeds(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	c, err := svc.EnsureDefault(context.Background())
	if err != nil {
		t.Fatalf("ensure default: %v", err)
	}

	want := Default()
	if c != want {
		t.Fatalf("got %+v, want defaults %+v", c, want)
	}
	if repo.puts != 1 {
		t.Fatalf("expected one seed write, got %d", repo.puts)
	}
}

func TestEnsureDefaultKeepsExisting(t *testing.T) {
	existing := Default()
	existing.Meals.Carrot = 5
	repo := &fakeRepo{stored: &existing}
	svc := NewService(repo)

	c, err := svc.EnsureDefault(context.Background())
	if err != nil {
		t.Fatalf("ensure default: %v", err)
	}
	if c.Meals.Carrot != 5 {
		t.Errorf("carrot = %d, administered value should survive", c.Meals.Carrot)
	}
	if repo.puts != 0 {
		t.Errorf("expected no writes over existing config, got %d", repo.puts)
	}
}

func TestUpdateRejectsNegativeScores(t *testing.T) {
	svc := NewService(&fakeRepo{})

	c := Default()
	c.PlayScore = -1
	if _, err := svc.Update(context.Background(), c); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFeedScore(t *testing.T) {
	c := Default()

	if score, ok := c.FeedScore("lettuce"); !ok || score != 1 {
		t.Errorf("lettuce = (%d,%v), want (1,true)", score, ok)
	}
	if score, ok := c.FeedScore("carrot"); !ok || score != 3 {
		t.Errorf("carrot = (%d,%v), want (3,true)", score, ok)
	}
	if _, ok := c.FeedScore("chocolate"); ok {
		t.Error("chocolate should not have a score")
	}
}
