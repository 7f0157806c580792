package memory

import (
	"context"

	"bunny-happiness/internal/domain/summary"
)

// SummaryStore expone el Store como summary.Store.
func (s *Store) SummaryStore() summary.Store {
	return &summaryStore{s: s}
}

type summaryStore struct {
	s *Store
}

func (ss *summaryStore) GetSummary(ctx context.Context) (summary.Summary, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	if ss.s.summary == nil {
		return summary.Summary{}, summary.ErrNotFound
	}
	return *ss.s.summary, nil
}

func (ss *summaryStore) PutSummary(ctx context.Context, sum summary.Summary) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	ss.putLocked(sum)
	return nil
}

func (ss *summaryStore) putLocked(sum summary.Summary) {
	cp := sum
	ss.s.summary = &cp
}

// RunInTx serializa sobre el lock global; la escritura se aplica solo si fn
// no devuelve error.
func (ss *summaryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx summary.Tx) error) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	tx := &summaryTx{s: ss.s}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	if tx.put != nil {
		cp := *tx.put
		ss.s.summary = &cp
	}
	return nil
}

type summaryTx struct {
	s   *Store
	put *summary.Summary
}

func (t *summaryTx) GetSummary(ctx context.Context) (summary.Summary, error) {
	if t.put != nil {
		return *t.put, nil
	}
	if t.s.summary == nil {
		return summary.Summary{}, summary.ErrNotFound
	}
	return *t.s.summary, nil
}

func (t *summaryTx) PutSummary(ctx context.Context, sum summary.Summary) error {
	cp := sum
	t.put = &cp
	return nil
}
