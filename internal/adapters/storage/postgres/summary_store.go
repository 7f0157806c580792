package postgres

import (
	"context"
	"database/sql"

	"bunny-happiness/internal/domain/summary"
)

// summaryKey es la clave fija del singleton.
const summaryKey = "current"

func NewSummaryStore(db *sql.DB) *SummaryStore {
	return &SummaryStore{db: db}
}

type SummaryStore struct {
	db *sql.DB
}

func (s *SummaryStore) GetSummary(ctx context.Context) (summary.Summary, error) {
	return getSummary(ctx, s.db, false)
}

func (s *SummaryStore) PutSummary(ctx context.Context, sum summary.Summary) error {
	return putSummary(ctx, s.db, sum)
}

// RunInTx abre una transacción read-write; el GetSummary interno toma un
// row lock sobre el singleton, así dos maintainers concurrentes se
// serializan en vez de pisarse el read-then-write.
func (s *SummaryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx summary.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(ctx, &sumTx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

type sumTx struct {
	tx *sql.Tx
}

func (t *sumTx) GetSummary(ctx context.Context) (summary.Summary, error) {
	return getSummary(ctx, t.tx, true)
}

func (t *sumTx) PutSummary(ctx context.Context, sum summary.Summary) error {
	return putSummary(ctx, t.tx, sum)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getSummary(ctx context.Context, q execer, forUpdate bool) (summary.Summary, error) {
	query := `
		SELECT total_bunnies, total_happiness, average, last_updated, last_event_id
		FROM summary_data
		WHERE id = $1
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var sum summary.Summary
	err := q.QueryRowContext(ctx, query, summaryKey).Scan(
		&sum.TotalBunnies,
		&sum.TotalHappiness,
		&sum.AverageHappiness,
		&sum.LastUpdated,
		&sum.LastEventID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return summary.Summary{}, summary.ErrNotFound
		}
		return summary.Summary{}, err
	}
	return sum, nil
}

func putSummary(ctx context.Context, q execer, sum summary.Summary) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO summary_data (id, total_bunnies, total_happiness, average, last_updated, last_event_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			total_bunnies   = EXCLUDED.total_bunnies,
			total_happiness = EXCLUDED.total_happiness,
			average         = EXCLUDED.average,
			last_updated    = EXCLUDED.last_updated,
			last_event_id   = EXCLUDED.last_event_id
	`,
		summaryKey,
		sum.TotalBunnies,
		sum.TotalHappiness,
		sum.AverageHappiness,
		sum.LastUpdated,
		sum.LastEventID,
	)
	return err
}
