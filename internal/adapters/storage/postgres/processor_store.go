package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/events"
	"bunny-happiness/internal/domain/processor"
)

// maxTxAttempts acota los reintentos por contención (deadlock/serialización).
const maxTxAttempts = 3

// NewProcessorStore implementa processor.Store sobre Postgres.
// El claim es un UPDATE condicional (una sola sentencia, atómico) y el
// resto del procesamiento corre dentro de una transacción con row locks.
func NewProcessorStore(db *sql.DB) *ProcessorStore {
	return &ProcessorStore{db: db}
}

type ProcessorStore struct {
	db *sql.DB
}

func (p *ProcessorStore) ClaimEvent(ctx context.Context, id string) (events.Event, bool, error) {
	row := p.db.QueryRowContext(ctx, `
		UPDATE bunny_events
		SET status = $1
		WHERE id = $2 AND status = $3
		RETURNING `+eventColumns,
		events.StatusProcessing, id, events.StatusPending,
	)

	e, err := scanEvent(row)
	if err == nil {
		return e, true, nil
	}
	if err != events.ErrNotFound {
		return events.Event{}, false, err
	}

	// El UPDATE no tocó filas: o el evento no existe, o ya no está pending.
	var exists bool
	if err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM bunny_events WHERE id = $1)
	`, id).Scan(&exists); err != nil {
		return events.Event{}, false, err
	}
	if !exists {
		return events.Event{}, false, events.ErrNotFound
	}
	return events.Event{}, false, nil
}

func (p *ProcessorStore) MarkEventError(ctx context.Context, id, message string, at time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bunny_events
		SET status = $1, error_message = $2, error_at = $3
		WHERE id = $4
	`, events.StatusError, message, at, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}

// RunInTx ejecuta fn en una transacción. Si Postgres aborta por contención
// (deadlock 40P01 o fallo de serialización 40001) se reintenta con una
// transacción nueva: fn es re-ejecutable y un abort por contención no es un
// fallo del evento.
func (p *ProcessorStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx processor.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = p.runTx(ctx, fn)
		if !isContentionErr(err) {
			return err
		}
	}
	return err
}

func (p *ProcessorStore) runTx(ctx context.Context, fn func(ctx context.Context, tx processor.Tx) error) error {
	sqlTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(ctx, &procTx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

func isContentionErr(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

type procTx struct {
	tx *sql.Tx
}

// GetBunny toma un row lock: dos eventos sobre el mismo conejo (o sobre el
// mismo par conejo/partner) se serializan acá.
func (t *procTx) GetBunny(ctx context.Context, id string) (bunnies.Bunny, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+bunnyColumns+`
		FROM bunnies
		WHERE id = $1
		FOR UPDATE
	`, id)

	return scanBunny(row)
}

func (t *procTx) PutBunny(ctx context.Context, b bunnies.Bunny) error {
	mates, err := json.Marshal(playMatesOrEmpty(b.PlayMates))
	if err != nil {
		return err
	}

	res, err := t.tx.ExecContext(ctx, `
		UPDATE bunnies
		SET happiness = $1, play_mates = $2, last_feed = $3, last_play = $4
		WHERE id = $5
	`,
		b.Happiness,
		mates,
		toNullTime(b.LastFeed),
		toNullTime(b.LastPlay),
		b.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return bunnies.ErrNotFound
	}
	return nil
}

func (t *procTx) UpdateEvent(ctx context.Context, e events.Event) error {
	args, err := eventArgs(e)
	if err != nil {
		return err
	}
	// eventArgs mantiene el orden de eventColumns; el id va primero.
	res, err := t.tx.ExecContext(ctx, `
		UPDATE bunny_events
		SET bunny_id = $2, kind = $3, payload = $4, status = $5, created_at = $6,
		    processed_at = $7, rejected_at = $8, error_at = $9,
		    rejection_reason = $10, error_message = $11, outcome = $12
		WHERE id = $1
	`, args...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return events.ErrNotFound
	}
	return nil
}
