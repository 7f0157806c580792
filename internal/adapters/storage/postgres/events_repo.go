package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"bunny-happiness/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `
	id, bunny_id, kind, payload, status, created_at,
	processed_at, rejected_at, error_at,
	rejection_reason, error_message, outcome
`

const insertEventSQL = `
	INSERT INTO bunny_events (
		id, bunny_id, kind, payload, status, created_at,
		processed_at, rejected_at, error_at,
		rejection_reason, error_message, outcome
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`

func (r *EventsRepo) Create(ctx context.Context, e events.Event) error {
	args, err := eventArgs(e)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertEventSQL, args...)
	return err
}

// CreateBatch escribe todos los eventos del scan en un solo round-trip.
// No hay transacción entre ellos: cada evento es independiente.
func (r *EventsRepo) CreateBatch(ctx context.Context, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}

	// Un INSERT multi-values alcanza para los tamaños de batch del scanner.
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`
		INSERT INTO bunny_events (
			id, bunny_id, kind, payload, status, created_at,
			processed_at, rejected_at, error_at,
			rejection_reason, error_message, outcome
		) VALUES `)

	for i, e := range evs {
		evArgs, err := eventArgs(e)
		if err != nil {
			return err
		}
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(")
		for j := range evArgs {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(len(args) + j + 1))
		}
		sb.WriteString(")")
		args = append(args, evArgs...)
	}

	_, err := r.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (events.Event, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return events.Event{}, events.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM bunny_events
		WHERE id = $1
	`, id)

	return scanEvent(row)
}

func (r *EventsRepo) ListByBunny(ctx context.Context, bunnyID string, limit int) ([]events.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM bunny_events
		WHERE bunny_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, bunnyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *EventsRepo) ListPending(ctx context.Context, limit int) ([]events.Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM bunny_events
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, events.StatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]events.Event, error) {
	out := make([]events.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func eventArgs(e events.Event) ([]any, error) {
	payload, err := events.MarshalPayload(e.Payload)
	if err != nil {
		return nil, err
	}
	outcome, err := json.Marshal(e.Outcome)
	if err != nil {
		return nil, err
	}

	return []any{
		e.ID,
		e.BunnyID,
		e.Kind,
		payload,
		e.Status,
		e.CreatedAt,
		toNullTime(e.ProcessedAt),
		toNullTime(e.RejectedAt),
		toNullTime(e.ErrorAt),
		e.RejectionReason,
		e.ErrorMessage,
		outcome,
	}, nil
}

func scanEvent(row rowScanner) (events.Event, error) {
	var (
		e           events.Event
		payload     []byte
		outcome     []byte
		processedAt sql.NullTime
		rejectedAt  sql.NullTime
		errorAt     sql.NullTime
	)

	if err := row.Scan(
		&e.ID,
		&e.BunnyID,
		&e.Kind,
		&payload,
		&e.Status,
		&e.CreatedAt,
		&processedAt,
		&rejectedAt,
		&errorAt,
		&e.RejectionReason,
		&e.ErrorMessage,
		&outcome,
	); err != nil {
		if err == sql.ErrNoRows {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, err
	}

	e.ProcessedAt = fromNullTime(processedAt)
	e.RejectedAt = fromNullTime(rejectedAt)
	e.ErrorAt = fromNullTime(errorAt)

	p, err := events.UnmarshalPayload(e.Kind, payload)
	if err != nil {
		return events.Event{}, err
	}
	e.Payload = p

	if len(outcome) > 0 {
		if err := json.Unmarshal(outcome, &e.Outcome); err != nil {
			return events.Event{}, err
		}
	}

	return e, nil
}
