package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"bunny-happiness/internal/domain/bunnies"
)

type BunniesRepo struct {
	db *sql.DB
}

func NewBunniesRepo(db *sql.DB) *BunniesRepo {
	return &BunniesRepo{db: db}
}

const bunnyColumns = `
	id, name, color, birth_date, happiness, play_mates,
	last_feed, last_play, avatar_url, created_at
`

func (r *BunniesRepo) Create(ctx context.Context, b bunnies.Bunny) error {
	mates, err := json.Marshal(playMatesOrEmpty(b.PlayMates))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bunnies (
			id, name, color, birth_date, happiness, play_mates,
			last_feed, last_play, avatar_url, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		b.ID,
		b.Name,
		b.Color,
		toNullTime(b.BirthDate),
		b.Happiness,
		mates,
		toNullTime(b.LastFeed),
		toNullTime(b.LastPlay),
		b.AvatarURL,
		b.CreatedAt,
	)
	return err
}

func (r *BunniesRepo) GetByID(ctx context.Context, id string) (bunnies.Bunny, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return bunnies.Bunny{}, bunnies.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+bunnyColumns+`
		FROM bunnies
		WHERE id = $1
	`, id)

	return scanBunny(row)
}

func (r *BunniesRepo) List(ctx context.Context) ([]bunnies.Bunny, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bunnyColumns+`
		FROM bunnies
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]bunnies.Bunny, 0)
	for rows.Next() {
		b, err := scanBunny(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BunniesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bunnies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return bunnies.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBunny(row rowScanner) (bunnies.Bunny, error) {
	var (
		b        bunnies.Bunny
		bd       sql.NullTime
		lastFeed sql.NullTime
		lastPlay sql.NullTime
		mates    []byte
	)

	if err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Color,
		&bd,
		&b.Happiness,
		&mates,
		&lastFeed,
		&lastPlay,
		&b.AvatarURL,
		&b.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return bunnies.Bunny{}, bunnies.ErrNotFound
		}
		return bunnies.Bunny{}, err
	}

	b.BirthDate = fromNullTime(bd)
	b.LastFeed = fromNullTime(lastFeed)
	b.LastPlay = fromNullTime(lastPlay)

	if len(mates) > 0 {
		if err := json.Unmarshal(mates, &b.PlayMates); err != nil {
			return bunnies.Bunny{}, err
		}
	}
	if b.PlayMates == nil {
		b.PlayMates = []string{}
	}

	return b, nil
}

func playMatesOrEmpty(mates []string) []string {
	if mates == nil {
		return []string{}
	}
	return mates
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
