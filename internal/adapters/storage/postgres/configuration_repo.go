package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"bunny-happiness/internal/domain/configuration"
)

// configKey es la clave fija del singleton.
const configKey = "base"

type ConfigurationRepo struct {
	db *sql.DB
}

func NewConfigurationRepo(db *sql.DB) *ConfigurationRepo {
	return &ConfigurationRepo{db: db}
}

func (r *ConfigurationRepo) Get(ctx context.Context) (configuration.Configuration, error) {
	var raw []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT config FROM configuration WHERE id = $1
	`, configKey).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return configuration.Configuration{}, configuration.ErrNotFound
		}
		return configuration.Configuration{}, err
	}

	var c configuration.Configuration
	if err := json.Unmarshal(raw, &c); err != nil {
		return configuration.Configuration{}, err
	}
	return c, nil
}

func (r *ConfigurationRepo) Put(ctx context.Context, c configuration.Configuration) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO configuration (id, config) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET config = EXCLUDED.config
	`, configKey, raw)
	return err
}
