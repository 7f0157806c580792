package configuration

import (
	"context"
	"errors"
)

// ErrNotFound indica que la configuración base no existe todavía.
// Para el procesador de eventos esto es fatal: sin config no hay scores.
var ErrNotFound = errors.New("base configuration not found")

type Repository interface {
	Get(ctx context.Context) (Configuration, error)
	Put(ctx context.Context, c Configuration) error
}
