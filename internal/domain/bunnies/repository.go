package bunnies

import (
	"context"
	"errors"
)

// ErrNotFound lo devuelven los adapters cuando el conejo no existe.
var ErrNotFound = errors.New("bunny not found")

type Repository interface {
	Create(ctx context.Context, b Bunny) error
	GetByID(ctx context.Context, id string) (Bunny, error)
	List(ctx context.Context) ([]Bunny, error)
	Delete(ctx context.Context, id string) error
}
