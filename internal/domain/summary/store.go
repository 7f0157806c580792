package summary

import (
	"context"
	"errors"
)

// ErrNotFound indica que el registro summary todavía no existe.
// Todo consumidor que lo encuentre ausente debe reconstruirlo con un rescan.
var ErrNotFound = errors.New("summary not found")

// Tx es la vista transaccional del singleton: siempre read-then-write en la
// misma transacción, nunca un incremento a ciegas.
type Tx interface {
	GetSummary(ctx context.Context) (Summary, error)
	PutSummary(ctx context.Context, s Summary) error
}

// Store es el acceso que necesita el mantenedor del summary.
type Store interface {
	GetSummary(ctx context.Context) (Summary, error)
	PutSummary(ctx context.Context, s Summary) error
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
