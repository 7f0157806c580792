package events

import "time"

// Kind define los tipos de evento soportados (set cerrado).
type Kind string

const (
	KindFeed Kind = "feed"
	KindPlay Kind = "play"
	KindIdle Kind = "idle"
)

// Status modela la máquina de estados del evento:
// pending → processing → {finished, rejected, error}.
// Los tres estados finales son absorbentes; un evento terminado nunca se reprocesa.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusFinished   Status = "finished"
	StatusRejected   Status = "rejected"
	StatusError      Status = "error"
)

// Terminal indica si el status es absorbente.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusRejected || s == StatusError
}

// FeedType define las comidas válidas.
type FeedType string

const (
	FeedLettuce FeedType = "lettuce"
	FeedCarrot  FeedType = "carrot"
)

// Event es un registro append-only de una acción sobre uno o dos conejos.
// Lo crea quien lo envía y a partir de ahí lo muta exclusivamente el
// procesador a través de sus transiciones de status.
type Event struct {
	ID      string
	BunnyID string

	Kind    Kind
	Payload Payload

	Status    Status
	CreatedAt time.Time

	ProcessedAt *time.Time
	RejectedAt  *time.Time
	ErrorAt     *time.Time

	RejectionReason string
	ErrorMessage    string

	Outcome Outcome
}

// Outcome agrupa los campos de resultado que el procesador escribe
// al pasar el evento a finished.
type Outcome struct {
	NewHappiness   int
	DeltaHappiness int

	// Solo para eventos play.
	PlaymateBonus            bool
	PartnerBunnyID           string
	PartnerHappinessIncrease int
	NewPartnerHappiness      int
	PartnerDeltaHappiness    int
}
