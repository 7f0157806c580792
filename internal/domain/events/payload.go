package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload es una unión cerrada por Kind: cada tipo de evento carga
// solo sus propios campos, validados al construir el evento y no al leerlo.
type Payload interface {
	isPayload()
}

// FeedPayload acompaña a KindFeed.
type FeedPayload struct {
	FeedType FeedType `json:"feed_type"`
}

// PlayPayload acompaña a KindPlay.
type PlayPayload struct {
	PartnerBunnyID string `json:"partner_bunny_id"`
}

// IdlePayload acompaña a KindIdle: snapshot de actividad al momento del scan.
type IdlePayload struct {
	Reason        string     `json:"reason"`
	ThresholdTime time.Time  `json:"threshold_time"`
	LastFeed      *time.Time `json:"last_feed,omitempty"`
	LastPlay      *time.Time `json:"last_play,omitempty"`
}

func (FeedPayload) isPayload() {}
func (PlayPayload) isPayload() {}
func (IdlePayload) isPayload() {}

// MarshalPayload serializa el payload para persistirlo junto al Kind.
func MarshalPayload(p Payload) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// UnmarshalPayload reconstruye la unión a partir del Kind persistido.
func UnmarshalPayload(kind Kind, raw []byte) (Payload, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch kind {
	case KindFeed:
		var p FeedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindPlay:
		var p PlayPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindIdle:
		var p IdlePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}
