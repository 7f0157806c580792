package bunnies

import "time"

// Color define los colores soportados para un conejo.
// @Enum brown, white, gray, black, spotted
type Color string

const (
	ColorBrown   Color = "brown"
	ColorWhite   Color = "white"
	ColorGray    Color = "gray"
	ColorBlack   Color = "black"
	ColorSpotted Color = "spotted"
)

// Límites del score de felicidad. Todo update aditivo se clampa a este rango.
const (
	HappinessMin = 0
	HappinessMax = 10
)

// Bunny representa un conejo registrado en el sistema.
// La felicidad, los playmates y los timestamps de actividad los muta
// exclusivamente el procesador de eventos dentro de una transacción.
type Bunny struct {
	ID   string
	Name string

	Color     Color
	BirthDate *time.Time

	Happiness int      // siempre en [HappinessMin, HappinessMax]
	PlayMates []string // IDs de conejos con los que jugó; crece, nunca se poda

	LastFeed *time.Time
	LastPlay *time.Time

	// AvatarURL es opaco para este servicio; el resize/transcodificación
	// vive en otro componente.
	AvatarURL string

	CreatedAt time.Time
}

// ClampHappiness acota un score al rango cerrado [HappinessMin, HappinessMax].
func ClampHappiness(h int) int {
	if h < HappinessMin {
		return HappinessMin
	}
	if h > HappinessMax {
		return HappinessMax
	}
	return h
}

// IsPlayMate indica si partnerID ya está registrado como playmate.
func (b Bunny) IsPlayMate(partnerID string) bool {
	for _, id := range b.PlayMates {
		if id == partnerID {
			return true
		}
	}
	return false
}

// AddPlayMate agrega partnerID al set de playmates si no estaba (idempotente).
func (b *Bunny) AddPlayMate(partnerID string) {
	if b.IsPlayMate(partnerID) {
		return
	}
	b.PlayMates = append(b.PlayMates, partnerID)
}

// ValidColor valida contra el set cerrado de colores.
func ValidColor(c Color) bool {
	switch c {
	case ColorBrown, ColorWhite, ColorGray, ColorBlack, ColorSpotted:
		return true
	default:
		return false
	}
}
