package processor

import (
	"errors"
	"time"

	"bunny-happiness/internal/domain/bunnies"
	"bunny-happiness/internal/domain/configuration"
	"bunny-happiness/internal/domain/events"
)

// idleHappinessDecrease es el decaimiento fijo por inactividad.
const idleHappinessDecrease = 1

var (
	errUnknownFeedType = errors.New("unknown feedType")
	errUnknownKind     = errors.New("unknown eventType")
	errNoPlayPartner   = errors.New("no play partner specified")
)

// effect describe qué hay que aplicar: los conejos ya actualizados (felicidad
// clampada, playmates, timestamps) y el outcome a grabar en el evento. Separa
// el "qué efecto" del "cómo aplicarlo atómicamente" en el procesador.
type effect struct {
	primary bunnies.Bunny
	partner *bunnies.Bunny
	outcome events.Outcome
}

// feedEffect: delta = score configurado para la comida; actualiza felicidad
// (clampada) y lastFeed.
func feedEffect(cfg configuration.Configuration, b bunnies.Bunny, p events.FeedPayload, now time.Time) (effect, error) {
	score, ok := cfg.FeedScore(string(p.FeedType))
	if !ok {
		return effect{}, errUnknownFeedType
	}

	original := b.Happiness
	b.Happiness = bunnies.ClampHappiness(original + score)
	b.LastFeed = &now

	return effect{
		primary: b,
		outcome: events.Outcome{
			NewHappiness:   b.Happiness,
			DeltaHappiness: b.Happiness - original,
		},
	}, nil
}

// playEffect: cada lado decide su propio bonus (2x si el otro ya era playmate),
// así que los dos deltas pueden diferir. El alta en el set de playmates es
// idempotente y los dos lastPlay se actualizan.
func playEffect(cfg configuration.Configuration, b, partner bunnies.Bunny, now time.Time) effect {
	bonus := b.IsPlayMate(partner.ID)
	partnerBonus := partner.IsPlayMate(b.ID)

	increase := cfg.PlayScore
	if bonus {
		increase = cfg.PlayScore * 2
	}
	partnerIncrease := cfg.PlayScore
	if partnerBonus {
		partnerIncrease = cfg.PlayScore * 2
	}

	originalB := b.Happiness
	originalPartner := partner.Happiness

	b.Happiness = bunnies.ClampHappiness(originalB + increase)
	partner.Happiness = bunnies.ClampHappiness(originalPartner + partnerIncrease)

	b.AddPlayMate(partner.ID)
	partner.AddPlayMate(b.ID)

	b.LastPlay = &now
	partner.LastPlay = &now

	return effect{
		primary: b,
		partner: &partner,
		outcome: events.Outcome{
			NewHappiness:             b.Happiness,
			DeltaHappiness:           b.Happiness - originalB,
			PlaymateBonus:            bonus,
			PartnerBunnyID:           partner.ID,
			PartnerHappinessIncrease: partnerIncrease,
			NewPartnerHappiness:      partner.Happiness,
			PartnerDeltaHappiness:    partner.Happiness - originalPartner,
		},
	}
}

// idleEffect: decrece 1 punto clampado. No toca lastFeed/lastPlay: un evento
// idle no debe resetear el reloj de inactividad.
func idleEffect(b bunnies.Bunny) effect {
	original := b.Happiness
	b.Happiness = bunnies.ClampHappiness(original - idleHappinessDecrease)

	return effect{
		primary: b,
		outcome: events.Outcome{
			NewHappiness:   b.Happiness,
			DeltaHappiness: b.Happiness - original,
		},
	}
}
