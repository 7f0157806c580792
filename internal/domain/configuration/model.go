package configuration

// Configuration es el registro singleton de scores. El procesador de eventos
// lo lee fuera de su transacción (los cambios de config no necesitan
// linealizarse con los eventos); solo el path administrativo lo escribe.
type Configuration struct {
	RewardScore int
	PlayScore   int

	Meals      Meals
	Activities Activities
}

type Meals struct {
	Lettuce int
	Carrot  int
}

type Activities struct {
	Petting  int
	Grooming int
}

// Default replica los valores con los que se siembra la configuración base.
func Default() Configuration {
	return Configuration{
		RewardScore: 1,
		PlayScore:   2,
		Meals: Meals{
			Lettuce: 1,
			Carrot:  3,
		},
		Activities: Activities{
			Petting:  1,
			Grooming: 1,
		},
	}
}

// FeedScore devuelve el score de la comida indicada.
// El set de comidas es cerrado: el llamador ya validó el feed type.
func (c Configuration) FeedScore(feedType string) (int, bool) {
	switch feedType {
	case "lettuce":
		return c.Meals.Lettuce, true
	case "carrot":
		return c.Meals.Carrot, true
	default:
		return 0, false
	}
}
