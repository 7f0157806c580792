package configuration

import (
	"encoding/json"
	"net/http"
	"strings"

	"bunny-happiness/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/configuration", getConfigurationHandler(svc))
	r.Put("/configuration", updateConfigurationHandler(svc))
}

// configurationResponse es la configuración base de scores.
type configurationResponse struct {
	RewardScore int `json:"reward_score"`
	PlayScore   int `json:"play_score"`

	Meals struct {
		Lettuce int `json:"lettuce"`
		Carrot  int `json:"carrot"`
	} `json:"meals"`

	Activities struct {
		Petting  int `json:"petting"`
		Grooming int `json:"grooming"`
	} `json:"activities"`
}

// getConfigurationHandler godoc
// @Summary Obtener configuración de scores
// @Tags configuration
// @Produce json
// @Success 200 {object} configurationResponse
// @Failure 404 {string} string "base configuration not found"
// @Router /configuration [get]
func getConfigurationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context())
		if err != nil {
			http.Error(w, "base configuration not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toConfigurationResponse(c))
	}
}

// updateConfigurationHandler godoc
// @Summary Actualizar configuración de scores
// @Description Path administrativo: requiere caller autenticado (`X-Debug-User-ID` en dev, Bearer en prod). El procesador toma la nueva config para los eventos siguientes; los en vuelo usan la que leyeron.
// @Tags configuration
// @Accept json
// @Produce json
// @Param payload body configurationResponse true "Configuración completa"
// @Success 200 {object} configurationResponse
// @Failure 400 {string} string "invalid json / scores inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /configuration [put]
func updateConfigurationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req configurationResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Update(r.Context(), Configuration{
			RewardScore: req.RewardScore,
			PlayScore:   req.PlayScore,
			Meals: Meals{
				Lettuce: req.Meals.Lettuce,
				Carrot:  req.Meals.Carrot,
			},
			Activities: Activities{
				Petting:  req.Activities.Petting,
				Grooming: req.Activities.Grooming,
			},
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, toConfigurationResponse(c))
	}
}

func toConfigurationResponse(c Configuration) configurationResponse {
	var out configurationResponse
	out.RewardScore = c.RewardScore
	out.PlayScore = c.PlayScore
	out.Meals.Lettuce = c.Meals.Lettuce
	out.Meals.Carrot = c.Meals.Carrot
	out.Activities.Petting = c.Activities.Petting
	out.Activities.Grooming = c.Activities.Grooming
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
