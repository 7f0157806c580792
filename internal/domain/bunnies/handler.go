package bunnies

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/bunnies", func(br chi.Router) {
		br.Post("/", createBunnyHandler(svc))
		br.Get("/", listBunniesHandler(svc))
		br.Get("/{bunnyID}", getBunnyHandler(svc))
		br.Delete("/{bunnyID}", deleteBunnyHandler(svc))
	})
}

type createBunnyRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color" enums:"brown,white,gray,black,spotted"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD opcional
	Happiness *int   `json:"happiness"`  // opcional, default 5
}

type bunnyResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Color     Color      `json:"color"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Happiness int        `json:"happiness"`
	PlayMates []string   `json:"play_mates"`
	LastFeed  *time.Time `json:"last_feed,omitempty"`
	LastPlay  *time.Time `json:"last_play,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// createBunnyHandler godoc
// @Summary Registrar conejo
// @Description Crea un nuevo conejo. La felicidad inicial es 5 salvo que se indique otra (siempre dentro de [0,10]). El alta dispara la actualización incremental del summary.
// @Tags bunnies
// @Accept json
// @Produce json
// @Param payload body createBunnyRequest true "Datos del conejo; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} bunnyResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Router /bunnies [post]
func createBunnyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBunnyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			bd = &t
		}

		b, err := svc.Create(r.Context(), CreateInput{
			Name:      req.Name,
			Color:     req.Color,
			BirthDate: bd,
			Happiness: req.Happiness,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toBunnyResponse(b))
	}
}

// listBunniesHandler godoc
// @Summary Listar conejos
// @Tags bunnies
// @Produce json
// @Success 200 {array} bunnyResponse
// @Router /bunnies [get]
func listBunniesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out := make([]bunnyResponse, 0, len(list))
		for _, b := range list {
			out = append(out, toBunnyResponse(b))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getBunnyHandler godoc
// @Summary Obtener conejo
// @Tags bunnies
// @Produce json
// @Param bunnyID path string true "ID del conejo"
// @Success 200 {object} bunnyResponse
// @Failure 404 {string} string "bunny not found"
// @Router /bunnies/{bunnyID} [get]
func getBunnyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := svc.GetByID(r.Context(), chi.URLParam(r, "bunnyID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "bunny not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toBunnyResponse(b))
	}
}

// deleteBunnyHandler godoc
// @Summary Borrar conejo
// @Description Borra el conejo y descuenta su felicidad del summary (decremento exacto al snapshot previo al borrado).
// @Tags bunnies
// @Param bunnyID path string true "ID del conejo"
// @Success 204 {string} string ""
// @Failure 404 {string} string "bunny not found"
// @Router /bunnies/{bunnyID} [delete]
func deleteBunnyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "bunnyID")); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "bunny not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toBunnyResponse(b Bunny) bunnyResponse {
	mates := b.PlayMates
	if mates == nil {
		mates = []string{}
	}
	return bunnyResponse{
		ID:        b.ID,
		Name:      b.Name,
		Color:     b.Color,
		BirthDate: b.BirthDate,
		Happiness: b.Happiness,
		PlayMates: mates,
		LastFeed:  b.LastFeed,
		LastPlay:  b.LastPlay,
		AvatarURL: b.AvatarURL,
		CreatedAt: b.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
