package summary

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"bunny-happiness/internal/middleware"
	"bunny-happiness/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

func RegisterRoutes(r chi.Router, m *Maintainer, hub *Hub, log logger.Logger) {
	r.Get("/summary", getSummaryHandler(m))
	r.Post("/summary/recalculate", recalculateSummaryHandler(m))
	r.Get("/summary/live", liveSummaryHandler(m, hub, log))
}

// summaryResponse es la proyección agregada de toda la población.
type summaryResponse struct {
	TotalBunnies     int       `json:"total_bunnies"`
	TotalHappiness   int       `json:"total_happiness"`
	AverageHappiness float64   `json:"average_happiness"`
	LastUpdated      time.Time `json:"last_updated"`
	LastEventID      string    `json:"last_event_id,omitempty"`
}

type recalculateResponse struct {
	Success bool            `json:"success"`
	Summary summaryResponse `json:"summary"`
}

// getSummaryHandler godoc
// @Summary Obtener summary de la población
// @Description Devuelve el summary actual. Si no existe todavía, lo inicializa con un rescan completo antes de responder.
// @Tags summary
// @Produce json
// @Success 200 {object} summaryResponse
// @Router /summary [get]
func getSummaryHandler(m *Maintainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Ensure(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toSummaryResponse(s))
	}
}

// recalculateSummaryHandler godoc
// @Summary Recalcular summary (administrativo)
// @Description Fuerza un rescan completo y pisa el summary. Requiere caller autenticado (`X-Debug-User-ID` en dev, Bearer en prod).
// @Tags summary
// @Produce json
// @Success 200 {object} recalculateResponse
// @Failure 401 {string} string "unauthorized"
// @Router /summary/recalculate [post]
func recalculateSummaryHandler(m *Maintainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		s, err := m.Recalculate(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, recalculateResponse{
			Success: true,
			Summary: toSummaryResponse(s),
		})
	}
}

// liveSummaryHandler godoc
// @Summary Suscripción en vivo al summary
// @Description Upgradea a websocket y empuja el summary completo en cada actualización. El primer mensaje es el estado actual.
// @Tags summary
// @Success 101 {string} string "switching protocols"
// @Router /summary/live [get]
func liveSummaryHandler(m *Maintainer, hub *Hub, log logger.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("summary websocket upgrade failed", map[string]any{"error": err.Error()})
			return
		}

		ch := hub.Subscribe(conn)

		// Snapshot inicial, para que el cliente no espere al próximo cambio.
		if s, err := m.Ensure(r.Context()); err == nil {
			if err := conn.WriteJSON(toSummaryResponse(s)); err != nil {
				hub.Unsubscribe(conn)
				_ = conn.Close()
				return
			}
		}

		// Bomba de escritura: una versión por mensaje.
		go func() {
			for s := range ch {
				if err := conn.WriteJSON(toSummaryResponse(s)); err != nil {
					hub.Unsubscribe(conn)
					_ = conn.Close()
					return
				}
			}
		}()

		// Loop de lectura solo para detectar el cierre del cliente.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				hub.Unsubscribe(conn)
				_ = conn.Close()
				return
			}
		}
	}
}

func toSummaryResponse(s Summary) summaryResponse {
	return summaryResponse{
		TotalBunnies:     s.TotalBunnies,
		TotalHappiness:   s.TotalHappiness,
		AverageHappiness: s.AverageHappiness,
		LastUpdated:      s.LastUpdated,
		LastEventID:      s.LastEventID,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
