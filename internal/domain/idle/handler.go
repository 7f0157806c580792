package idle

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, s *Scanner) {
	r.Post("/idle-scan", manualScanHandler(s))
}

// scanResponse es el resultado del scan manual.
type scanResponse struct {
	IdleCount     int              `json:"idleCount"`
	IdleBunnies   []idleBunnyEntry `json:"idleBunnies"`
	ThresholdTime time.Time        `json:"thresholdTime"`
}

type idleBunnyEntry struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	LastFeed *time.Time `json:"lastFeed,omitempty"`
	LastPlay *time.Time `json:"lastPlay,omitempty"`
}

// manualScanHandler godoc
// @Summary Disparar scan de inactividad
// @Description Ejecuta el mismo barrido que corre el scheduler (emite eventos idle pending) y devuelve la lista de conejos inactivos encontrada.
// @Tags idle
// @Produce json
// @Success 200 {object} scanResponse
// @Router /idle-scan [post]
func manualScanHandler(s *Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := s.Scan(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out := scanResponse{
			IdleCount:     report.IdleCount,
			IdleBunnies:   make([]idleBunnyEntry, 0, len(report.IdleBunnies)),
			ThresholdTime: report.ThresholdTime,
		}
		for _, b := range report.IdleBunnies {
			out.IdleBunnies = append(out.IdleBunnies, idleBunnyEntry(b))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(out)
	}
}
