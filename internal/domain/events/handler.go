package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bunny-happiness/internal/domain/bunnies"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, bunniesSvc *bunnies.Service) {
	r.Route("/bunnies/{bunnyID}/events", func(er chi.Router) {
		er.Post("/", submitEventHandler(svc, bunniesSvc))
		er.Get("/", listEventsHandler(svc, bunniesSvc))
	})

	// Consulta puntual: el resultado de un evento es asíncrono,
	// se descubre leyendo su status.
	r.Get("/events/{eventID}", getEventHandler(svc))
}

// submitEventRequest es el cuerpo para encolar un evento feed o play.
type submitEventRequest struct {
	Type           Kind   `json:"type" enums:"feed,play"`
	FeedType       string `json:"feed_type" enums:"lettuce,carrot"` // requerido para feed
	PartnerBunnyID string `json:"partner_bunny_id"`                 // requerido para play
}

type submitEventResponse struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// eventResponse representa un evento con su status y resultado.
type eventResponse struct {
	ID        string    `json:"id"`
	BunnyID   string    `json:"bunny_id"`
	Type      Kind      `json:"type"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	ErrorAt     *time.Time `json:"error_at,omitempty"`

	RejectionReason string `json:"rejection_reason,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`

	NewHappiness   *int `json:"new_happiness,omitempty"`
	DeltaHappiness *int `json:"delta_happiness,omitempty"`

	PlaymateBonus         *bool  `json:"playmate_bonus,omitempty"`
	PartnerBunnyID        string `json:"partner_bunny_id,omitempty"`
	NewPartnerHappiness   *int   `json:"new_partner_happiness,omitempty"`
	PartnerDeltaHappiness *int   `json:"partner_delta_happiness,omitempty"`
}

// submitEventHandler godoc
// @Summary Encolar evento feed/play
// @Description Agrega un evento pending para el conejo y devuelve 202: el procesamiento es asíncrono y el resultado se consulta en GET /events/{eventID}. Para feed enviar feed_type (lettuce|carrot); para play enviar partner_bunny_id.
// @Tags events
// @Accept json
// @Produce json
// @Param bunnyID path string true "ID del conejo"
// @Param payload body submitEventRequest true "Evento a encolar"
// @Success 202 {object} submitEventResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 404 {string} string "bunny not found"
// @Router /bunnies/{bunnyID}/events [post]
func submitEventHandler(svc *Service, bunniesSvc *bunnies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bunnyID := chi.URLParam(r, "bunnyID")
		if _, err := bunniesSvc.GetByID(r.Context(), bunnyID); err != nil {
			http.Error(w, "bunny not found", http.StatusNotFound)
			return
		}

		var req submitEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var (
			e   Event
			err error
		)
		switch req.Type {
		case KindFeed:
			e, err = svc.SubmitFeed(r.Context(), bunnyID, FeedType(req.FeedType))
		case KindPlay:
			e, err = svc.SubmitPlay(r.Context(), bunnyID, req.PartnerBunnyID)
		default:
			http.Error(w, "type must be feed or play", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusAccepted, submitEventResponse{ID: e.ID, Status: e.Status})
	}
}

// listEventsHandler godoc
// @Summary Listar eventos de un conejo
// @Tags events
// @Produce json
// @Param bunnyID path string true "ID del conejo"
// @Param limit query int false "Máximo de eventos a devolver (1-200). Por defecto 50"
// @Success 200 {array} eventResponse
// @Failure 404 {string} string "bunny not found"
// @Router /bunnies/{bunnyID}/events [get]
func listEventsHandler(svc *Service, bunniesSvc *bunnies.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bunnyID := chi.URLParam(r, "bunnyID")
		if _, err := bunniesSvc.GetByID(r.Context(), bunnyID); err != nil {
			http.Error(w, "bunny not found", http.StatusNotFound)
			return
		}

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 200 {
				http.Error(w, "limit must be 1-200", http.StatusBadRequest)
				return
			}
			limit = n
		}

		list, err := svc.ListByBunny(r.Context(), bunnyID, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		out := make([]eventResponse, 0, len(list))
		for _, e := range list {
			out = append(out, toEventResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getEventHandler godoc
// @Summary Obtener evento por ID
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID} [get]
func getEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.GetByID(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "event not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

func toEventResponse(e Event) eventResponse {
	out := eventResponse{
		ID:              e.ID,
		BunnyID:         e.BunnyID,
		Type:            e.Kind,
		Status:          e.Status,
		CreatedAt:       e.CreatedAt,
		ProcessedAt:     e.ProcessedAt,
		RejectedAt:      e.RejectedAt,
		ErrorAt:         e.ErrorAt,
		RejectionReason: e.RejectionReason,
		ErrorMessage:    e.ErrorMessage,
	}

	if e.Status == StatusFinished {
		nh := e.Outcome.NewHappiness
		dh := e.Outcome.DeltaHappiness
		out.NewHappiness = &nh
		out.DeltaHappiness = &dh

		if e.Kind == KindPlay {
			pb := e.Outcome.PlaymateBonus
			nph := e.Outcome.NewPartnerHappiness
			pdh := e.Outcome.PartnerDeltaHappiness
			out.PlaymateBonus = &pb
			out.PartnerBunnyID = e.Outcome.PartnerBunnyID
			out.NewPartnerHappiness = &nph
			out.PartnerDeltaHappiness = &pdh
		}
	}

	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
