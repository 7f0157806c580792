package summary

import (
	"sync"

	"bunny-happiness/internal/platform/logger"

	"github.com/gorilla/websocket"
)

// Hub mantiene las conexiones websocket suscriptas al summary en vivo y les
// empuja cada versión nueva. Implementa Broadcaster.
type Hub struct {
	mu    sync.Mutex
	subs  map[*websocket.Conn]chan Summary
	log   logger.Logger
	depth int // buffer por suscriptor; un lector lento solo pierde versiones intermedias
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		subs:  make(map[*websocket.Conn]chan Summary),
		log:   log,
		depth: 8,
	}
}

// Publish encola el summary para todos los suscriptores sin bloquear al
// mantenedor: si el buffer de un suscriptor está lleno se descarta la versión
// más vieja (al cliente solo le importa la última).
func (h *Hub) Publish(s Summary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Subscribe registra la conexión y devuelve el canal de versiones.
func (h *Hub) Subscribe(conn *websocket.Conn) <-chan Summary {
	ch := make(chan Summary, h.depth)

	h.mu.Lock()
	h.subs[conn] = ch
	h.mu.Unlock()

	h.log.Debug("summary subscriber connected", map[string]any{
		"subscribers": h.count(),
	})
	return ch
}

// Unsubscribe saca la conexión y cierra su canal.
func (h *Hub) Unsubscribe(conn *websocket.Conn) {
	h.mu.Lock()
	ch, ok := h.subs[conn]
	if ok {
		delete(h.subs, conn)
		close(ch)
	}
	h.mu.Unlock()

	if ok {
		h.log.Debug("summary subscriber disconnected", map[string]any{
			"subscribers": h.count(),
		})
	}
}

func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
