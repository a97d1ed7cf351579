package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/loomshop/loomshop-backend/internal/app/model"
	"github.com/loomshop/loomshop-backend/pkg/logger"
)

// OrderEvent is the envelope pushed to connected admin dashboards.
type OrderEvent struct {
	Event     string       `json:"event"`
	Order     *model.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
}

// Hub fans order lifecycle events out to connected admin clients. The
// feed is one-way: client frames are read only to keep the connection
// alive and are otherwise discarded.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan []byte, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Info("Order feed client connected", map[string]interface{}{
				"user_id": client.userID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Info("Order feed client disconnected", map[string]interface{}{
				"user_id": client.userID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer, drop the frame rather than block the hub
					logger.Warn("Order feed client lagging, frame dropped", map[string]interface{}{
						"user_id": client.userID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// NotifyOrderEvent implements the order service's notifier hook.
func (h *Hub) NotifyOrderEvent(event string, order *model.Order) {
	payload, err := json.Marshal(OrderEvent{
		Event:     event,
		Order:     order,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.Error("Failed to encode order event", err, map[string]interface{}{
			"event": event,
		})
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("Order feed broadcast queue full, event dropped", map[string]interface{}{
			"event": event,
		})
	}
}

// ClientCount reports how many admin dashboards are connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
