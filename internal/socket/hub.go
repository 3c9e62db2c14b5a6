// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/models"
)

const (
	EventShipmentUpdated = "shipment_updated"

	writeWait = 10 * time.Second
)

// Event is the JSON frame pushed to connected owners.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub keeps one live connection per user id.
type Hub struct {
	// a single mutex also serialises writes, gorilla allows one writer per conn
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
	}
}

// Register stores conn for userID, closing any connection it replaces.
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[userID]; ok && old != conn {
		_ = old.Close()
	}
	h.clients[userID] = conn
	logger.Debug("websocket client registered", "userId", userID)
}

// Unregister drops conn if it is still the one held for userID.
func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.clients[userID]; ok && current == conn {
		delete(h.clients, userID)
		logger.Debug("websocket client unregistered", "userId", userID)
	}
}

func (h *Hub) Connected(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.clients[userID]
	return ok
}

// Send writes message to userID. An offline user is not an error.
func (h *Hub) Send(userID string, message []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.clients[userID]
	if !ok {
		return nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
		_ = conn.Close()
		delete(h.clients, userID)
		return err
	}
	return nil
}

// NotifyShipmentUpdated pushes the shipment to its owner, if connected.
func (h *Hub) NotifyShipmentUpdated(ownerID string, s *models.Shipment) {
	msg, err := json.Marshal(Event{Type: EventShipmentUpdated, Payload: s})
	if err != nil {
		logger.Error("encode websocket event", "error", err)
		return
	}
	if err := h.Send(ownerID, msg); err != nil {
		logger.Warn("websocket send failed", "userId", ownerID, "trackingCode", s.TrackingCode, "error", err)
	}
}
