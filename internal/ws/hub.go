package ws

import (
	"log/slog"
	"sync"

	"github.com/mhollis/bounce/internal/model"
	"github.com/mhollis/bounce/internal/protocol"
)

// Transport addresses events to the originating connection, to a room's
// broadcast group, or to every connection. Delivery to a connection or group
// that no longer exists is a silent no-op.
type Transport interface {
	ToConn(id model.ConnID, event protocol.EventType, payload any)
	ToRoom(id model.RoomID, event protocol.EventType, payload any)
	ToAll(event protocol.EventType, payload any)

	JoinGroup(room model.RoomID, conn model.ConnID)
	LeaveGroup(room model.RoomID, conn model.ConnID)
	RemoveGroup(room model.RoomID)
}

// Hub tracks the active connection set and the per-room broadcast groups.
// Group membership mirrors room membership: handlers add a connection to a
// group when it creates or joins a room and remove it when it leaves.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.ConnID]*Client
	groups  map[model.RoomID]map[model.ConnID]*Client
	logger  *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.ConnID]*Client),
		groups:  make(map[model.RoomID]map[model.ConnID]*Client),
		logger:  logger.With(slog.String("component", "hub")),
	}
}

// Ensure Hub implements Transport
var _ Transport = (*Hub)(nil)

// Add registers a connection with the hub
func (h *Hub) Add(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()
	h.logger.Info("client connected",
		slog.String("conn_id", string(client.id)),
		slog.Int("total_clients", count))
}

// Remove drops a connection from the hub and every group, closing its send
// channel. Safe to call more than once.
func (h *Hub) Remove(id model.ConnID) {
	h.mu.Lock()
	client, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
		for _, group := range h.groups {
			delete(group, id)
		}
	}
	count := len(h.clients)
	h.mu.Unlock()
	if ok {
		client.closeSend()
		h.logger.Info("client disconnected",
			slog.String("conn_id", string(id)),
			slog.Int("total_clients", count))
	}
}

// ClientCount returns the number of active connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// JoinGroup adds a connection to a room's broadcast group
func (h *Hub) JoinGroup(room model.RoomID, conn model.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client, ok := h.clients[conn]
	if !ok {
		return
	}
	group, ok := h.groups[room]
	if !ok {
		group = make(map[model.ConnID]*Client)
		h.groups[room] = group
	}
	group[conn] = client
}

// LeaveGroup removes a connection from a room's broadcast group
func (h *Hub) LeaveGroup(room model.RoomID, conn model.ConnID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if group, ok := h.groups[room]; ok {
		delete(group, conn)
		if len(group) == 0 {
			delete(h.groups, room)
		}
	}
}

// RemoveGroup drops a room's broadcast group entirely
func (h *Hub) RemoveGroup(room model.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups, room)
}

// ToConn sends an event to a single connection
func (h *Hub) ToConn(id model.ConnID, event protocol.EventType, payload any) {
	msg, err := protocol.Encode(event, payload)
	if err != nil {
		h.logger.Error("encode event failed",
			slog.String("event", string(event)),
			slog.Any("error", err))
		return
	}
	h.mu.RLock()
	client, ok := h.clients[id]
	h.mu.RUnlock()
	if ok {
		h.send(client, event, msg)
	}
}

// ToRoom sends an event to every connection in a room's broadcast group
func (h *Hub) ToRoom(id model.RoomID, event protocol.EventType, payload any) {
	msg, err := protocol.Encode(event, payload)
	if err != nil {
		h.logger.Error("encode event failed",
			slog.String("event", string(event)),
			slog.Any("error", err))
		return
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.groups[id]))
	for _, client := range h.groups[id] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()
	for _, client := range clients {
		h.send(client, event, msg)
	}
}

// ToAll sends an event to every active connection
func (h *Hub) ToAll(event protocol.EventType, payload any) {
	msg, err := protocol.Encode(event, payload)
	if err != nil {
		h.logger.Error("encode event failed",
			slog.String("event", string(event)),
			slog.Any("error", err))
		return
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()
	for _, client := range clients {
		h.send(client, event, msg)
	}
}

// send queues a message without blocking; a full buffer drops the message
// rather than stalling the caller (the next tick resends fresher state).
func (h *Hub) send(client *Client, event protocol.EventType, msg []byte) {
	if !client.trySend(msg) {
		h.logger.Warn("message dropped, client buffer full",
			slog.String("conn_id", string(client.id)),
			slog.String("event", string(event)))
	}
}
