package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mhollis/bounce/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 1024

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one websocket connection with its outbound message queue
type Client struct {
	id   model.ConnID
	conn *websocket.Conn
	send chan []byte

	// mu guards closed. Broadcasts snapshot clients outside the hub lock, so
	// a send can race the disconnect path; once closed is set, sends become
	// silent drops instead of writes to a closed channel.
	mu     sync.Mutex
	closed bool
}

// newClient wraps an accepted websocket connection with a fresh sid
func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   model.ConnID(uuid.NewString()),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// ID returns the connection's sid
func (c *Client) ID() model.ConnID {
	return c.id
}

// trySend queues a message without blocking; false means the buffer was full.
// Sending to a closed client is a silent drop, not a failure: the connection
// is already going away.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound queue exactly once, stopping the write pump
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump reads inbound events and dispatches them to the handler.
// It returns when the connection drops; the caller performs cleanup.
func (c *Client) readPump(handler *Handler, logger *slog.Logger) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("unexpected close",
					slog.String("conn_id", string(c.id)),
					slog.Any("error", err))
			}
			return
		}
		handler.HandleMessage(c.id, raw)
	}
}

// writePump drains the send queue to the socket and keeps the connection
// alive with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Server upgrades HTTP requests to websocket connections and runs their pumps
type Server struct {
	hub      *Hub
	handler  *Handler
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates a websocket Server
func NewServer(hub *Hub, handler *Handler, logger *slog.Logger) *Server {
	return &Server{
		hub:     hub,
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking is left to a fronting proxy
				return true
			},
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP accepts a websocket connection and services it until disconnect
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := newClient(conn)
	s.hub.Add(client)
	go client.writePump()

	s.handler.HandleConnect(client.id)

	client.readPump(s.handler, s.logger)

	// Transport-level disconnect: implicit leave, never surfaced as an error
	s.hub.Remove(client.id)
	s.handler.HandleDisconnect(client.id)
}
