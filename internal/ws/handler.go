package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/mhollis/bounce/internal/directory"
	"github.com/mhollis/bounce/internal/game"
	"github.com/mhollis/bounce/internal/model"
	"github.com/mhollis/bounce/internal/protocol"
	"github.com/mhollis/bounce/internal/registry"
)

// publishTimeout bounds directory publishes so a slow backend cannot stall
// event handling.
const publishTimeout = 2 * time.Second

// SimStarter spawns the simulation loop for a room that entered playing
type SimStarter func(room model.RoomID)

// Handler translates inbound client events into registry and game-state
// operations and emits the resulting outbound events. It encodes the protocol
// semantics; the transport only moves bytes.
type Handler struct {
	registry  *registry.Registry
	transport Transport
	directory directory.Directory
	startSim  SimStarter
	logger    *slog.Logger
}

// NewHandler creates a Handler
func NewHandler(
	reg *registry.Registry,
	transport Transport,
	dir directory.Directory,
	startSim SimStarter,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		registry:  reg,
		transport: transport,
		directory: dir,
		startSim:  startSim,
		logger:    logger.With(slog.String("component", "handler")),
	}
}

// HandleConnect greets a freshly accepted connection and refreshes the
// global room list.
func (h *Handler) HandleConnect(c model.ConnID) {
	h.transport.ToConn(c, protocol.EventConnected, protocol.ConnectedPayload{SID: c})
	h.refreshRoomList()
}

// HandleDisconnect performs the implicit leave for a dropped connection.
// Unlike an explicit leave no game_left event is sent; the peer is gone.
func (h *Handler) HandleDisconnect(c model.ConnID) {
	result, ok := h.registry.Disconnect(c)
	if ok {
		h.transport.LeaveGroup(result.RoomID, c)
		if result.Destroyed {
			h.transport.RemoveGroup(result.RoomID)
		} else {
			h.transport.ToRoom(result.RoomID, protocol.EventPlayerLeft,
				protocol.PlayerLeftPayload{PlayerID: c})
		}
	}
	h.refreshRoomList()
}

// HandleMessage decodes one inbound envelope and dispatches it
func (h *Handler) HandleMessage(c model.ConnID, raw []byte) {
	env, err := protocol.Decode(raw)
	if err != nil {
		h.logger.Warn("undecodable message",
			slog.String("conn_id", string(c)),
			slog.Any("error", err))
		return
	}

	switch env.Event {
	case protocol.EventCreateGame:
		h.handleCreate(c)
	case protocol.EventJoinGame:
		var payload protocol.JoinGamePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			h.logger.Warn("bad join_game payload", slog.String("conn_id", string(c)))
			return
		}
		h.handleJoin(c, payload.RoomID)
	case protocol.EventLeaveGame:
		h.handleLeave(c)
	case protocol.EventStartGame:
		h.handleStart(c)
	case protocol.EventPlayerMove:
		var payload protocol.PlayerMovePayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			h.logger.Warn("bad player_move payload", slog.String("conn_id", string(c)))
			return
		}
		h.handleMove(c, payload)
	default:
		h.logger.Warn("unknown event",
			slog.String("conn_id", string(c)),
			slog.String("event", string(env.Event)))
	}
}

func (h *Handler) handleCreate(c model.ConnID) {
	room, err := h.registry.Create(c)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyInRoom) {
			h.transport.ToConn(c, protocol.EventAlreadyInRoom, h.currentRoomPayload(c))
		}
		return
	}

	h.transport.JoinGroup(room.ID(), c)
	h.transport.ToConn(c, protocol.EventGameCreated, protocol.RoomIDPayload{RoomID: room.ID()})
	h.refreshRoomList()
}

func (h *Handler) handleJoin(c model.ConnID, id model.RoomID) {
	room, err := h.registry.Join(c, id)
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		h.transport.ToConn(c, protocol.EventRoomNotFound, protocol.RoomIDPayload{RoomID: id})
		return
	case errors.Is(err, model.ErrAlreadyInRoom):
		h.transport.ToConn(c, protocol.EventAlreadyInRoom, h.currentRoomPayload(c))
		return
	case errors.Is(err, model.ErrGameAlreadyStarted):
		h.transport.ToConn(c, protocol.EventGameAlreadyStarted, protocol.RoomIDPayload{RoomID: id})
		return
	case err != nil:
		return
	}

	h.transport.JoinGroup(room.ID(), c)
	// Existing members are not notified of the joiner; only the room list
	// refresh reflects the change (asymmetric with leave, intentionally).
	h.transport.ToConn(c, protocol.EventGameJoined, protocol.RoomIDPayload{RoomID: room.ID()})
	h.refreshRoomList()
}

func (h *Handler) handleLeave(c model.ConnID) {
	result, ok := h.registry.Leave(c)
	if !ok {
		// Not in any room: leave is a no-op
		return
	}

	h.transport.LeaveGroup(result.RoomID, c)
	h.transport.ToConn(c, protocol.EventGameLeft, protocol.RoomIDPayload{RoomID: result.RoomID})
	if result.Destroyed {
		h.transport.RemoveGroup(result.RoomID)
	} else {
		h.transport.ToRoom(result.RoomID, protocol.EventPlayerLeft,
			protocol.PlayerLeftPayload{PlayerID: c})
	}
	h.refreshRoomList()
}

func (h *Handler) handleStart(c model.ConnID) {
	room, snap, err := h.registry.Start(c)
	switch {
	case errors.Is(err, model.ErrNotInRoom):
		h.transport.ToConn(c, protocol.EventNotInRoom,
			protocol.ErrorPayload{Error: "you are not in any room"})
		return
	case errors.Is(err, model.ErrRoomNotFound):
		// Defensive: the mapped room vanished concurrently. The index still
		// names the room, so report it rather than a zero id.
		payload := protocol.RoomIDPayload{}
		if id, ok := h.registry.RoomIDOf(c); ok {
			payload.RoomID = id
		}
		h.transport.ToConn(c, protocol.EventRoomNotFound, payload)
		return
	case errors.Is(err, model.ErrGameAlreadyStarted):
		h.transport.ToConn(c, protocol.EventGameAlreadyStarted, h.currentRoomPayload(c))
		return
	case err != nil:
		return
	}

	h.transport.ToRoom(room.ID(), protocol.EventGameStarted, protocol.RoomIDPayload{RoomID: room.ID()})
	h.refreshRoomList()
	h.transport.ToRoom(room.ID(), protocol.EventGameState, protocol.StateFromSnapshot(snap))
	h.startSim(room.ID())
}

// handleMove reconciles a client position delta. Errors emit events and
// discard the update; a stale timestamp discards it silently. State reaches
// clients on the next simulation tick, never directly from here.
func (h *Handler) handleMove(c model.ConnID, payload protocol.PlayerMovePayload) {
	room, ok := h.registry.RoomOf(c)
	if !ok {
		h.transport.ToConn(c, protocol.EventNotInRoom,
			protocol.ErrorPayload{Error: "you are not in any room"})
		return
	}

	room.WithState(func(s *game.State) {
		if !s.HasPlayer(c) {
			// Room has not started; there is no kinematic state to move
			return
		}
		ts := s.Now()
		if payload.Timestamp != nil {
			ts = *payload.Timestamp
		}
		s.ApplyMove(c, payload.X, payload.Y, ts)
	})
}

// currentRoomPayload reports the room the connection is currently mapped to,
// for already_in_room style responses.
func (h *Handler) currentRoomPayload(c model.ConnID) protocol.RoomIDPayload {
	if room, ok := h.registry.RoomOf(c); ok {
		return protocol.RoomIDPayload{RoomID: room.ID()}
	}
	return protocol.RoomIDPayload{}
}

// refreshRoomList broadcasts the global room list to every connection and
// publishes it to the directory.
func (h *Handler) refreshRoomList() {
	rooms := h.registry.Snapshot()
	h.transport.ToAll(protocol.EventRoomList, protocol.RoomListPayload{Rooms: rooms})

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := h.directory.Publish(ctx, rooms); err != nil {
		h.logger.Warn("directory publish failed", slog.Any("error", err))
	}
}
