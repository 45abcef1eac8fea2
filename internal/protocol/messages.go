package protocol

import (
	"encoding/json"

	"github.com/mhollis/bounce/internal/model"
)

// EventType identifies the kind of event sent over the wire
type EventType string

const (
	// Server -> Client events
	EventConnected          EventType = "connected"
	EventRoomList           EventType = "room_list"
	EventGameCreated        EventType = "game_created"
	EventAlreadyInRoom      EventType = "already_in_room"
	EventRoomNotFound       EventType = "room_not_found"
	EventGameAlreadyStarted EventType = "game_already_started"
	EventGameJoined         EventType = "game_joined"
	EventGameLeft           EventType = "game_left"
	EventPlayerLeft         EventType = "player_left"
	EventNotInRoom          EventType = "not_in_room"
	EventGameStarted        EventType = "game_started"
	EventGameState          EventType = "game_state"
	EventGoalScored         EventType = "goal_scored"

	// Client -> Server events
	EventCreateGame EventType = "create_game"
	EventJoinGame   EventType = "join_game"
	EventLeaveGame  EventType = "leave_game"
	EventStartGame  EventType = "start_game"
	EventPlayerMove EventType = "player_move"
)

// Envelope is the top-level wire format for all events
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps an event name and payload into a marshaled envelope
func Encode(event EventType, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Decode parses a raw message into an envelope
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(raw, &env)
	return env, err
}

// --- Client -> Server payloads ---

// JoinGamePayload carries the target room of a join request
type JoinGamePayload struct {
	RoomID model.RoomID `json:"room_id"`
}

// PlayerMovePayload carries a position delta and an optional client timestamp
// (unix seconds). A missing timestamp defaults to server receipt time.
type PlayerMovePayload struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// --- Server -> Client payloads ---

// ConnectedPayload is sent once when a connection is accepted
type ConnectedPayload struct {
	SID model.ConnID `json:"sid"`
}

// RoomListPayload is the global room list broadcast to all connections
type RoomListPayload struct {
	Rooms []model.RoomInfo `json:"rooms"`
}

// RoomIDPayload carries a room id; used by game_created, game_joined,
// game_left, game_started and the room-scoped error events.
type RoomIDPayload struct {
	RoomID model.RoomID `json:"room_id"`
}

// PlayerLeftPayload notifies remaining room members of a departure
type PlayerLeftPayload struct {
	PlayerID model.ConnID `json:"player_id"`
}

// ErrorPayload carries a human-readable error message
type ErrorPayload struct {
	Error string `json:"error"`
}

// GoalScoredPayload announces a goal for a team
type GoalScoredPayload struct {
	Team model.Team `json:"team"`
}

// GameStatePayload is the full authoritative state broadcast each tick
type GameStatePayload struct {
	Players map[model.ConnID]model.Player `json:"players"`
	Ball    model.Ball                    `json:"ball"`
}

// StateFromSnapshot converts a game snapshot into its wire form
func StateFromSnapshot(snap model.GameSnapshot) GameStatePayload {
	return GameStatePayload{
		Players: snap.Players,
		Ball:    snap.Ball,
	}
}
