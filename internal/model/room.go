package model

// ConnID identifies a single client connection (the socket id assigned on accept)
type ConnID string

// RoomID is the numeric identifier clients use to join a room
type RoomID int

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting" // Room created, game not started
	RoomStatusPlaying RoomStatus = "playing" // Simulation running
	RoomStatusEnded   RoomStatus = "ended"   // Reserved; no transition reaches it yet
)

// RoomInfo is the per-room entry of the global room list broadcast
type RoomInfo struct {
	RoomID  RoomID     `json:"room_id"`
	Players []ConnID   `json:"players"`
	Status  RoomStatus `json:"status"`
}
