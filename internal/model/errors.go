package model

import "errors"

// Expected, user-facing conditions. These are reported back to the originating
// connection as named events; none are fatal and none terminate the connection.
var (
	ErrAlreadyInRoom      = errors.New("player is already in a room")
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrNotInRoom          = errors.New("player is not in any room")
)
