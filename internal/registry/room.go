package registry

import (
	"context"
	"sync"

	"github.com/mhollis/bounce/internal/game"
	"github.com/mhollis/bounce/internal/model"
)

// Room is one two-player game session: a status, an ordered member list and
// the authoritative game state, all guarded by a single room-scoped mutex.
// Rooms are created and destroyed exclusively by the Registry.
type Room struct {
	id model.RoomID

	// mu serializes every read and mutation of status, members and state.
	// The simulation tick and event handlers may run concurrently; each room
	// has its own lock so unrelated rooms never contend.
	mu      sync.Mutex
	status  model.RoomStatus
	members []model.ConnID
	state   *game.State

	// cancel stops the room's simulation loop when the room is destroyed
	cancel context.CancelFunc
}

// ID returns the room's identifier
func (r *Room) ID() model.RoomID {
	return r.id
}

// Status returns the room's current lifecycle state
func (r *Room) Status() model.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Members returns a copy of the member list in join order
func (r *Room) Members() []model.ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ConnID(nil), r.members...)
}

// Info returns the room's entry for the global room list
func (r *Room) Info() model.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.RoomInfo{
		RoomID:  r.id,
		Players: append([]model.ConnID(nil), r.members...),
		Status:  r.status,
	}
}

// WithState runs fn with exclusive access to the room's game state.
// Callers must not touch the state outside of fn, and fn must not call back
// into the registry (lock order is registry before room, never the reverse).
func (r *Room) WithState(fn func(*game.State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.state)
}

// setCancel records the simulation loop's cancel function
func (r *Room) setCancel(cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel = cancel
}

// stopLoop cancels the simulation loop, if one was started
func (r *Room) stopLoop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
