package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mhollis/bounce/internal/dependencies/clock"
	"github.com/mhollis/bounce/internal/dependencies/random"
	"github.com/mhollis/bounce/internal/game"
	"github.com/mhollis/bounce/internal/model"
)

const (
	// Room ids are uniform 4-digit numbers in [roomIDBase, roomIDBase+roomIDSpace)
	roomIDBase  = 1000
	roomIDSpace = 9000
)

// Registry is the process-wide table of rooms and the player -> room index.
// It owns room id allocation and all membership transitions.
//
// The registry's own maps live behind a short-held RWMutex, distinct from the
// per-room locks, so registry bookkeeping never serializes unrelated rooms'
// gameplay. Lock order is always registry before room.
type Registry struct {
	mu          sync.RWMutex
	rooms       map[model.RoomID]*Room
	playerIndex map[model.ConnID]model.RoomID

	gameCfg game.Config
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates an empty Registry
func New(gameCfg game.Config, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:       make(map[model.RoomID]*Room),
		playerIndex: make(map[model.ConnID]model.RoomID),
		gameCfg:     gameCfg,
		clock:       clk,
		random:      rnd,
		logger:      logger.With(slog.String("component", "registry")),
	}
}

// LeaveResult describes the outcome of a Leave or Disconnect
type LeaveResult struct {
	RoomID    model.RoomID
	Destroyed bool
	// Remaining holds the members still in the room when it survived
	Remaining []model.ConnID
}

// Create allocates a fresh room with the given connection as sole member.
// Fails with ErrAlreadyInRoom if the connection is already mapped to a room.
func (reg *Registry) Create(c model.ConnID) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.playerIndex[c]; ok {
		return nil, model.ErrAlreadyInRoom
	}

	id := reg.allocateID()
	room := &Room{
		id:      id,
		status:  model.RoomStatusWaiting,
		members: []model.ConnID{c},
		state:   game.New(reg.gameCfg, reg.clock),
	}
	reg.rooms[id] = room
	reg.playerIndex[c] = id

	reg.logger.Info("room created",
		slog.Int("room_id", int(id)),
		slog.String("conn_id", string(c)))
	return room, nil
}

// allocateID rejection-samples the 9000-value id space until it finds an
// unused id. Collision probability stays negligible until thousands of rooms
// exist simultaneously, so the loop is effectively bounded. Caller holds the
// registry lock.
func (reg *Registry) allocateID() model.RoomID {
	for {
		id := model.RoomID(roomIDBase + reg.random.Intn(roomIDSpace))
		if _, taken := reg.rooms[id]; !taken {
			return id
		}
	}
}

// Join appends the connection to the given waiting room.
func (reg *Registry) Join(c model.ConnID, id model.RoomID) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	if _, ok := reg.playerIndex[c]; ok {
		return nil, model.ErrAlreadyInRoom
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	switch room.status {
	case model.RoomStatusWaiting:
		// Joinable
	case model.RoomStatusPlaying, model.RoomStatusEnded:
		return nil, model.ErrGameAlreadyStarted
	}

	room.members = append(room.members, c)
	reg.playerIndex[c] = id

	reg.logger.Info("player joined room",
		slog.Int("room_id", int(id)),
		slog.String("conn_id", string(c)))
	return room, nil
}

// Leave removes the connection from its room, if any. The second return is
// false when the connection was not in a room, in which case Leave is a no-op.
// When the last member leaves, the room is destroyed and its simulation loop
// cancelled.
func (reg *Registry) Leave(c model.ConnID) (LeaveResult, bool) {
	reg.mu.Lock()

	id, ok := reg.playerIndex[c]
	if !ok {
		reg.mu.Unlock()
		return LeaveResult{}, false
	}
	room := reg.rooms[id]
	delete(reg.playerIndex, c)

	room.mu.Lock()
	for i, m := range room.members {
		if m == c {
			room.members = append(room.members[:i], room.members[i+1:]...)
			break
		}
	}
	if room.status == model.RoomStatusPlaying {
		room.state.RemovePlayer(c)
	}
	remaining := append([]model.ConnID(nil), room.members...)
	room.mu.Unlock()

	destroyed := len(remaining) == 0
	if destroyed {
		delete(reg.rooms, id)
	}
	reg.mu.Unlock()

	if destroyed {
		// Outside the registry lock; cancel only signals the loop goroutine
		room.stopLoop()
	}

	reg.logger.Info("player left room",
		slog.Int("room_id", int(id)),
		slog.String("conn_id", string(c)),
		slog.Bool("destroyed", destroyed))
	return LeaveResult{RoomID: id, Destroyed: destroyed, Remaining: remaining}, true
}

// Disconnect performs the same membership cleanup as Leave. It exists as a
// separate entry point because it is triggered by transport-level connection
// loss rather than an explicit client request.
func (reg *Registry) Disconnect(c model.ConnID) (LeaveResult, bool) {
	return reg.Leave(c)
}

// Start transitions the connection's room to playing and initializes player
// state for all current members, returning the room and the initial snapshot.
func (reg *Registry) Start(c model.ConnID) (*Room, model.GameSnapshot, error) {
	reg.mu.RLock()
	id, ok := reg.playerIndex[c]
	if !ok {
		reg.mu.RUnlock()
		return nil, model.GameSnapshot{}, model.ErrNotInRoom
	}
	room, ok := reg.rooms[id]
	reg.mu.RUnlock()
	if !ok {
		// The mapped room vanished concurrently
		return nil, model.GameSnapshot{}, model.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	switch room.status {
	case model.RoomStatusWaiting:
		// Startable
	case model.RoomStatusPlaying, model.RoomStatusEnded:
		return nil, model.GameSnapshot{}, model.ErrGameAlreadyStarted
	}

	room.status = model.RoomStatusPlaying
	room.state.InitPlayers(room.members)
	snap := room.state.Snapshot()

	reg.logger.Info("game started",
		slog.Int("room_id", int(id)),
		slog.Int("players", len(room.members)))
	return room, snap, nil
}

// Get returns the room with the given id
func (reg *Registry) Get(id model.RoomID) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// RoomOf returns the room the connection belongs to
func (reg *Registry) RoomOf(c model.ConnID) (*Room, bool) {
	reg.mu.RLock()
	id, ok := reg.playerIndex[c]
	if !ok {
		reg.mu.RUnlock()
		return nil, false
	}
	room, ok := reg.rooms[id]
	reg.mu.RUnlock()
	return room, ok
}

// RoomIDOf returns the room id the connection is indexed under. Unlike
// RoomOf it answers from the index alone, so it still names the room when
// the room object itself is gone.
func (reg *Registry) RoomIDOf(c model.ConnID) (model.RoomID, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	id, ok := reg.playerIndex[c]
	return id, ok
}

// AttachLoop records the cancel function of the room's simulation loop so
// room destruction can stop it.
func (reg *Registry) AttachLoop(id model.RoomID, cancel func()) {
	reg.mu.RLock()
	room, ok := reg.rooms[id]
	reg.mu.RUnlock()
	if !ok {
		// Room was destroyed before the loop attached; stop it immediately
		cancel()
		return
	}
	room.setCancel(cancel)
}

// Snapshot produces the global room list, ordered by room id so repeated
// calls with no intervening mutation yield identical output.
func (reg *Registry) Snapshot() []model.RoomInfo {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	infos := make([]model.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, room.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RoomID < infos[j].RoomID })
	return infos
}
