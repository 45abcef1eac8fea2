package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/mhollis/bounce/internal/game"
	"github.com/mhollis/bounce/internal/model"
	"github.com/mhollis/bounce/internal/protocol"
	"github.com/mhollis/bounce/internal/registry"
)

// DefaultInterval is the default tick period (60 Hz)
const DefaultInterval = time.Second / 60

// Emitter delivers events to a room's broadcast group. Emitting to a group
// that no longer exists must be a harmless no-op.
type Emitter interface {
	ToRoom(id model.RoomID, event protocol.EventType, payload any)
}

// Loop integrates one room's physics at a fixed tick period and broadcasts
// the resulting state. One loop goroutine runs per playing room.
//
// The loop's authoritative termination condition is the room disappearing
// from the registry, checked at the top of each tick. The context is an
// accelerator: room destruction cancels it so the goroutine exits without
// waiting for the next tick.
type Loop struct {
	registry *registry.Registry
	emitter  Emitter
	roomID   model.RoomID
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Loop for the given room
func New(reg *registry.Registry, emitter Emitter, roomID model.RoomID, interval time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		registry: reg,
		emitter:  emitter,
		roomID:   roomID,
		interval: interval,
		logger: logger.With(
			slog.String("component", "sim"),
			slog.Int("room_id", int(roomID))),
	}
}

// Start spawns the loop goroutine and attaches its cancel function to the
// room so destruction stops it.
func Start(reg *registry.Registry, emitter Emitter, roomID model.RoomID, interval time.Duration, logger *slog.Logger) {
	loop := New(reg, emitter, roomID, interval, logger)
	ctx, cancel := context.WithCancel(context.Background())
	reg.AttachLoop(roomID, cancel)
	go loop.Run(ctx)
}

// Run ticks until the room is destroyed or ctx is cancelled
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info("simulation loop started", slog.Duration("interval", l.interval))
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("simulation loop cancelled")
			return
		case <-ticker.C:
			if !l.tick() {
				l.logger.Info("simulation loop stopped, room destroyed")
				return
			}
		}
	}
}

// tick advances the room one step; it returns false once the room is gone
func (l *Loop) tick() bool {
	room, ok := l.registry.Get(l.roomID)
	if !ok {
		return false
	}

	var (
		snap   model.GameSnapshot
		team   model.Team
		scored bool
	)
	room.WithState(func(s *game.State) {
		team, scored = s.Step()
		snap = s.Snapshot()
	})

	if scored {
		l.logger.Info("goal scored", slog.Int("team", int(team)))
		l.emitter.ToRoom(l.roomID, protocol.EventGoalScored, protocol.GoalScoredPayload{Team: team})
	}
	l.emitter.ToRoom(l.roomID, protocol.EventGameState, protocol.StateFromSnapshot(snap))
	return true
}
