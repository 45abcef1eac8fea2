package game

import (
	"fmt"

	"github.com/mhollis/bounce/internal/dependencies/clock"
	"github.com/mhollis/bounce/internal/model"
)

// State is the authoritative ball and player kinematic state for one room.
// It has no locking of its own; the owning room serializes all access.
type State struct {
	cfg     Config
	clock   clock.Clock
	ball    model.Ball
	players map[model.ConnID]*model.Player
	// teamCounter alternates 0/1 as players are initialized
	teamCounter int
}

// New creates a State with a centered, motionless ball and no players
func New(cfg Config, clk clock.Clock) *State {
	s := &State{
		cfg:     cfg,
		clock:   clk,
		players: make(map[model.ConnID]*model.Player),
	}
	s.ResetBall()
	return s
}

// ResetBall places the ball at the field center with zero velocity.
// Called at construction and after every goal.
func (s *State) ResetBall() {
	s.ball = model.Ball{
		Position: model.Vec{X: s.cfg.Width / 2, Y: s.cfg.Height / 2},
	}
}

// InitPlayers creates player entries for the given connection ids, in order.
// Teams alternate 0/1 with join order; spawn positions sit at the quarter
// lines of each half. Initializing an id that already exists is a contract
// violation and panics: it means the registry and game state have diverged.
func (s *State) InitPlayers(ids []model.ConnID) {
	now := s.now()
	for _, id := range ids {
		if _, exists := s.players[id]; exists {
			panic(fmt.Sprintf("game: player %s initialized twice", id))
		}
		team := model.Team(s.teamCounter % 2)
		s.players[id] = &model.Player{
			Position: model.Vec{
				X: s.cfg.Width / 2,
				Y: s.cfg.Height/4 + float64(team)*s.cfg.Height/2,
			},
			Team:       team,
			LastUpdate: now,
		}
		s.teamCounter = (s.teamCounter + 1) % 2
	}
}

// HasPlayer reports whether the given connection has an initialized player
func (s *State) HasPlayer(id model.ConnID) bool {
	_, ok := s.players[id]
	return ok
}

// RemovePlayer drops a player's kinematic state, if present
func (s *State) RemovePlayer(id model.ConnID) {
	delete(s.players, id)
}

// ApplyMove reconciles a client position delta against the stored state.
//
// The candidate position is the stored position plus the delta. Moves whose
// timestamp precedes the player's last accepted update are discarded entirely,
// rejecting out-of-order delivery. If the candidate position overlaps the
// ball, an impulse proportional to the overlap vector kicks the ball away.
// The move is then committed along with its timestamp.
//
// Calling ApplyMove for a connection without an initialized player is a
// contract violation and panics; callers must check room membership first.
func (s *State) ApplyMove(id model.ConnID, dx, dy, timestamp float64) {
	p, ok := s.players[id]
	if !ok {
		panic(fmt.Sprintf("game: move for unknown player %s", id))
	}

	if timestamp < p.LastUpdate {
		// Stale update; neither position nor timestamp changes
		return
	}

	candidate := model.Vec{X: p.Position.X + dx, Y: p.Position.Y + dy}

	ox := candidate.X - s.ball.Position.X
	oy := candidate.Y - s.ball.Position.Y
	if ox*ox+oy*oy < s.cfg.CollisionDistance*s.cfg.CollisionDistance {
		s.ball.Velocity.X -= ox * s.cfg.KickForce
		s.ball.Velocity.Y -= oy * s.cfg.KickForce
	}

	p.Position = candidate
	p.LastUpdate = timestamp
}

// Step advances the ball by one tick: semi-implicit Euler integration with
// friction applied after the position update, then goal detection on the
// post-integration position, then wall reflection.
//
// When a goal is scored the ball is reset to center and the scoring team is
// returned with scored=true; reflection is skipped for that tick since the
// reset ball sits safely in the interior.
func (s *State) Step() (team model.Team, scored bool) {
	prev := s.ball.Position

	s.ball.Position.X += s.ball.Velocity.X
	s.ball.Position.Y += s.ball.Velocity.Y
	s.ball.Velocity.X *= s.cfg.Friction
	s.ball.Velocity.Y *= s.cfg.Friction

	pos := s.ball.Position
	inGoalMouth := pos.X > s.cfg.Width/4 && pos.X < s.cfg.Width*3/4
	if inGoalMouth {
		if pos.Y < goalMargin {
			// Crossed the end line defended by team 0
			s.ResetBall()
			return 1, true
		}
		if pos.Y > s.cfg.Height-goalMargin {
			s.ResetBall()
			return 0, true
		}
	}

	// Comparing against the previous position's extremum tolerates a ball
	// already outside bounds without runaway oscillation: each boundary
	// crossing reflects at most once.
	if pos.X < min(goalMargin, prev.X) || pos.X > max(s.cfg.Width-goalMargin, prev.X) {
		s.ball.Velocity.X = -s.ball.Velocity.X
	}
	if pos.Y < min(goalMargin, prev.Y) || pos.Y > max(s.cfg.Height-goalMargin, prev.Y) {
		s.ball.Velocity.Y = -s.ball.Velocity.Y
	}

	return 0, false
}

// Snapshot returns a deep copy of the current state for broadcast. The copy
// never shares mutable storage with the live state, so serialization cannot
// race with the simulation loop.
func (s *State) Snapshot() model.GameSnapshot {
	players := make(map[model.ConnID]model.Player, len(s.players))
	for id, p := range s.players {
		players[id] = *p
	}
	return model.GameSnapshot{
		Players: players,
		Ball:    s.ball,
	}
}

// Ball returns the current ball state
func (s *State) Ball() model.Ball {
	return s.ball
}

func (s *State) now() float64 {
	return float64(s.clock.Now().UnixNano()) / 1e9
}

// Now returns the current time as unix seconds, for defaulting move timestamps
func (s *State) Now() float64 {
	return s.now()
}
