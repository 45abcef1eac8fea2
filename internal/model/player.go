package model

// Team is the side of the field a player defends. Team 0 defends the near
// (y=0) end, team 1 the far end.
type Team int

// Vec is a 2D position or velocity in field coordinates
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Player is the authoritative kinematic state for one connection inside a
// room's game state. Players exist only once the room transitions to playing.
type Player struct {
	Position Vec  `json:"position"`
	Team     Team `json:"team"`
	// LastUpdate is the timestamp (unix seconds, client-reported or server
	// receipt time) of the last accepted move. Moves carrying an older
	// timestamp are rejected as stale.
	LastUpdate float64 `json:"last_update"`
}

// Ball is the authoritative ball state for one room
type Ball struct {
	Position Vec `json:"position"`
	Velocity Vec `json:"velocity"`
}

// GameSnapshot is an immutable view of a room's game state, safe to serialize
// concurrently with further mutation of the live state.
type GameSnapshot struct {
	Players map[ConnID]Player `json:"players"`
	Ball    Ball              `json:"ball"`
}
