package game

// Config holds the physics constants for a field. All values are externally
// tunable; see config.FromEnv.
type Config struct {
	// Width and Height are the field dimensions in pixels
	Width  float64
	Height float64
	// CollisionDistance is the paddle radius within which a move kicks the ball
	CollisionDistance float64
	// KickForce scales the impulse applied to the ball on a paddle collision
	KickForce float64
	// Friction is the per-tick velocity decay factor
	Friction float64
}

// DefaultConfig returns the default field configuration
func DefaultConfig() Config {
	return Config{
		Width:             300,
		Height:            450,
		CollisionDistance: 25,
		KickForce:         0.1,
		Friction:          0.99,
	}
}

// goalMargin is the distance from the end line within which a centered ball
// counts as a goal; it doubles as the wall reflection margin.
const goalMargin = 10
