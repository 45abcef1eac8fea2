package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mhollis/bounce/internal/game"
)

// Directory type constants
const (
	DirectoryTypeMemory = "memory"
	DirectoryTypeRedis  = "redis"
)

// Config holds the server's runtime configuration. Every physics constant is
// externally tunable through the environment.
type Config struct {
	// HTTPAddr is the listen address for the HTTP/websocket server
	HTTPAddr string
	// UpdateInterval is the simulation tick period
	UpdateInterval time.Duration
	// Game holds the field and physics constants
	Game game.Config
	// DirectoryType selects the room directory backend ("memory" or "redis")
	DirectoryType string
	// RedisURL is the Redis connection URL (required when DirectoryType is redis)
	RedisURL string
}

// Default returns the default configuration
func Default() Config {
	return Config{
		HTTPAddr:       ":8080",
		UpdateInterval: time.Second / 60,
		Game:           game.DefaultConfig(),
		DirectoryType:  DirectoryTypeMemory,
	}
}

// FromEnv builds a Config from the environment, starting from defaults.
//
// Recognized variables: HTTP_ADDR, UPDATE_INTERVAL (seconds), WIDTH, HEIGHT,
// COLLISION_DISTANCE, BALL_KICK_FORCE, BALL_FRICTION, DIRECTORY_TYPE,
// REDIS_URL.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("UPDATE_INTERVAL"); v != "" {
		seconds, err := strconv.ParseFloat(v, 64)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid UPDATE_INTERVAL %q", v)
		}
		cfg.UpdateInterval = time.Duration(seconds * float64(time.Second))
	}

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"WIDTH", &cfg.Game.Width},
		{"HEIGHT", &cfg.Game.Height},
		{"COLLISION_DISTANCE", &cfg.Game.CollisionDistance},
		{"BALL_KICK_FORCE", &cfg.Game.KickForce},
		{"BALL_FRICTION", &cfg.Game.Friction},
	} {
		v := os.Getenv(f.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q", f.name, v)
		}
		*f.dst = parsed
	}

	if v := os.Getenv("DIRECTORY_TYPE"); v != "" {
		switch v {
		case DirectoryTypeMemory, DirectoryTypeRedis:
			cfg.DirectoryType = v
		default:
			return Config{}, fmt.Errorf("invalid DIRECTORY_TYPE %q", v)
		}
	}
	cfg.RedisURL = os.Getenv("REDIS_URL")
	if cfg.DirectoryType == DirectoryTypeRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL required when DIRECTORY_TYPE=redis")
	}

	return cfg, nil
}
