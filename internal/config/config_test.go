package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, time.Second/60, cfg.UpdateInterval)
	assert.Equal(t, DirectoryTypeMemory, cfg.DirectoryType)
	assert.Equal(t, 300.0, cfg.Game.Width)
	assert.Equal(t, 450.0, cfg.Game.Height)
	assert.Equal(t, 25.0, cfg.Game.CollisionDistance)
	assert.Equal(t, 0.1, cfg.Game.KickForce)
	assert.Equal(t, 0.99, cfg.Game.Friction)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("UPDATE_INTERVAL", "0.05")
	t.Setenv("WIDTH", "600")
	t.Setenv("HEIGHT", "900")
	t.Setenv("COLLISION_DISTANCE", "30")
	t.Setenv("BALL_KICK_FORCE", "0.2")
	t.Setenv("BALL_FRICTION", "0.95")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 50*time.Millisecond, cfg.UpdateInterval)
	assert.Equal(t, 600.0, cfg.Game.Width)
	assert.Equal(t, 900.0, cfg.Game.Height)
	assert.Equal(t, 30.0, cfg.Game.CollisionDistance)
	assert.Equal(t, 0.2, cfg.Game.KickForce)
	assert.Equal(t, 0.95, cfg.Game.Friction)
}

func TestFromEnvInvalidFloat(t *testing.T) {
	t.Setenv("WIDTH", "wide")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "WIDTH")
}

func TestFromEnvInvalidInterval(t *testing.T) {
	t.Setenv("UPDATE_INTERVAL", "-1")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "UPDATE_INTERVAL")
}

func TestFromEnvInvalidDirectoryType(t *testing.T) {
	t.Setenv("DIRECTORY_TYPE", "postgres")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "DIRECTORY_TYPE")
}

func TestFromEnvRedisRequiresURL(t *testing.T) {
	t.Setenv("DIRECTORY_TYPE", "redis")

	_, err := FromEnv()
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestFromEnvRedisWithURL(t *testing.T) {
	t.Setenv("DIRECTORY_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, DirectoryTypeRedis, cfg.DirectoryType)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
}
