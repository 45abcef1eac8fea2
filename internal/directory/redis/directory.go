package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mhollis/bounce/internal/directory"
	"github.com/mhollis/bounce/internal/model"
)

// roomListKey is the single key holding this deployment's room list
const roomListKey = "bounce:rooms"

// Directory is a Redis-backed implementation of the room directory
type Directory struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis directory, verifying the connection
func New(cfg Config) (*Directory, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Directory{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis directory with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Directory {
	return &Directory{client: client, cfg: cfg}
}

// Ensure Directory implements the interface
var _ directory.Directory = (*Directory)(nil)

func (d *Directory) Publish(ctx context.Context, rooms []model.RoomInfo) error {
	data, err := json.Marshal(rooms)
	if err != nil {
		return err
	}
	return d.client.Set(ctx, roomListKey, data, d.cfg.RoomListTTL).Err()
}

func (d *Directory) List(ctx context.Context) ([]model.RoomInfo, error) {
	data, err := d.client.Get(ctx, roomListKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.RoomInfo{}, nil
		}
		return nil, err
	}

	var rooms []model.RoomInfo
	if err := json.Unmarshal(data, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (d *Directory) Close() error {
	return d.client.Close()
}
