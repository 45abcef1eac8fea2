package memory

import (
	"context"
	"sync"

	"github.com/mhollis/bounce/internal/directory"
	"github.com/mhollis/bounce/internal/model"
)

// Directory is an in-memory implementation of the room directory
type Directory struct {
	mu    sync.RWMutex
	rooms []model.RoomInfo
}

// New creates an empty in-memory directory
func New() *Directory {
	return &Directory{}
}

// Ensure Directory implements the interface
var _ directory.Directory = (*Directory)(nil)

func (d *Directory) Publish(ctx context.Context, rooms []model.RoomInfo) error {
	copied := make([]model.RoomInfo, len(rooms))
	copy(copied, rooms)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms = copied
	return nil
}

func (d *Directory) List(ctx context.Context) ([]model.RoomInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]model.RoomInfo, len(d.rooms))
	copy(out, d.rooms)
	return out, nil
}

func (d *Directory) Close() error {
	return nil
}
