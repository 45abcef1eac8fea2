package directory

import (
	"context"

	"github.com/mhollis/bounce/internal/model"
)

// Directory is a published view of the rooms currently hosted by this server.
// A fresh snapshot is published whenever membership or status changes
// anywhere; readers (the HTTP API, external tooling) get presence data only,
// never game history.
type Directory interface {
	// Publish replaces the directory contents with the given snapshot
	Publish(ctx context.Context, rooms []model.RoomInfo) error

	// List returns the last published snapshot
	List(ctx context.Context) ([]model.RoomInfo, error)

	// Close releases any underlying resources
	Close() error
}
