package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/bounce/internal/model"
)

func TestPublishAndList(t *testing.T) {
	d := New()
	rooms := []model.RoomInfo{
		{RoomID: 4821, Players: []model.ConnID{"c1"}, Status: model.RoomStatusWaiting},
	}

	require.NoError(t, d.Publish(context.Background(), rooms))

	got, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rooms, got)
}

func TestListDoesNotShareStorage(t *testing.T) {
	d := New()
	require.NoError(t, d.Publish(context.Background(), []model.RoomInfo{{RoomID: 4821}}))

	got, err := d.List(context.Background())
	require.NoError(t, err)
	got[0].RoomID = 1

	again, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.RoomID(4821), again[0].RoomID)
}

func TestListEmptyByDefault(t *testing.T) {
	d := New()

	got, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
