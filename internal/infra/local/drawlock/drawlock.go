package infra_local_drawlock

import (
	"context"
	"sync"

	"github.com/humanbelnik/penaltydraw/internal/model"
)

// Driver is the in-process draw lock used when Redis is disabled.
// It only serializes draws handled by this process.
type Driver struct {
	mu    sync.Mutex
	rooms map[model.RoomID]struct{}
}

func New() *Driver {
	return &Driver{rooms: make(map[model.RoomID]struct{})}
}

func (d *Driver) Acquire(_ context.Context, roomID model.RoomID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, held := d.rooms[roomID]; held {
		return false, nil
	}
	d.rooms[roomID] = struct{}{}
	return true, nil
}

func (d *Driver) Release(_ context.Context, roomID model.RoomID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.rooms, roomID)
	return nil
}
