package infra_redis_drawlock

import (
	"context"
	"time"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

// Driver holds one short-lived key per room while a draw is being resolved.
// The ttl bounds how long a crashed instance can block the room.
type Driver struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func New(
	client *redis.Client,
	key string,
	ttl time.Duration,
) *Driver {
	return &Driver{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (d *Driver) Acquire(ctx context.Context, roomID model.RoomID) (bool, error) {
	ok, err := d.client.SetNX(d.getFullKey(roomID), "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (d *Driver) Release(ctx context.Context, roomID model.RoomID) error {
	return d.client.Del(d.getFullKey(roomID)).Err()
}

func (d *Driver) getFullKey(roomID model.RoomID) string {
	if d.key != "" {
		return d.key + ":" + string(roomID)
	}
	return string(roomID)
}
