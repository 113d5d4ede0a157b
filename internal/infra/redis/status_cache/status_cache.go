package infra_redis_status_cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis"
	"github.com/humanbelnik/penaltydraw/internal/model"
)

type statusDTO struct {
	RoomID       string   `json:"roomId"`
	IsStarted    bool     `json:"isStarted"`
	Loser        string   `json:"loser,omitempty"`
	MemeURLs     []string `json:"memeUrls"`
	VideoURL     string   `json:"videoUrl,omitempty"`
	Participants []string `json:"participants"`
}

// versionTTL bounds how long an idle room's version counter is kept.
const versionTTL = 24 * time.Hour

// Driver keeps a short-lived snapshot of each room status so a crowd of
// pollers hits the store at most once per ttl. Every room also has a version
// counter bumped by Invalidate; a snapshot is only written while the version
// it was read under is still current.
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

// Get reports false on a cache miss.
func (d *Driver) Get(ctx context.Context, roomID model.RoomID) (model.RoomStatus, bool, error) {
	raw, err := d.client.Get(d.getFullKey(roomID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return model.RoomStatus{}, false, nil
		}
		return model.RoomStatus{}, false, err
	}

	var dto statusDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return model.RoomStatus{}, false, err
	}

	return model.RoomStatus{
		RoomID:       model.RoomID(dto.RoomID),
		IsStarted:    dto.IsStarted,
		Loser:        dto.Loser,
		MemeURLs:     dto.MemeURLs,
		VideoURL:     dto.VideoURL,
		Participants: dto.Participants,
	}, true, nil
}

// Version returns the room's current version, 0 if it was never invalidated.
func (d *Driver) Version(ctx context.Context, roomID model.RoomID) (int64, error) {
	v, err := d.client.Get(d.getVersionKey(roomID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

// Set stores status unless the room was invalidated after version was read.
func (d *Driver) Set(ctx context.Context, status model.RoomStatus, version int64) error {
	raw, err := json.Marshal(statusDTO{
		RoomID:       string(status.RoomID),
		IsStarted:    status.IsStarted,
		Loser:        status.Loser,
		MemeURLs:     status.MemeURLs,
		VideoURL:     status.VideoURL,
		Participants: status.Participants,
	})
	if err != nil {
		return err
	}

	key := d.getFullKey(status.RoomID)
	versionKey := d.getVersionKey(status.RoomID)
	err = d.client.Watch(func(tx *redis.Tx) error {
		current, err := tx.Get(versionKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(func(pipe redis.Pipeliner) error {
			pipe.Set(key, raw, d.ttl)
			return nil
		})
		return err
	}, versionKey)
	if err == redis.TxFailedErr {
		return nil
	}
	return err
}

// Invalidate drops the snapshot and bumps the version so in-flight readers
// cannot put a stale one back.
func (d *Driver) Invalidate(ctx context.Context, roomID model.RoomID) error {
	versionKey := d.getVersionKey(roomID)
	pipe := d.client.TxPipeline()
	pipe.Incr(versionKey)
	pipe.Expire(versionKey, versionTTL)
	pipe.Del(d.getFullKey(roomID))
	_, err := pipe.Exec()
	return err
}

func (d *Driver) getVersionKey(roomID model.RoomID) string {
	return d.getFullKey(roomID) + ":version"
}

func (d *Driver) getFullKey(roomID model.RoomID) string {
	if d.key != "" {
		return d.key + ":" + string(roomID)
	}
	return string(roomID)
}
