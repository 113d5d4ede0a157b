//go:build integration

package integrationtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis"
	infra_media "github.com/humanbelnik/penaltydraw/internal/infra/media"
	infra_pg_init "github.com/humanbelnik/penaltydraw/internal/infra/postgres/init"
	infra_postgres_room "github.com/humanbelnik/penaltydraw/internal/infra/postgres/room"
	infra_redis_drawlock "github.com/humanbelnik/penaltydraw/internal/infra/redis/drawlock"
	infra_redis_init "github.com/humanbelnik/penaltydraw/internal/infra/redis/init"
	infra_redis_status_cache "github.com/humanbelnik/penaltydraw/internal/infra/redis/status_cache"
	"github.com/humanbelnik/penaltydraw/internal/model"
	usecase_draw "github.com/humanbelnik/penaltydraw/internal/usecase/draw"
	usecase_room "github.com/humanbelnik/penaltydraw/internal/usecase/room"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type UsecaseRoomIntegrationSuite struct {
	suite.Suite

	rooms   *usecase_room.Usecase
	draws   *usecase_draw.Usecase
	redis   *redis.Client
	cache   *infra_redis_status_cache.Driver
	lock    *infra_redis_drawlock.Driver
	mediaUp *httptest.Server
}

func (s *UsecaseRoomIntegrationSuite) BeforeAll(t provider.T) {
	cfg := getConfig()

	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
	roomRepository := infra_postgres_room.New(pgConn)

	s.redis = infra_redis_init.MustEstablishConn(cfg.Redis)
	s.cache = infra_redis_status_cache.New(s.redis, "it_room_status", time.Minute)
	s.lock = infra_redis_drawlock.New(s.redis, "it_draw_lock", time.Minute)

	s.mediaUp = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"videoUrl":"https://cdn.example/penalty.mp4"}`))
	}))

	s.rooms = usecase_room.New(roomRepository, usecase_room.WithStatusCache(s.cache))
	s.draws = usecase_draw.New(roomRepository, infra_media.New(s.mediaUp.URL, nil), s.lock,
		usecase_draw.WithCache(s.cache),
		usecase_draw.WithTimeout(10*time.Second),
	)
}

func (s *UsecaseRoomIntegrationSuite) AfterAll(t provider.T) {
	s.mediaUp.Close()
	s.redis.Close()
}

func (s *UsecaseRoomIntegrationSuite) TestIntegrationRoomLifecycle(t provider.T) {
	ctx := context.Background()

	roomID, names, err := s.rooms.Create(ctx, []string{" Alice ", "Bob", "Carol"})
	require.NoError(t, err)
	assert.Len(t, string(roomID), 6)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, names)

	status, err := s.rooms.Status(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseWaiting, status.Phase())
	assert.Equal(t, names, status.Participants)

	assert.NoError(t, s.rooms.Authorize(ctx, roomID, "Alice"))
	assert.ErrorIs(t, s.rooms.Authorize(ctx, roomID, "Bob"), model.ErrNotHost)

	result, err := s.draws.Start(ctx, roomID, model.DrawImage)
	require.NoError(t, err)
	assert.Contains(t, names, result.Loser)
	assert.Equal(t, model.PlaceholderMemeURLs(), result.MemeURLs)

	status, err = s.rooms.Status(ctx, roomID)
	require.NoError(t, err)
	assert.True(t, status.IsStarted)
	assert.Equal(t, result.Loser, status.Loser)
	assert.Empty(t, status.VideoURL)

	_, err = s.draws.Start(ctx, roomID, model.DrawImage)
	assert.ErrorIs(t, err, model.ErrAlreadyStarted)

	require.NoError(t, s.rooms.Reset(ctx, roomID))
	status, err = s.rooms.Status(ctx, roomID)
	require.NoError(t, err)
	assert.False(t, status.IsStarted)
	assert.Empty(t, status.Loser)
	assert.Nil(t, status.MemeURLs)

	result, err = s.draws.Start(ctx, roomID, model.DrawVideo)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/penalty.mp4", result.VideoURL)
	assert.Nil(t, result.MemeURLs)

	status, err = s.rooms.Status(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, result.VideoURL, status.VideoURL)
}

func (s *UsecaseRoomIntegrationSuite) TestIntegrationConcurrentDraw(t provider.T) {
	ctx := context.Background()

	roomID, _, err := s.rooms.Create(ctx, []string{"Alice", "Bob", "Carol", "Dave"})
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.draws.Start(ctx, roomID, model.DrawImage); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	acquired, err := s.lock.Acquire(ctx, roomID)
	require.NoError(t, err)
	assert.True(t, acquired, "lock must be released after the draw")
	require.NoError(t, s.lock.Release(ctx, roomID))
}

func (s *UsecaseRoomIntegrationSuite) TestIntegrationStaleSnapshotIsDropped(t provider.T) {
	ctx := context.Background()
	roomID := model.RoomID("CACHE1")

	stale := model.RoomStatus{RoomID: roomID, IsStarted: true, Loser: "Bob", Participants: []string{"Alice", "Bob"}}
	fresh := model.RoomStatus{RoomID: roomID, Participants: []string{"Alice", "Bob"}}

	// a poller reads the version, then a reset lands before its write
	readVersion, err := s.cache.Version(ctx, roomID)
	require.NoError(t, err)
	require.NoError(t, s.cache.Invalidate(ctx, roomID))

	require.NoError(t, s.cache.Set(ctx, stale, readVersion))
	_, ok, err := s.cache.Get(ctx, roomID)
	require.NoError(t, err)
	assert.False(t, ok, "snapshot read before the reset must not be cached")

	current, err := s.cache.Version(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, readVersion+1, current)

	require.NoError(t, s.cache.Set(ctx, fresh, current))
	cached, ok, err := s.cache.Get(ctx, roomID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fresh.Participants, cached.Participants)
	assert.False(t, cached.IsStarted)
}

func (s *UsecaseRoomIntegrationSuite) TestIntegrationUnknownRoom(t provider.T) {
	ctx := context.Background()

	_, err := s.rooms.Status(ctx, "ZZZZZZ")
	assert.ErrorIs(t, err, model.ErrRoomNotFound)

	_, err = s.draws.Start(ctx, "ZZZZZZ", model.DrawImage)
	assert.ErrorIs(t, err, model.ErrRoomNotFound)
}

func TestRoomIntegrationSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRoomIntegrationSuite))
}
