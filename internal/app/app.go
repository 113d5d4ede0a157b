package app

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/humanbelnik/penaltydraw/internal/config"
	http_init "github.com/humanbelnik/penaltydraw/internal/delivery/http/init"
	http_media "github.com/humanbelnik/penaltydraw/internal/delivery/http/media"
	http_access_middleware "github.com/humanbelnik/penaltydraw/internal/delivery/http/middleware/access"
	http_host_middleware "github.com/humanbelnik/penaltydraw/internal/delivery/http/middleware/host"
	http_ratelimit_middleware "github.com/humanbelnik/penaltydraw/internal/delivery/http/middleware/ratelimit"
	http_room "github.com/humanbelnik/penaltydraw/internal/delivery/http/room"
	infra_local_drawlock "github.com/humanbelnik/penaltydraw/internal/infra/local/drawlock"
	infra_media "github.com/humanbelnik/penaltydraw/internal/infra/media"
	infra_pg_init "github.com/humanbelnik/penaltydraw/internal/infra/postgres/init"
	infra_postgres_room "github.com/humanbelnik/penaltydraw/internal/infra/postgres/room"
	infra_redis_drawlock "github.com/humanbelnik/penaltydraw/internal/infra/redis/drawlock"
	infra_redis_init "github.com/humanbelnik/penaltydraw/internal/infra/redis/init"
	infra_redis_status_cache "github.com/humanbelnik/penaltydraw/internal/infra/redis/status_cache"
	infra_sqlite_init "github.com/humanbelnik/penaltydraw/internal/infra/sqlite/init"
	infra_sqlite_room "github.com/humanbelnik/penaltydraw/internal/infra/sqlite/room"
	usecase_draw "github.com/humanbelnik/penaltydraw/internal/usecase/draw"
	usecase_room "github.com/humanbelnik/penaltydraw/internal/usecase/room"
)

const (
	drawLockKey    = "draw_lock"
	statusCacheKey = "room_status"

	// a crashed draw must not keep its room locked forever
	drawLockMargin = 30 * time.Second
)

// roomRepository is satisfied by both storage drivers.
type roomRepository interface {
	usecase_room.RoomRepository
	usecase_draw.RoomRepository
}

func Go(cfg *config.Config) {
	logger := NewLogger(cfg.Log)
	slog.SetDefault(logger)

	repo := mustRoomRepository(cfg)

	roomOpts := []usecase_room.Option{usecase_room.WithLogger(logger)}
	drawOpts := []usecase_draw.Option{
		usecase_draw.WithLogger(logger),
		usecase_draw.WithTimeout(cfg.Media.DrawTimeout),
		usecase_draw.WithBaseVideo(cfg.Media.BaseVideo),
	}

	var lock usecase_draw.DrawLock
	if cfg.Redis.Enabled {
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		lock = infra_redis_drawlock.New(redisConn, drawLockKey, cfg.Media.DrawTimeout+drawLockMargin)
		statusCache := infra_redis_status_cache.New(redisConn, statusCacheKey, cfg.Redis.StatusTTL)
		roomOpts = append(roomOpts, usecase_room.WithStatusCache(statusCache))
		drawOpts = append(drawOpts, usecase_draw.WithCache(statusCache))
	} else {
		lock = infra_local_drawlock.New()
	}

	drawMedia := infra_media.New(cfg.Media.ProxyURL, nil)
	upstreamMedia := infra_media.New(cfg.Media.UpstreamURL, nil)

	roomUC := usecase_room.New(repo, roomOpts...)
	drawUC := usecase_draw.New(repo, drawMedia, lock, drawOpts...)

	hostMiddleware := http_host_middleware.New(roomUC)
	rateLimiter := http_ratelimit_middleware.New(cfg.HTTP.PollRate, cfg.HTTP.PollBurst,
		// draws call the proxy edge on this same server
		http_ratelimit_middleware.WithSkipPaths(http_init.APIPrefix+"/videos"),
	)

	controllerPool := http_init.NewControllerPool(
		cfg.HTTP.AllowedOrigins,
		rateLimiter.Middleware(),
		http_access_middleware.ReadOnly(cfg.HTTP.Mode),
	)
	controllerPool.Add(http_room.New(roomUC, drawUC, hostMiddleware.HostRequired(),
		http_room.WithLogger(logger),
		http_room.WithPublicBaseURL(cfg.Media.PublicBaseURL),
	))
	controllerPool.Add(http_media.New(upstreamMedia,
		http_media.WithLogger(logger),
		http_media.WithTimeout(cfg.Media.ProxyTimeout),
	))

	logger.Info("starting server",
		slog.String("port", cfg.HTTP.Port),
		slog.String("store", cfg.Store.Driver),
		slog.Bool("redis", cfg.Redis.Enabled),
		slog.String("mode", cfg.HTTP.Mode),
	)

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}

func mustRoomRepository(cfg *config.Config) roomRepository {
	switch cfg.Store.Driver {
	case "sqlite":
		return infra_sqlite_room.New(infra_sqlite_init.MustOpen(cfg.Store))
	default:
		return infra_postgres_room.New(infra_pg_init.MustEstablishConn(cfg.Postgres))
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(cfg.Level)}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func level(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
