package http_ratelimit_middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	http_host_middleware "github.com/humanbelnik/penaltydraw/internal/delivery/http/middleware/host"
	"github.com/humanbelnik/penaltydraw/internal/model"
	"github.com/stretchr/testify/assert"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func newEngine(limiter *Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	api := engine.Group("/api/v1", limiter.Middleware())
	api.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.GET("/rooms/:room_id/status", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.POST("/videos", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return engine
}

func serve(engine *gin.Engine, method, path, ip, name string) int {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = ip + ":1234"
	if name != "" {
		req.Header.Set(http_host_middleware.Header, name)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestMiddleware(t *testing.T) {
	engine := newEngine(New(1, 2))

	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodGet, "/api/v1/ping", "10.0.0.1", ""))
	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodGet, "/api/v1/ping", "10.0.0.1", ""))
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodGet, "/api/v1/ping", "10.0.0.1", ""))
	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodGet, "/api/v1/ping", "10.0.0.2", ""))
}

func TestFullRoomBehindOneAddress(t *testing.T) {
	const (
		interval = 2 * time.Second
		ticks    = 30
	)

	cases := []struct {
		name  string
		rps   float64
		burst int
		named bool
	}{
		{name: "named participants get a bucket each", rps: 2, burst: 10, named: true},
		{name: "anonymous viewers fit the default allowance", rps: 5, burst: 20, named: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := &testClock{now: time.Unix(1_700_000_000, 0)}
			limiter := New(tc.rps, tc.burst)
			limiter.now = clock.Now
			engine := newEngine(limiter)

			denied := 0
			for range ticks {
				for i := range model.MaxParticipants {
					name := ""
					if tc.named {
						name = fmt.Sprintf("player%d", i)
					}
					if serve(engine, http.MethodGet, "/api/v1/rooms/K3X9QZ/status", "203.0.113.7", name) != http.StatusNoContent {
						denied++
					}
				}
				clock.now = clock.now.Add(interval)
			}

			assert.Zero(t, denied, "denied %d of %d polls", denied, ticks*model.MaxParticipants)
		})
	}
}

func TestSkipPaths(t *testing.T) {
	engine := newEngine(New(1, 1, WithSkipPaths("/api/v1/videos")))

	for range 5 {
		assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodPost, "/api/v1/videos", "127.0.0.1", ""))
	}
	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodGet, "/api/v1/ping", "127.0.0.1", ""))
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodGet, "/api/v1/ping", "127.0.0.1", ""))
}

func TestRoomsDoNotShareBuckets(t *testing.T) {
	engine := newEngine(New(1, 1))

	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodGet, "/api/v1/rooms/AAAAAA/status", "10.0.0.1", "Alice"))
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodGet, "/api/v1/rooms/AAAAAA/status", "10.0.0.1", "Alice"))
	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodGet, "/api/v1/rooms/BBBBBB/status", "10.0.0.1", "Alice"))
	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodGet, "/api/v1/rooms/AAAAAA/status", "10.0.0.1", "Bob"))
}
