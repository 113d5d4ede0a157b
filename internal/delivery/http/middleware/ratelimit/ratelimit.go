package http_ratelimit_middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/penaltydraw/internal/delivery/http/common"
	http_host_middleware "github.com/humanbelnik/penaltydraw/internal/delivery/http/middleware/host"
	"golang.org/x/time/rate"
)

const idleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per caller. A caller is the client IP plus,
// on room routes, the room and the participant name, so a party sharing one
// address does not share one bucket.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	skip     map[string]struct{}
	now      func() time.Time
}

type Option func(*Limiter)

// WithSkipPaths exempts routes by their registered path, e.g. "/api/v1/videos".
func WithSkipPaths(paths ...string) Option {
	return func(l *Limiter) {
		for _, p := range paths {
			l.skip[p] = struct{}{}
		}
	}
}

func New(rps float64, burst int, opts ...Option) *Limiter {
	l := &Limiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		skip:     make(map[string]struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := l.skip[ctx.FullPath()]; ok {
			ctx.Next()
			return
		}
		if !l.allow(callerKey(ctx)) {
			http_common.Fail(ctx, http.StatusTooManyRequests, "too many requests")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func callerKey(ctx *gin.Context) string {
	key := ctx.ClientIP()
	if roomID := ctx.Param("room_id"); roomID != "" {
		key += "|" + roomID + "|" + ctx.GetHeader(http_host_middleware.Header)
	}
	return key
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > idleTTL {
			delete(l.visitors, k)
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}
