package middleware

import (
	"net/http"
	"sync"
	"time"

	"siso/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowCounter counts requests of one client inside a fixed window.
type windowCounter struct {
	count     int
	windowEnd time.Time
}

// limiter is a fixed-window counter keyed by client IP. Expired entries are
// swept lazily at most once per purgeInterval.
type limiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	entries   map[string]*windowCounter
	nextSweep time.Time
	now       func() time.Time
}

const purgeInterval = 5 * time.Minute

func newLimiter(limit int, window time.Duration) *limiter {
	return &limiter{limit: limit, window: window, entries: map[string]*windowCounter{}, now: time.Now}
}

// allow records one hit for key and reports whether it is within the limit,
// plus the end of the current window.
func (l *limiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		l.sweep(now)
	}

	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowCounter{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

func (l *limiter) sweep(now time.Time) {
	purged := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			purged++
		}
	}
	l.nextSweep = now.Add(purgeInterval)
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.entries)).Msg("rate limiter entries purged")
	}
}

func (l *limiter) middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute).middleware("Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// RateLimiter limits every request to limit per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window).middleware("Muitas requisições. Tente novamente em instantes.")
}
