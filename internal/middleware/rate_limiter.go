package middleware

import (
	"net/http"
	"sync"
	"time"

	"inventorypos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// purgeInterval bounds how long expired windows stay in memory.
const purgeInterval = 5 * time.Minute

type window struct {
	count int
	end   time.Time
}

// windowLimiter counts requests per key in fixed windows.
type windowLimiter struct {
	mu        sync.Mutex
	limit     int
	length    time.Duration
	entries   map[string]*window
	nextPurge time.Time
	now       func() time.Time
}

func newWindowLimiter(limit int, length time.Duration) *windowLimiter {
	return &windowLimiter{
		limit:   limit,
		length:  length,
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

// allow records one request for key and reports whether it is within the
// limit, along with the end of the current window.
func (l *windowLimiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextPurge) {
		l.purge(now)
		l.nextPurge = now.Add(purgeInterval)
	}

	w, ok := l.entries[key]
	if !ok || now.After(w.end) {
		w = &window{end: now.Add(l.length)}
		l.entries[key] = w
	}
	w.count++
	return w.count <= l.limit, w.end
}

// purge drops expired windows. Must be called under lock.
func (l *windowLimiter) purge(now time.Time) {
	purged := 0
	for key, w := range l.entries {
		if now.After(w.end) {
			delete(l.entries, key)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.entries)).Msg("rate limiter purged")
	}
}

func limitByIP(l *windowLimiter, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, end := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", end.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return limitByIP(newWindowLimiter(20, time.Minute), "Too many login attempts. Try again in a minute.")
}

// RateLimiter limits each IP to limit requests per window.
func RateLimiter(limit int, length time.Duration) gin.HandlerFunc {
	return limitByIP(newWindowLimiter(limit, length), "Too many requests. Try again shortly.")
}
