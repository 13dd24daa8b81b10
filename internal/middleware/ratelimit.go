package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
)

// TokenBucket is an in-memory per-IP rate limiter. Each client may burst up
// to capacity requests; tokens refill evenly over window.
type TokenBucket struct {
	capacity float64
	perSec   float64
	window   time.Duration
	now      func() time.Time

	mu       sync.Mutex
	state    map[string]*bucket
	lastScan time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter allowing max requests per window
func NewTokenBucket(max int, window time.Duration) *TokenBucket {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &TokenBucket{
		capacity: float64(max),
		perSec:   float64(max) / window.Seconds(),
		window:   window,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

// GinMiddleware returns gin handler enforcing per-IP limits
func (l *TokenBucket) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if ok, retry := l.Allow(ip); !ok {
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeTooManyRequests, "Too many requests, please try again later"),
			))
			return
		}
		c.Next()
	}
}

// Allow takes a token for key. When none is left it reports how long until one is.
func (l *TokenBucket) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictIdle(now)

	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: l.capacity - 1, last: now}
		return true, 0
	}

	b.tokens += now.Sub(b.last).Seconds() * l.perSec
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.last = now

	if b.tokens < 1 {
		missing := 1 - b.tokens
		return false, time.Duration(missing / l.perSec * float64(time.Second))
	}
	b.tokens--
	return true, 0
}

// evictIdle drops buckets that have been full for a whole window
func (l *TokenBucket) evictIdle(now time.Time) {
	if now.Sub(l.lastScan) < l.window {
		return
	}
	l.lastScan = now
	for k, b := range l.state {
		if now.Sub(b.last) >= l.window {
			delete(l.state, k)
		}
	}
}
