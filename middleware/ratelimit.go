package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"ShopAssist/pkg/cache"

	"github.com/gin-gonic/gin"
)

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// RateLimiter is a token bucket per user@ip key. Every window refills the
// bucket to capacity, so a bucket idle for a full window is dropped and the
// key starts over with a fresh one.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  *cache.Cache
	window   time.Duration
	capacity int
	now      func() time.Time
}

func NewRateLimiter(window time.Duration, capacity int) *RateLimiter {
	if window <= 0 {
		window = 10 * time.Second
	}
	if capacity <= 0 {
		capacity = 5
	}
	return &RateLimiter{
		buckets:  cache.New(0, window),
		window:   window,
		capacity: capacity,
		now:      time.Now,
	}
}

func clientIP(c *gin.Context) string {
	ip := strings.TrimSpace(c.ClientIP())
	if ip == "" {
		host, _, _ := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
		ip = host
	}
	return ip
}

// ClientKey identifies the caller for rate limiting as user@ip.
func ClientKey(c *gin.Context) string {
	uid, _ := CurrentUserID(c)
	return fmt.Sprintf("%d@%s", uid, clientIP(c))
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	b := rl.bucketFor(key)
	if b == nil {
		b = &bucket{tokens: rl.capacity, lastRefill: now}
	}
	rl.buckets.Set(key, b, rl.window)
	elapsed := now.Sub(b.lastRefill)
	if elapsed > 0 {
		add := int(float64(rl.capacity) * (float64(elapsed) / float64(rl.window)))
		if add > 0 {
			b.tokens += add
			if b.tokens > rl.capacity {
				b.tokens = rl.capacity
			}
			b.lastRefill = now
		}
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) bucketFor(key string) *bucket {
	v, ok := rl.buckets.Get(key)
	if !ok {
		return nil
	}
	b, _ := v.(*bucket)
	return b
}

// Close stops the idle bucket sweeper.
func (rl *RateLimiter) Close() {
	rl.buckets.Close()
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(ClientKey(c)) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": "too many requests"})
			return
		}
		c.Next()
	}
}
