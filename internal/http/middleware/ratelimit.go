package middleware

// Per-client token-bucket rate limiting. The registration API sits in front
// of shared capture stations: a stuck scanner or an operator leaning on the
// search box can flood /api/buscar-persona with a request per keystroke, and
// the SQLite backing store serializes writers, so unbounded traffic from one
// station degrades every station. Buckets are keyed by client IP because
// stations authenticate nothing; there is no other stable identity.
//
// The limiter is process-local. One backend serves one registration site, so
// a distributed limiter would be wasted machinery here.

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// bucketSweepThreshold is the number of bucket lookups between idle-entry
// sweeps. Sweeping on a lookup counter instead of a timer keeps the limiter
// goroutine-free.
const bucketSweepThreshold = 5000

// keyFunc maps a request to the identity owning its token bucket.
type keyFunc func(*gin.Context) string

// KeyByIP keys buckets by client IP, the only identity an anonymous capture
// station presents. Keys carry an "ip:" prefix so a future authenticated
// namespace cannot collide.
func KeyByIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// visitor pairs a station's token bucket with its last activity, which the
// sweep uses to decide eviction.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per identity and evicts buckets
// idle longer than ttl. Safe for concurrent use.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	keyFn    keyFunc
	mu       sync.Mutex
	visitors map[string]*visitor

	ttl      time.Duration
	cleanupN uint64
}

// NewRateLimiter builds a limiter replenishing rps tokens per second with
// the given burst per identity. A burst below 1 is coerced to 1 so a fresh
// bucket always admits at least one request.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
	}
}

// getVisitor returns the bucket for key, creating it on first sight. Every
// bucketSweepThreshold lookups it first evicts entries idle for ttl or
// longer; the sweep runs before the fetch so a stale bucket is evicted even
// when it is the one being asked for.
func (rl *RateLimiter) getVisitor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.cleanupN++
	if rl.cleanupN >= bucketSweepThreshold {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.cleanupN = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		lim := v.limiter
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// Handler returns the enforcement middleware. Requests that exhaust their
// bucket are rejected with 429, a Retry-After hint, and a compact JSON body
// carrying the correlation id.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := rl.getVisitor(rl.keyFn(c))
		if lim.Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
