package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByIP_PrefixesClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")
	c.Request = req

	if key := KeyByIP()(c); key != "ip:203.0.113.9" {
		t.Fatalf("key = %q, want ip:203.0.113.9", key)
	}
}

func TestNewRateLimiter_CoercesBurst(t *testing.T) {
	rl := NewRateLimiter(2.0, 0, KeyByIP())
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want 1 (coerced)", rl.burst)
	}
}

func TestGetVisitor_ReusesBucketPerKey(t *testing.T) {
	rl := NewRateLimiter(2.0, 1, KeyByIP())

	first := rl.getVisitor("ip:203.0.113.9")
	if first == nil {
		t.Fatal("expected a limiter")
	}
	if second := rl.getVisitor("ip:203.0.113.9"); second != first {
		t.Fatal("same key must map to the same bucket")
	}
	if other := rl.getVisitor("ip:203.0.113.10"); other == first {
		t.Fatal("different keys must not share a bucket")
	}
}

func TestGetVisitor_SweepEvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1.0, 1, KeyByIP())
	rl.ttl = time.Nanosecond

	rl.mu.Lock()
	rl.visitors["ip:idle-station"] = &visitor{
		limiter:  rate.NewLimiter(1, 1),
		lastSeen: time.Now().Add(-time.Hour),
	}
	rl.cleanupN = bucketSweepThreshold - 1 // next lookup triggers the sweep
	rl.mu.Unlock()

	_ = rl.getVisitor("ip:active-station")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["ip:idle-station"]; ok {
		t.Fatal("idle bucket survived the sweep")
	}
	if _, ok := rl.visitors["ip:active-station"]; !ok {
		t.Fatal("active bucket missing after sweep")
	}
}

func TestHandler_DeniesWith429Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// burst 1 at 1 rps: the first request drains the bucket, the second
	// immediate one must be rejected.
	rl := NewRateLimiter(1.0, 1, KeyByIP())

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Header("X-Request-ID", "rid-1"); c.Next() })
	r.Use(rl.Handler())
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", w2.Code)
	}
	if got := w2.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("Retry-After = %q, want 1", got)
	}

	var body map[string]any
	if err := json.Unmarshal(w2.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["code"] != "rate_limited" || body["message"] != "rate limit exceeded" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if body["request_id"] != "rid-1" {
		t.Fatalf("request_id = %v, want rid-1", body["request_id"])
	}
}
