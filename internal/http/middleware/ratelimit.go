package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleCutoff    = 10 * time.Minute
)

// RateLimiter throttles clients with a token bucket per client key.
// The router installs it in front of the chat endpoints so one
// misbehaving widget cannot monopolize the dialogue engine.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	refill  float64 // tokens per second
	burst   float64
}

type tokenBucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter allows refill requests per second with the given
// burst per client key.
func NewRateLimiter(refill float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*tokenBucket),
		refill:  refill,
		burst:   float64(burst),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether a request under key fits within the limit and
// consumes a token when it does.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: rl.burst, seen: now}
		rl.buckets[key] = b
	}

	b.tokens += now.Sub(b.seen).Seconds() * rl.refill
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets that have been idle long enough to be full
// again, keeping the map from growing with one-off visitors.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-bucketIdleCutoff)
		for key, b := range rl.buckets {
			if b.seen.Before(cutoff) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit rejects requests exceeding the configured per-IP rate with
// 429 Too Many Requests. It expects to run behind chi's RealIP
// middleware, so RemoteAddr already names the client.
func RateLimit(refill float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(refill, burst)
	retryAfter := strconv.Itoa(int(1/refill) + 1)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}
			if !limiter.Allow(ip) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
