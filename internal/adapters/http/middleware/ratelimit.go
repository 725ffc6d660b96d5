package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// staleAfter is how long an idle client's bucket is kept.
const staleAfter = 5 * time.Minute

// RateLimiter keeps one token bucket per client IP. Buckets hold at most
// burst tokens and refill continuously at burst per interval.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	burst    float64
	perToken time.Duration
	now      func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter admits rate requests per interval and client. Idle buckets
// are dropped once a minute until ctx is done.
func NewRateLimiter(ctx context.Context, rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		burst:    float64(rate),
		perToken: interval / time.Duration(rate),
		now:      time.Now,
	}
	go rl.janitor(ctx, time.Minute)
	return rl
}

func (rl *RateLimiter) janitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.dropIdle(staleAfter)
		}
	}
}

func (rl *RateLimiter) dropIdle(idle time.Duration) {
	cutoff := rl.now().Add(-idle)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.buckets {
		if b.last.Before(cutoff) {
			delete(rl.buckets, ip)
		}
	}
}

// Allow takes one token from ip's bucket.
// PRE: ip is non-empty
// POST: Returns true and consumes a token, or false when the bucket is empty
func (rl *RateLimiter) Allow(ip string) bool {
	ok, _ := rl.take(ip)
	return ok
}

// take reports whether a token was available and, if not, how long until
// the next one is.
func (rl *RateLimiter) take(ip string) (bool, time.Duration) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = &bucket{tokens: rl.burst, last: now}
		rl.buckets[ip] = b
	}
	b.tokens = math.Min(rl.burst, b.tokens+float64(now.Sub(b.last))/float64(rl.perToken))
	b.last = now

	if b.tokens < 1 {
		return false, time.Duration((1 - b.tokens) * float64(rl.perToken))
	}
	b.tokens--
	return true, 0
}

// RateLimit rejects requests over the client's budget with 429 and a
// Retry-After hint. A nil limiter disables limiting.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, wait := limiter.take(ip)
			if !ok {
				zerolog.Ctx(r.Context()).Warn().Str("ip", ip).Dur("retry_after", wait).Msg("rate_limit_exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP drops the port so one client's connections share a bucket.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
