// Package middleware holds request-scoped guards that sit in front of
// individual routes rather than the whole mux.
package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"portal-content/internal/handler/http/auth"
	"portal-content/internal/observability/logging"
)

const (
	defaultIdleTTL = 10 * time.Minute
	defaultMaxKeys = 10000
)

// WriteLimiter throttles mutating requests with one token bucket per caller.
// Callers are keyed by JWT subject when authenticated and by remote host otherwise.
type WriteLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	maxKeys int
	now     func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewWriteLimiter creates a limiter allowing rps sustained writes with the given burst.
// A non-positive rps disables limiting.
func NewWriteLimiter(rps float64, burst int) *WriteLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &WriteLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: defaultIdleTTL,
		maxKeys: defaultMaxKeys,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Middleware rejects callers that exhausted their bucket with 429 and a Retry-After header.
func (l *WriteLimiter) Middleware(next http.Handler) http.Handler {
	if l == nil || l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callerKey(r)
		wait, ok := l.reserve(key)
		if !ok {
			RecordWriteRejected()
			logging.FromContext(r.Context()).Warn("write rate limit exceeded",
				slog.String("path", r.URL.Path),
				slog.Duration("retry_after", wait),
			)
			retry := int(wait.Seconds())
			if time.Duration(retry)*time.Second < wait {
				retry++
			}
			w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// reserve takes a token for key. When none is available it returns the wait
// until the next one and leaves the bucket untouched.
func (l *WriteLimiter) reserve(key string) (time.Duration, bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.maxKeys {
			l.evictLocked(now)
		}
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return 0, false
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return delay, false
	}
	return 0, true
}

// Cleanup drops buckets idle for longer than the idle TTL.
func (l *WriteLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evictLocked(l.now())
}

func (l *WriteLimiter) evictLocked(now time.Time) int {
	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
			removed++
		}
	}
	// Still full: drop everything rather than grow without bound.
	if len(l.buckets) >= l.maxKeys {
		removed += len(l.buckets)
		clear(l.buckets)
	}
	return removed
}

// Len returns the number of tracked callers.
func (l *WriteLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func callerKey(r *http.Request) string {
	if id, ok := auth.FromContext(r.Context()); ok && id.Subject != "" {
		return "sub:" + id.Subject
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
