package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimitConfig configures the sliding window limiter.
type RateLimitConfig struct {
	// Max requests per Window. Zero disables limiting.
	Max    int
	Window time.Duration
	// Key extracts the client key, by default the client IP.
	Key func(*http.Request) string
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// window counts requests in the current fixed window and remembers the count
// of the previous one.
type window struct {
	start      time.Time
	curr, prev float64
}

// Limiter is a per-key sliding window rate limiter.
type Limiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	windows map[string]*window
}

// NewLimiter creates a Limiter, applying defaults to zero fields.
func NewLimiter(cfg RateLimitConfig) *Limiter {
	if cfg.Key == nil {
		cfg.Key = ClientIP
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Limiter{cfg: cfg, windows: make(map[string]*window)}
}

// Allow counts one request for key. It reports the remaining budget, the end
// of the current window and whether the request fits.
func (l *Limiter) Allow(key string) (remaining int, reset time.Time, ok bool) {
	now := l.cfg.Clock.Now()
	size := l.cfg.Window

	l.mu.Lock()
	defer l.mu.Unlock()

	w, found := l.windows[key]
	start := now.Truncate(size)
	switch {
	case !found:
		w = &window{start: start}
		l.windows[key] = w
	case start.Sub(w.start) >= 2*size:
		*w = window{start: start}
	case start.After(w.start):
		*w = window{start: start, prev: w.curr}
	}

	// Weight the previous window by how much of it the sliding window still
	// covers.
	weight := 1 - float64(now.Sub(w.start))/float64(size)
	used := w.prev*weight + w.curr
	reset = w.start.Add(size)

	if used >= float64(l.cfg.Max) {
		return 0, reset, false
	}
	w.curr++
	return max(0, int(float64(l.cfg.Max)-used-1)), reset, true
}

// evict drops keys idle for two windows.
func (l *Limiter) evict() {
	cutoff := l.cfg.Clock.Now().Add(-2 * l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if w.start.Before(cutoff) {
			delete(l.windows, key)
		}
	}
}

// Run evicts idle keys until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	t := l.cfg.Clock.NewTicker(2 * l.cfg.Window)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			l.evict()
		}
	}
}

// Middleware sets X-RateLimit-* headers and rejects requests over budget
// with 429.
func (l *Limiter) Middleware() Middleware {
	limit := strconv.Itoa(l.cfg.Max)
	return func(next http.Handler) http.Handler {
		if l.cfg.Max <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, reset, ok := l.Allow(l.cfg.Key(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
			if !ok {
				wait := max(0, reset.Sub(l.cfg.Clock.Now()).Seconds())
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
