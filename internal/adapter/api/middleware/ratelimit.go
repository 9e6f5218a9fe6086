package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/V4T54L/yapli/internal/adapter/metrics"
)

// RateLimiter keeps one token bucket per authenticated caller.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// NewRateLimiter creates a limiter allowing rps steady requests per caller with bursts of burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok = l.limiters[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.rps, l.burst)
	l.limiters[key] = lim
	return lim
}

// Allow reports whether the caller identified by key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// RateLimit rejects requests over the caller's budget with 429. It must run
// after Auth; unauthenticated requests are keyed by remote address.
func RateLimit(l *RateLimiter, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := IdentityFromContext(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}
			if !l.Allow(key) {
				if m != nil {
					m.RateLimited.Inc()
				}
				logger.Warn("rate limit exceeded", "path", r.URL.Path)
				writeJSONError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
