package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/flaco/hooked/internal/hdl/http/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines a per-IP token bucket.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// AuthLimit is the strict profile for credential endpoints.
var AuthLimit = RateLimitConfig{
	RequestsPerWindow: 5,
	Window:            time.Minute,
	Burst:             5,
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies conf per client IP. Idle entries are dropped after ten
// windows to bound memory.
func RateLimit(conf RateLimitConfig) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*ipLimiter)
	)

	limit := rate.Every(conf.Window / time.Duration(conf.RequestsPerWindow))

	cleanup := func(now time.Time) {
		for ip, l := range limiters {
			if now.Sub(l.lastSeen) > conf.Window*10 {
				delete(limiters, ip)
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				ip := clientIP(r)
				now := time.Now()

				mu.Lock()
				l, ok := limiters[ip]
				if !ok {
					l = &ipLimiter{limiter: rate.NewLimiter(limit, conf.Burst)}
					limiters[ip] = l
					cleanup(now)
				}
				l.lastSeen = now
				allowed := l.limiter.Allow()
				mu.Unlock()

				if !allowed {
					zap.L().Debug("rate limited", zap.String("ip", ip), zap.String("path", r.URL.Path))
					w.Header().Set("Retry-After", "60")
					utils.ErrResponse(w, http.StatusTooManyRequests, errTooManyRequests)
					return
				}

				next.ServeHTTP(w, r)
			},
		)
	}
}
