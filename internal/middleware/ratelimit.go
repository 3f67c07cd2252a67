package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"fabr-admin/internal/constants"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client IP. Buckets idle longer than
// the TTL are forgotten.
type Limiter struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	limit     rate.Limit
	burst     int
	clients   map[string]*client
	ttl       time.Duration
	lastPrune time.Time
}

// NewLimiter allows burst attempts at once, refilled at rate per second.
func NewLimiter(perSecond, burst float64, clock clockwork.Clock) *Limiter {
	return &Limiter{
		clock:     clock,
		limit:     rate.Limit(perSecond),
		burst:     max(int(burst), 1),
		clients:   make(map[string]*client),
		ttl:       constants.LoginLimiterTTL,
		lastPrune: clock.Now(),
	}
}

func (l *Limiter) Allow(r *http.Request) bool {
	ip := clientIP(r)
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	c, ok := l.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *Limiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < constants.LoginLimiterPrune {
		return
	}
	l.lastPrune = now

	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > l.ttl {
			delete(l.clients, ip)
		}
	}
}

// RateLimit rejects requests to the given paths once the client's bucket is empty.
func RateLimit(l *Limiter, paths ...string) func(http.Handler) http.Handler {
	limited := make(map[string]bool, len(paths))
	for _, p := range paths {
		limited[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limited[r.URL.Path] && !l.Allow(r) {
				w.Header().Set("Retry-After", "5")
				writeError(w, http.StatusTooManyRequests, "resource_exhausted", "Muitas tentativas. Aguarde e tente novamente.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For is not trusted.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
