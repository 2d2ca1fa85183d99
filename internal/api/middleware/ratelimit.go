package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/inkwell-journal/authcore/internal/api/helpers"
)

// IPRateLimiter holds one token-bucket limiter per client IP. Session
// issuance and verification are the endpoints most worth bounding —
// both are password/code guessing surfaces.
type IPRateLimiter struct {
	ips    sync.Map
	config limiterConfig
}

type limiterConfig struct {
	RPS   rate.Limit
	Burst int
}

// NewIPRateLimiter builds a limiter allowing rps requests per second
// per IP, bursting up to burst.
func NewIPRateLimiter(rps rate.Limit, burst int) *IPRateLimiter {
	l := &IPRateLimiter{config: limiterConfig{RPS: rps, Burst: burst}}
	go l.cleanupLoop()
	return l
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	limiter, exists := i.ips.Load(ip)
	if !exists {
		newLimiter := rate.NewLimiter(i.config.RPS, i.config.Burst)
		i.ips.Store(ip, newLimiter)
		return newLimiter
	}
	return limiter.(*rate.Limiter)
}

func (i *IPRateLimiter) cleanupLoop() {
	for {
		time.Sleep(10 * time.Minute)
		i.ips.Range(func(key, _ interface{}) bool {
			i.ips.Delete(key)
			return true
		})
	}
}

// Middleware enforces the per-IP rate limit, responding 429 when
// exceeded.
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := helpers.GetRealIP(r).String()

		if !i.getLimiter(ip).Allow() {
			slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
