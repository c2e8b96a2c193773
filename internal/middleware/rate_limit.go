package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
)

// RateLimiter hands out one token bucket per API key, or per client IP for
// unauthenticated requests.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int

	whitelistedIPs map[string]bool
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		whitelistedIPs: map[string]bool{
			"127.0.0.1": true, // local bot
		},
	}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters[key] = limiter
	return limiter
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, _ := net.SplitHostPort(r.RemoteAddr)
		if l.whitelistedIPs[ip] {
			next.ServeHTTP(w, r)
			return
		}

		key := "ip:" + ip
		if apiKey := r.Header.Get(constants.HeaderAPIKey); apiKey != "" {
			key = "key:" + apiKey
		}

		if !l.getLimiter(key).Allow() {
			common.RespondError(w, time.Now(), nil, constants.MsgTooManyRequests, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
