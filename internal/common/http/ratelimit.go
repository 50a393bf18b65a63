package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AlibekovAA/toggle-task/internal/common/constants"
	"github.com/AlibekovAA/toggle-task/internal/observability/metrics"
)

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	cleanup  *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		cleanup:  time.NewTicker(constants.RateLimitCleanupInterval),
		done:     make(chan struct{}),
	}

	go rl.cleanupLimiters()

	return rl
}

func (rl *RateLimiter) cleanupLimiters() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.cleanup.C:
			rl.mu.Lock()
			for key, limiter := range rl.limiters {
				// a full bucket means the client has been idle
				if limiter.Tokens() >= float64(rl.burst) {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanup.Stop()
		close(rl.done)
	})
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		limiter, exists = rl.limiters[key]
		if !exists {
			limiter = rate.NewLimiter(rl.rate, rl.burst)
			rl.limiters[key] = limiter
		}
		rl.mu.Unlock()
	}

	return limiter
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// AuthRateLimiter throttles credential submissions per client IP. Only POST
// requests spend tokens so the forms themselves always render.
type AuthRateLimiter struct {
	login  *RateLimiter
	signup *RateLimiter
	ips    *ClientIPResolver
}

// NewAuthRateLimiter keys buckets by ips.ClientIP; a nil resolver trusts no
// forwarding headers.
func NewAuthRateLimiter(ips *ClientIPResolver) *AuthRateLimiter {
	if ips == nil {
		ips = &ClientIPResolver{}
	}
	return &AuthRateLimiter{
		login:  NewRateLimiter(constants.RateLimitLoginRequestsPerSecond, constants.RateLimitLoginBurst),
		signup: NewRateLimiter(constants.RateLimitSignupRequestsPerSecond, constants.RateLimitSignupBurst),
		ips:    ips,
	}
}

func (a *AuthRateLimiter) Stop() {
	a.login.Stop()
	a.signup.Stop()
}

func (a *AuthRateLimiter) Login(next http.Handler) http.Handler {
	return limitPosts(a.login, a.ips, "/login", "login", next)
}

func (a *AuthRateLimiter) Signup(next http.Handler) http.Handler {
	return limitPosts(a.signup, a.ips, "/signup", "signup", next)
}

func limitPosts(limiter *RateLimiter, ips *ClientIPResolver, path, limiterType string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !limiter.Allow(ips.ClientIP(r)) {
			metrics.RateLimitBlocked.WithLabelValues(path, limiterType).Inc()
			w.Header().Set("Retry-After", "10")
			WriteError(w, http.StatusTooManyRequests, "too many attempts, please wait a moment and try again")
			return
		}
		next.ServeHTTP(w, r)
	})
}
