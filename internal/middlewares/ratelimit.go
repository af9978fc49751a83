package middlewares

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/params"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token bucket limiter.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	r        rate.Limit
	burst    int
	stopCh   chan struct{}
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.limiters[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.limiters[ip] = &ipLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(params.RateLimitIdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.limiters {
				if time.Since(v.lastSeen) > params.RateLimitIdleTimeout {
					delete(rl.limiters, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if !rl.get(ctx.IP()).Allow() {
			return NewAPIError(fiber.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
		}
		return ctx.Next()
	}
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = params.RateLimitRPS
	}
	if burst <= 0 {
		burst = params.RateLimitBurst
	}
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		r:        rate.Limit(rps),
		burst:    burst,
		stopCh:   make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}
