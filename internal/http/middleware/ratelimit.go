package middleware

import (
	"math"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/juju/ratelimit"

	"medstock/internal/http/response"
	"medstock/internal/metrics"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	rate     float64
	capacity int64
	metrics  *metrics.Metrics

	mu      sync.Mutex
	clients map[string]*ratelimit.Bucket
}

// NewRateLimiter allows each client rate requests per second with bursts of capacity.
func NewRateLimiter(rate float64, capacity int64, m *metrics.Metrics) *RateLimiter {
	if rate <= 0 {
		rate = 1
	}
	if capacity <= 0 {
		capacity = 1
	}
	return &RateLimiter{rate: rate, capacity: capacity, metrics: m, clients: make(map[string]*ratelimit.Bucket)}
}

func (rl *RateLimiter) bucket(ip string) *ratelimit.Bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.clients[ip]
	if !ok {
		b = ratelimit.NewBucketWithRate(rl.rate, rl.capacity)
		rl.clients[ip] = b
		rl.metrics.SetRateLimitBuckets(len(rl.clients))
	}
	return b
}

// Cleanup forgets clients whose buckets have refilled and returns how many remain.
func (rl *RateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.clients {
		if b.Available() >= b.Capacity() {
			delete(rl.clients, ip)
		}
	}
	rl.metrics.SetRateLimitBuckets(len(rl.clients))
	return len(rl.clients)
}

// Handler rejects requests over the limit with 429 TOO_MANY_REQUESTS.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.bucket(c.IP()).TakeAvailable(1) == 0 {
			rl.metrics.LoginAttempt("rate_limited")
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(1/rl.rate))))
			return response.Error(c, fiber.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many requests, try again later")
		}
		return c.Next()
	}
}
