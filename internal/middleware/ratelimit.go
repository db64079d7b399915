package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
)

// Limiter is a fixed-window request counter. Implementations must be safe for
// concurrent use.
type Limiter interface {
	// Allow records a hit for key and reports whether it stays within limit
	// for the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type entry struct {
	count    int
	windowAt time.Time
}

// MemoryLimiter counts requests in an in-process map. Suitable for
// single-instance deployments only; counters are lost on restart and not
// shared between replicas.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{entries: make(map[string]*entry)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowAt) {
		l.entries[key] = &entry{count: 1, windowAt: now.Add(window)}
		return true, nil
	}
	e.count++
	return e.count <= limit, nil
}

// Cleanup removes expired entries. Called periodically from main so the map
// does not grow with every client address ever seen.
func (l *MemoryLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, e := range l.entries {
		if now.After(e.windowAt) {
			delete(l.entries, key)
		}
	}
}

// RedisLimiter shares the window counters through Redis so the ceiling holds
// across replicas. INCR creates the key at 1; the first hit sets the expiry
// that closes the window.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := l.client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, "ratelimit:"+key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

// RateLimit throttles requests per client IP. On limiter errors the request
// is let through; an unreachable Redis must not take the API down with it.
func RateLimit(limiter Limiter, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, err := limiter.Allow(c.Context(), c.IP(), limit, window)
		if err != nil {
			return c.Next()
		}
		if !ok {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again in a few minutes.",
			})
		}
		return c.Next()
	}
}
