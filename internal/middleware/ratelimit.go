package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pitchroast/api/pkg/response"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit creates a rate limiting middleware. Authenticated callers are
// keyed by user id, anonymous callers by client IP.
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := GetUserID(c)
		if identity == "" {
			identity = c.IP()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, identity)
		ctx := context.Background()

		// Increment counter
		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request
			return c.Next()
		}

		// Set expiration on first request
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// UploadLimit returns a rate limiter for deck uploads
func (rl *RateLimiter) UploadLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("upload", maxPerHour, time.Hour)
}

// RoastLimit returns a rate limiter for roast generation
func (rl *RateLimiter) RoastLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("roast", maxPerHour, time.Hour)
}

// StoryLimit returns a rate limiter for story posting
func (rl *RateLimiter) StoryLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("story", maxPerMin, time.Minute)
}
