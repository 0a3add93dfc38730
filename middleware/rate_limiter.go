package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	visitorSweepInterval = 5 * time.Minute
	visitorIdleLimit     = 10 * time.Minute
)

// RateLimiter throttles each remote IP to the given number of requests per
// window, with a token bucket per visitor. Buckets left idle are swept so
// the map does not grow with every address that ever connected.
func RateLimiter(requests int, window time.Duration) fiber.Handler {
	type visitor struct {
		limiter *rate.Limiter
		seen    time.Time
	}

	var (
		visitors = make(map[string]*visitor)
		mu       sync.Mutex
	)

	go func() {
		for {
			time.Sleep(visitorSweepInterval)
			mu.Lock()
			for ip, v := range visitors {
				if time.Since(v.seen) > visitorIdleLimit {
					delete(visitors, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *fiber.Ctx) error {
		ip := c.IP()

		mu.Lock()
		v, ok := visitors[ip]
		if !ok {
			v = &visitor{limiter: rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests)}
			visitors[ip] = v
		}
		v.seen = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return c.Next()
	}
}
