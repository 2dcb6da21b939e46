package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/artenis/openjobboard/internal/metrics"
)

// waitForHost blocks until the minimum per-host spacing has elapsed.
// A limiter with burst 1 and an interval of minDelay guarantees two
// requests to one host are at least minDelay apart; the limiter's own
// lock serializes concurrent reservations, so parallel fetches cannot
// under-space each other. Distinct hosts never wait on one another.
func (c *Client) waitForHost(ctx context.Context, host string) error {
	if c.minDelay <= 0 {
		return nil
	}
	key := strings.ToLower(host)

	c.mu.Lock()
	limiter, ok := c.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(c.minDelay), 1)
		c.limiters[key] = limiter
	}
	c.mu.Unlock()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		metrics.ObserveRateLimitDelay(waited)
	}
	return nil
}
