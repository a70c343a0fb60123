package llm

import (
	"math/rand"
	"time"
)

// RetryConfig governs how a single endpoint is retried before the client
// moves on to the capability's fallback chain.
type RetryConfig struct {
	// MaxAttempts bounds the tries per endpoint, including the first.
	MaxAttempts int

	// BackoffBase is the wait after the first failed attempt.
	BackoffBase time.Duration

	// BackoffMultiplier grows the wait on each further attempt.
	BackoffMultiplier float64

	// MaxBackoff caps the grown wait.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the retry profile for interactive conversation
// turns. A traveler is blocked on every completion, so waits stay short and
// sustained outages are handled by falling back to the next endpoint rather
// than by deeper retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        5 * time.Second,
	}
}

// calculateBackoff computes the exponential wait before the next attempt.
// Jitter of up to 25% either way keeps concurrent sessions from retrying in
// lockstep.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}

	backoff := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if backoff > c.retryConfig.MaxBackoff {
		backoff = c.retryConfig.MaxBackoff
	}

	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}
