package llm

import (
	"math/rand/v2"
	"time"
)

// RetryConfig controls how Complete retries transient failures.
type RetryConfig struct {
	// MaxAttempts bounds the total tries per request, first included.
	MaxAttempts int

	// BackoffBase is the delay before the first retry.
	BackoffBase time.Duration

	// BackoffMultiplier scales the delay after each failed attempt.
	BackoffMultiplier float64

	// MaxBackoff caps the delay regardless of attempt count.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the retry policy used when a client is
// built without an explicit one.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       2 * time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        30 * time.Second,
	}
}

// backoff returns the delay before the given retry attempt (1-based):
// exponential growth from BackoffBase, capped at MaxBackoff, with
// ±25% jitter so concurrent callers don't retry in lockstep.
func (c RetryConfig) backoff(attempt int) time.Duration {
	delay := c.BackoffBase
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * c.BackoffMultiplier)
		if delay >= c.MaxBackoff {
			delay = c.MaxBackoff
			break
		}
	}
	if delay > c.MaxBackoff {
		delay = c.MaxBackoff
	}

	jitter := 1 + 0.25*(rand.Float64()*2-1)
	return time.Duration(float64(delay) * jitter)
}
