package resilience

import "time"

// RetryPolicy is an immutable configuration value describing how many times
// an operation may be re-attempted and how long to wait between attempts.
// Construct one per call site; the zero value means "no retries, no delay".
type RetryPolicy struct {
	// MaxRetries is the number of re-attempts after the first failure, so an
	// operation runs at most MaxRetries+1 times. Must be >= 0.
	MaxRetries int

	// BaseDelay is the wait before the first retry (and every retry when
	// ExponentialBackoff is false).
	BaseDelay time.Duration

	// MaxDelay caps the computed delay when ExponentialBackoff is true.
	MaxDelay time.Duration

	// ExponentialBackoff doubles the delay on every subsequent retry,
	// capped at MaxDelay.
	ExponentialBackoff bool
}

// DefaultRetryPolicy returns the canonical policy: three retries, one second
// base delay, ten second cap, exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:         3,
		BaseDelay:          time.Second,
		MaxDelay:           10 * time.Second,
		ExponentialBackoff: true,
	}
}

// Delay computes the wait before the attempt-th retry (attempt >= 1).
// With exponential backoff the delay is min(BaseDelay * 2^(attempt-1), MaxDelay);
// otherwise it is BaseDelay flat.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	if !p.ExponentialBackoff {
		return p.BaseDelay
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}
