package llm

import (
	"context"
	"time"
)

// RetryPolicy bounds the retry loop around a provider call.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before attempt n is BaseDelay * 2^(n-1)
	OnRetry     func()        // observed once per retry attempt, may be nil
}

// DefaultRetryPolicy matches the upstream call contract: 3 attempts with
// 1s, 2s backoff between them.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}

// Retry runs fn until it succeeds, attempts are exhausted, or ctx is done.
// Rate-limit and credential errors are not retried: backing off will not
// produce a key, and hammering a rate limiter makes things worse. The last
// failure is returned.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	delay := policy.BaseDelay
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &ProviderError{
					Code:    ErrCodeTimeout,
					Message: "retry cancelled",
					Err:     ctx.Err(),
				}
			case <-time.After(delay):
			}
			delay *= 2
			if policy.OnRetry != nil {
				policy.OnRetry()
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		switch ErrorCode(lastErr) {
		case ErrCodeRateLimit, ErrCodeAPIKey:
			return lastErr
		}
	}
	return lastErr
}
