package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	failure := &ProviderError{Code: ErrCodeServiceDown, Message: "down"}
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("expected the last failure back, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryRecoversMidway(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls < 3 {
			return &ProviderError{Code: ErrCodeServiceDown, Message: "blip"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryDoesNotRetryRateLimitOrCredential(t *testing.T) {
	for _, code := range []string{ErrCodeRateLimit, ErrCodeAPIKey} {
		calls := 0
		err := Retry(context.Background(), fastPolicy(3), func() error {
			calls++
			return &ProviderError{Code: code, Message: "nope"}
		})
		if err == nil {
			t.Fatalf("expected error for code %s", code)
		}
		if calls != 1 {
			t.Fatalf("expected 1 call for code %s, got %d", code, calls)
		}
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour}
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, policy, func() error {
			calls++
			return &ProviderError{Code: ErrCodeServiceDown, Message: "down"}
		})
	}()

	cancel()

	select {
	case err := <-done:
		if ErrorCode(err) != ErrCodeTimeout {
			t.Fatalf("expected timeout code on cancellation, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("retry did not observe cancellation")
	}
}

func TestRetryInvokesOnRetryHook(t *testing.T) {
	retries := 0
	policy := fastPolicy(3)
	policy.OnRetry = func() { retries++ }

	_ = Retry(context.Background(), policy, func() error {
		return &ProviderError{Code: ErrCodeServiceDown, Message: "down"}
	})

	if retries != 2 {
		t.Fatalf("expected 2 retry notifications, got %d", retries)
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &ProviderError{Provider: "anthropic", Code: ErrCodeServiceDown, Message: "post failed", Err: inner}

	if !errors.Is(err, inner) {
		t.Fatal("expected Unwrap to expose the inner error")
	}
	if ErrorCode(err) != ErrCodeServiceDown {
		t.Fatalf("unexpected code: %s", ErrorCode(err))
	}
	if ErrorCode(errors.New("plain")) != "" {
		t.Fatal("expected empty code for non-provider errors")
	}
}

func TestProviderRegistry(t *testing.T) {
	RegisterProvider("test-provider", func() (Provider, error) {
		return nil, errors.New("factory ran")
	})

	if _, err := NewProvider("test-provider"); err == nil || err.Error() != "factory ran" {
		t.Fatalf("expected registered factory to run, got %v", err)
	}
	if _, err := NewProvider("missing"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
