// Package retry runs an operation with exponential backoff. It retries only
// errors that report themselves as retryable.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

const DefaultMaxJitter = time.Second

// Policy controls how Do retries
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxJitter   time.Duration

	// Retryable decides whether err is worth another attempt. Nil uses IsRetryable.
	Retryable func(err error) bool
	// OnRetry is called before each backoff sleep
	OnRetry func(attempt int, delay time.Duration, err error)
	// Jitter overrides the random jitter source, mostly for tests
	Jitter func(ceiling time.Duration) time.Duration
}

// Default returns the policy used for completion calls: three attempts from a one second base
func Default() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxJitter: DefaultMaxJitter}
}

// IsRetryable reports whether err, or anything it wraps, has a Retryable method returning true
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && r.Retryable()
}

// Delay returns the backoff before the attempt following the given one, without jitter
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}
	return p.BaseDelay * time.Duration(1<<uint(attempt-1))
}

func (p Policy) jitter() time.Duration {
	ceiling := p.MaxJitter
	if ceiling <= 0 {
		return 0
	}
	if p.Jitter != nil {
		return p.Jitter(ceiling)
	}
	return rand.N(ceiling)
}

// Do calls op until it succeeds, fails with a non-retryable error, or runs out of attempts
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, errors.Join(err, lastErr)
			}
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !retryable(err) || attempt == attempts {
			return zero, err
		}

		delay := p.Delay(attempt) + p.jitter()
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
