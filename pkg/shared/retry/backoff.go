// Package retry implements the exponential-backoff-with-jitter policy
// shared by the LLM Gateway and the Dashboard Source Client: initial
// delay 2s, multiplier 2, jitter +/-50%, cap 60s, up to 5 attempts.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// Policy is an exponential backoff schedule.
type Policy struct {
	InitialDelay time.Duration
	Multiplier   float64
	JitterFrac   float64
	MaxDelay     time.Duration
	MaxAttempts  int
}

// Default matches spec.md §4.3/§7: 2s initial, x2, +/-50% jitter, 60s cap, 5 attempts.
func Default() Policy {
	return Policy{
		InitialDelay: 2 * time.Second,
		Multiplier:   2,
		JitterFrac:   0.5,
		MaxDelay:     60 * time.Second,
		MaxAttempts:  5,
	}
}

// Retryable is implemented by errors that carry their own retry verdict.
type Retryable interface {
	Retryable() bool
}

// ErrExhausted is returned when every attempt in the policy's budget failed.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Do runs fn up to MaxAttempts times, sleeping between attempts per the
// backoff schedule. fn's error decides whether to retry: if it
// implements Retryable, that verdict is used; otherwise every non-nil
// error is treated as retryable. The last error is returned (wrapped
// in ErrExhausted) if all attempts fail.
func Do(ctx context.Context, p Policy, fn func(attempt int) error) error {
	delay := p.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if r, ok := err.(Retryable); ok && !r.Retryable() {
			return err
		}

		if attempt == p.MaxAttempts {
			break
		}

		sleep := jitter(delay, p.JitterFrac)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return errors.Join(ErrExhausted, lastErr)
}

func jitter(base time.Duration, frac float64) time.Duration {
	if frac <= 0 {
		return base
	}
	delta := float64(base) * frac
	offset := (rand.Float64()*2 - 1) * delta // #nosec G404 -- jitter, not security sensitive
	d := time.Duration(float64(base) + offset)
	if d < 0 {
		return 0
	}
	return d
}
