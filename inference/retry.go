package inference

import (
	"context"
	"errors"
	"time"

	"github.com/jpillora/backoff"
)

type retryState int

const (
	stateAttempting retryState = iota
	stateBackoff
	stateExhausted
	stateSucceeded
	stateFailed
)

// RateLimitFunc is told about every rate limited attempt. retrying is false
// for the last one.
type RateLimitFunc func(attempt, maxAttempts int, err error, retrying bool)

// Retrier repeats a request that was rate limited, up to MaxAttempts times
// with a fixed delay in between. Other failures are returned at once.
type Retrier struct {
	MaxAttempts int
	Delay       time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetrier(maxAttempts int, delay time.Duration) *Retrier {
	return &Retrier{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		sleep:       sleepContext,
	}
}

// Do calls fn until it succeeds, fails with something other than a
// RateLimitError, or all attempts are used. It returns the number of attempts made.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) (*Response, error), onRateLimit RateLimitFunc) (*Response, int, error) {
	b := &backoff.Backoff{Min: r.Delay, Max: r.Delay, Factor: 1}

	var (
		state    = stateAttempting
		attempts int
		resp     *Response
		lastErr  error
	)
	for {
		switch state {
		case stateAttempting:
			attempts++
			resp, lastErr = fn(ctx)
			var rlErr *RateLimitError
			switch {
			case lastErr == nil:
				state = stateSucceeded
			case !errors.As(lastErr, &rlErr):
				state = stateFailed
			case attempts >= r.MaxAttempts:
				if onRateLimit != nil {
					onRateLimit(attempts, r.MaxAttempts, lastErr, false)
				}
				state = stateExhausted
			default:
				if onRateLimit != nil {
					onRateLimit(attempts, r.MaxAttempts, lastErr, true)
				}
				state = stateBackoff
			}
		case stateBackoff:
			var d time.Duration
			if r.Delay > 0 {
				d = b.Duration()
			}
			if err := r.sleep(ctx, d); err != nil {
				return nil, attempts, err
			}
			state = stateAttempting
		case stateSucceeded:
			return resp, attempts, nil
		case stateFailed:
			return nil, attempts, lastErr
		case stateExhausted:
			return nil, attempts, &ExhaustedError{Attempts: attempts, Last: lastErr}
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
