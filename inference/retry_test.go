package inference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateLimitCall struct {
	attempt  int
	max      int
	retrying bool
}

func newTestRetrier(maxAttempts int, delay time.Duration) (*Retrier, *[]time.Duration) {
	var slept []time.Duration
	r := NewRetrier(maxAttempts, delay)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return r, &slept
}

func scripted(results ...error) (func(context.Context) (*Response, error), *int) {
	calls := 0
	return func(context.Context) (*Response, error) {
		err := results[calls]
		calls++
		if err != nil {
			return nil, err
		}
		return &Response{Parts: []Part{{Text: "ok"}}}, nil
	}, &calls
}

func TestRetrierExhaustsAfterMaxAttempts(t *testing.T) {
	r, slept := newTestRetrier(3, 5*time.Second)
	rl := &RateLimitError{Err: errors.New("429")}
	fn, calls := scripted(rl, rl, rl, nil)
	var seen []rateLimitCall

	resp, attempts, err := r.Do(context.Background(), fn, func(attempt, max int, err error, retrying bool) {
		seen = append(seen, rateLimitCall{attempt: attempt, max: max, retrying: retrying})
	})

	assert.Nil(t, resp)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, *calls)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, rl, exhausted.Last)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, *slept)
	assert.Equal(t, []rateLimitCall{{1, 3, true}, {2, 3, true}, {3, 3, false}}, seen)
}

func TestRetrierStopsOnSuccess(t *testing.T) {
	r, slept := newTestRetrier(3, 5*time.Second)
	fn, calls := scripted(&RateLimitError{Err: errors.New("429")}, nil, nil)

	resp, attempts, err := r.Do(context.Background(), fn, nil)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, *calls)
	assert.Equal(t, []time.Duration{5 * time.Second}, *slept)
}

func TestRetrierFirstAttemptSucceeds(t *testing.T) {
	r, slept := newTestRetrier(3, 5*time.Second)
	fn, calls := scripted(nil)

	_, attempts, err := r.Do(context.Background(), fn, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, *slept)
}

func TestRetrierDoesNotRetryOtherErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{name: "provider error", err: &ProviderError{Code: 403, Status: "PERMISSION_DENIED", Message: "denied"}},
		{name: "transport error", err: &TransportError{Err: errors.New("connection refused")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, slept := newTestRetrier(3, 5*time.Second)
			fn, calls := scripted(tc.err, nil)

			_, attempts, err := r.Do(context.Background(), fn, nil)

			assert.Equal(t, tc.err, err)
			assert.Equal(t, 1, attempts)
			assert.Equal(t, 1, *calls)
			assert.Empty(t, *slept)
		})
	}
}

func TestRetrierProviderErrorAfterRateLimit(t *testing.T) {
	r, _ := newTestRetrier(3, 5*time.Second)
	perr := &ProviderError{Code: 500, Status: "INTERNAL", Message: "oops"}
	fn, calls := scripted(&RateLimitError{Err: errors.New("429")}, perr, nil)

	_, attempts, err := r.Do(context.Background(), fn, nil)

	assert.Equal(t, perr, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, *calls)
}

func TestRetrierBackoffIsCancellable(t *testing.T) {
	r := NewRetrier(3, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	fn := func(context.Context) (*Response, error) {
		cancel()
		return nil, &RateLimitError{Err: errors.New("429")}
	}

	start := time.Now()
	_, attempts, err := r.Do(ctx, fn, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestRetrierZeroDelay(t *testing.T) {
	r, slept := newTestRetrier(2, 0)
	fn, _ := scripted(&RateLimitError{Err: errors.New("429")}, nil)

	_, attempts, err := r.Do(context.Background(), fn, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{0}, *slept)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, sleepContext(ctx, 0), context.Canceled)
}
