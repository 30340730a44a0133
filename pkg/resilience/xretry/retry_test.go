package xretry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNoBackoff(t *testing.T) {
	b := NewNoBackoff()
	for attempt := range 5 {
		assert.Zero(t, b.NextDelay(attempt))
	}
}

func TestFixedBackoff(t *testing.T) {
	assert.Equal(t, 50*time.Millisecond, NewFixedBackoff(50*time.Millisecond).NextDelay(7))
	assert.Zero(t, NewFixedBackoff(-time.Second).NextDelay(1))
}

func TestExponentialBackoff(t *testing.T) {
	b := NewExponentialBackoff(
		WithInitialDelay(10*time.Millisecond),
		WithMaxDelay(100*time.Millisecond),
		WithMultiplier(2),
		WithJitter(0),
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 10 * time.Millisecond},
		{1, 10 * time.Millisecond},
		{2, 20 * time.Millisecond},
		{3, 40 * time.Millisecond},
		{4, 80 * time.Millisecond},
		{5, 100 * time.Millisecond},
		{10_000, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoff_JitterStaysInRange(t *testing.T) {
	b := NewExponentialBackoff(
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(time.Second),
		WithJitter(0.5),
	)
	for range 100 {
		d := b.NextDelay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestExponentialBackoff_IgnoresInvalidOptions(t *testing.T) {
	b := NewExponentialBackoff(
		WithInitialDelay(-1),
		WithMaxDelay(0),
		WithMultiplier(0.5),
		WithJitter(-3),
		nil,
	)
	assert.Equal(t, 100*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, b.NextDelay(2))
}

func TestExponentialBackoff_MaxBelowInitial(t *testing.T) {
	b := NewExponentialBackoff(
		WithInitialDelay(time.Second),
		WithMaxDelay(10*time.Millisecond),
		WithJitter(0),
	)
	assert.Equal(t, time.Second, b.NextDelay(3))
}

func TestRetryer_SucceedsAfterFailures(t *testing.T) {
	var seen []int
	r := NewRetryer(
		WithRetryPolicy(NewFixedRetry(5)),
		WithBackoffPolicy(NewNoBackoff()),
		WithOnRetry(func(attempt int, _ error) { seen = append(seen, attempt) }),
	)

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestRetryer_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	r := NewRetryer(WithRetryPolicy(NewFixedRetry(3)), WithBackoffPolicy(NewNoBackoff()))

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRetryer_PermanentStopsImmediately(t *testing.T) {
	boom := errors.New("boom")
	r := NewRetryer(WithRetryPolicy(NewFixedRetry(5)), WithBackoffPolicy(NewNoBackoff()))

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(boom)
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRetryer_DoWithResult(t *testing.T) {
	r := NewRetryer(WithRetryPolicy(NewFixedRetry(2)), WithBackoffPolicy(NewNoBackoff()))

	calls := 0
	v, err := DoWithResult(context.Background(), r, func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("first")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRetryer_AlwaysRetryStopsOnContext(t *testing.T) {
	r := NewRetryer(
		WithRetryPolicy(AlwaysRetry{}),
		WithBackoffPolicy(NewFixedBackoff(time.Millisecond)),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := r.Do(ctx, func(context.Context) error { return errors.New("never") })
	assert.Error(t, err)
	assert.Error(t, ctx.Err())
}

func TestRetryer_InvalidArguments(t *testing.T) {
	var nilRetryer *Retryer
	assert.ErrorIs(t, nilRetryer.Do(context.Background(), func(context.Context) error { return nil }), ErrNilRetryer)

	r := NewRetryer()
	//nolint:staticcheck // 测试 nil ctx
	assert.ErrorIs(t, r.Do(nil, func(context.Context) error { return nil }), ErrNilContext)
	assert.ErrorIs(t, r.Do(context.Background(), nil), ErrNilFunc)

	_, err := DoWithResult[int](context.Background(), nil, func(context.Context) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, ErrNilRetryer)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	assert.False(t, IsPermanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
	assert.True(t, IsPermanent(Permanent(errors.New("x"))))
}
