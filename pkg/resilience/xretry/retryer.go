package xretry

import (
	"context"
	"math"
	"time"

	retry "github.com/avast/retry-go/v5"
)

// RetryPolicy 决定失败后是否继续尝试。
type RetryPolicy interface {
	// MaxAttempts 返回最大尝试次数（含首次），0 表示不限次数。
	MaxAttempts() int
}

// FixedRetry 固定次数重试策略。
type FixedRetry struct {
	attempts int
}

// NewFixedRetry 创建最多尝试 attempts 次（含首次）的策略，最小为 1。
func NewFixedRetry(attempts int) FixedRetry {
	return FixedRetry{attempts: max(attempts, 1)}
}

// MaxAttempts 实现 RetryPolicy。
func (p FixedRetry) MaxAttempts() int {
	return p.attempts
}

// AlwaysRetry 不限次数，直到成功、ctx 结束或遇到 Permanent 错误。
type AlwaysRetry struct{}

// MaxAttempts 实现 RetryPolicy。
func (AlwaysRetry) MaxAttempts() int {
	return 0
}

// Retryer 组合重试策略与退避策略，底层由 retry-go 执行。
// Retryer 无可变状态，可并发使用。
type Retryer struct {
	retryPolicy   RetryPolicy
	backoffPolicy BackoffPolicy
	onRetry       func(attempt int, err error)
}

// RetryerOption 配置 Retryer。
type RetryerOption func(*Retryer)

// WithRetryPolicy 设置重试策略，nil 忽略。
func WithRetryPolicy(p RetryPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.retryPolicy = p
		}
	}
}

// WithBackoffPolicy 设置退避策略，nil 忽略。
func WithBackoffPolicy(p BackoffPolicy) RetryerOption {
	return func(r *Retryer) {
		if p != nil {
			r.backoffPolicy = p
		}
	}
}

// WithOnRetry 设置每次失败后的回调，attempt 从 1 开始。
func WithOnRetry(fn func(attempt int, err error)) RetryerOption {
	return func(r *Retryer) {
		if fn != nil {
			r.onRetry = fn
		}
	}
}

// NewRetryer 创建重试执行器。默认 NewFixedRetry(3) + NewExponentialBackoff()。
func NewRetryer(opts ...RetryerOption) *Retryer {
	r := &Retryer{
		retryPolicy:   NewFixedRetry(3),
		backoffPolicy: NewExponentialBackoff(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Do 执行 fn，失败时按策略重试，返回最后一次错误。
func (r *Retryer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r == nil {
		return ErrNilRetryer
	}
	if ctx == nil {
		return ErrNilContext
	}
	if fn == nil {
		return ErrNilFunc
	}
	return retry.New(r.options(ctx)...).Do(func() error {
		return fn(ctx)
	})
}

// DoWithResult 与 Do 相同，但返回 fn 成功时的结果。
func DoWithResult[T any](ctx context.Context, r *Retryer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if r == nil {
		return zero, ErrNilRetryer
	}
	if ctx == nil {
		return zero, ErrNilContext
	}
	if fn == nil {
		return zero, ErrNilFunc
	}
	return retry.NewWithData[T](r.options(ctx)...).Do(func() (T, error) {
		return fn(ctx)
	})
}

// options 构建 retry-go 选项。
func (r *Retryer) options(ctx context.Context) []retry.Option {
	opts := make([]retry.Option, 0, 5)
	opts = append(opts, retry.Context(ctx), retry.LastErrorOnly(true))

	if n := r.retryPolicy.MaxAttempts(); n > 0 {
		opts = append(opts, retry.Attempts(uint(n)))
	} else {
		opts = append(opts, retry.UntilSucceeded())
	}

	backoff := r.backoffPolicy
	// retry-go v5 的 DelayType 中 n 从 1 开始，与 NextDelay 的 attempt 一致
	opts = append(opts, retry.DelayType(func(n uint, _ error, _ retry.DelayContext) time.Duration {
		return backoff.NextDelay(clampAttempt(n))
	}))

	if r.onRetry != nil {
		onRetry := r.onRetry
		// OnRetry 的 n 从 0 开始
		opts = append(opts, retry.OnRetry(func(n uint, err error) {
			onRetry(clampAttempt(n)+1, err)
		}))
	}
	return opts
}

func clampAttempt(n uint) int {
	if n > uint(math.MaxInt32) {
		return math.MaxInt32
	}
	return int(n)
}
