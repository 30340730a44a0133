package xretry

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffPolicy 计算下一次尝试前的等待时间。
type BackoffPolicy interface {
	// NextDelay 返回第 attempt 次失败后的等待时间，attempt 从 1 开始。
	NextDelay(attempt int) time.Duration
}

// NoBackoff 不等待。
type NoBackoff struct{}

// NewNoBackoff 创建不等待的退避策略。
func NewNoBackoff() NoBackoff {
	return NoBackoff{}
}

// NextDelay 实现 BackoffPolicy，总是返回 0。
func (NoBackoff) NextDelay(int) time.Duration {
	return 0
}

// FixedBackoff 固定间隔退避。
type FixedBackoff struct {
	delay time.Duration
}

// NewFixedBackoff 创建固定间隔退避策略，负数按 0 处理。
func NewFixedBackoff(delay time.Duration) FixedBackoff {
	return FixedBackoff{delay: max(delay, 0)}
}

// NextDelay 实现 BackoffPolicy。
func (b FixedBackoff) NextDelay(int) time.Duration {
	return b.delay
}

// ExponentialBackoff 指数退避：
// delay = min(initial * multiplier^(attempt-1) * (1 ± jitter), max)
type ExponentialBackoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
}

// ExponentialOption 配置 ExponentialBackoff。
type ExponentialOption func(*ExponentialBackoff)

// WithInitialDelay 设置首次等待时间，<= 0 时忽略。
func WithInitialDelay(d time.Duration) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if d > 0 {
			b.initial = d
		}
	}
}

// WithMaxDelay 设置等待上限，<= 0 时忽略。
func WithMaxDelay(d time.Duration) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if d > 0 {
			b.max = d
		}
	}
}

// WithMultiplier 设置增长倍数，< 1 时忽略。
func WithMultiplier(m float64) ExponentialOption {
	return func(b *ExponentialBackoff) {
		if m >= 1 {
			b.multiplier = m
		}
	}
}

// WithJitter 设置抖动比例，截断到 [0, 1]。
func WithJitter(j float64) ExponentialOption {
	return func(b *ExponentialBackoff) {
		b.jitter = min(max(j, 0), 1)
	}
}

// NewExponentialBackoff 创建指数退避策略。
// 默认值：initial 100ms，max 30s，multiplier 2，jitter 0.1。
func NewExponentialBackoff(opts ...ExponentialOption) *ExponentialBackoff {
	b := &ExponentialBackoff{
		initial:    100 * time.Millisecond,
		max:        30 * time.Second,
		multiplier: 2,
		jitter:     0.1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.max < b.initial {
		b.max = b.initial
	}
	return b
}

// NextDelay 实现 BackoffPolicy。
func (b *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	attempt = max(attempt, 1)

	delay := float64(b.initial) * math.Pow(b.multiplier, float64(attempt-1))
	if b.jitter > 0 {
		delay *= 1 + (rand.Float64()*2-1)*b.jitter
	}
	// attempt 很大时 Pow 溢出为 +Inf，NaN 与负数同样按上限处理
	if math.IsNaN(delay) || delay < 0 || delay >= float64(b.max) {
		return b.max
	}
	return time.Duration(delay)
}

var (
	_ BackoffPolicy = NoBackoff{}
	_ BackoffPolicy = FixedBackoff{}
	_ BackoffPolicy = (*ExponentialBackoff)(nil)
)
