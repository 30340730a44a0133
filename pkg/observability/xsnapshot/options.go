package xsnapshot

import (
	"log/slog"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xexpire/pkg/resilience/xretry"
)

// Option 定义 Sampler 可选配置函数类型。
type Option func(*options)

type options struct {
	logger        *slog.Logger
	clock         clockwork.Clock
	schedule      string
	retryAttempts int
	retryBackoff  xretry.BackoffPolicy
	restart       xretry.BackoffPolicy
	immediate     bool
	capacity      int
	meterProvider metric.MeterProvider
}

func defaultOptions() options {
	return options{
		logger:       slog.Default(),
		clock:        clockwork.NewRealClock(),
		retryBackoff: xretry.NewNoBackoff(),
	}
}

// WithLogger 设置日志记录器。默认 slog.Default()，nil 忽略。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock 设置计时和 Snapshot.At 使用的时钟。默认系统时钟，nil 忽略。
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithSchedule 使用 cron 表达式代替固定间隔。
// 支持 5 段或 6 段（首段为秒）表达式以及 @every、@hourly 等描述符。
// 解析失败时 New 返回 ErrInvalidSchedule。
func WithSchedule(spec string) Option {
	return func(o *options) {
		o.schedule = spec
	}
}

// WithRetry 设置单次采样的最大尝试次数（含首次）。<= 1 表示不重试。
func WithRetry(attempts int) Option {
	return func(o *options) {
		o.retryAttempts = attempts
	}
}

// WithRetryBackoff 设置采样重试之间的退避策略。默认不等待，nil 忽略。
func WithRetryBackoff(policy xretry.BackoffPolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.retryBackoff = policy
		}
	}
}

// WithRestartBackoff 设置采样任务故障后重启前的退避策略。默认立即重启，nil 忽略。
func WithRestartBackoff(policy xretry.BackoffPolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.restart = policy
		}
	}
}

// WithImmediate 在首次启动时立即采样一次，而不是先等待一个间隔。
func WithImmediate() Option {
	return func(o *options) {
		o.immediate = true
	}
}

// WithCapacity 把采样日志限制为最近 n 条。<= 0 表示不限制（默认）。
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider。默认不记录指标。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}
