package xsuper

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xexpire/pkg/resilience/xretry"
)

// defaultHealthyAfter 一次运行持续多久后，连续故障计数归零。
const defaultHealthyAfter = time.Second

// Option 定义 Supervisor 可选配置函数类型。
type Option func(*options)

type options struct {
	logger        *slog.Logger
	backoff       xretry.BackoffPolicy
	healthyAfter  time.Duration
	onFault       func(attempt int, err error)
	meterProvider metric.MeterProvider
	clock         clockwork.Clock
}

func defaultOptions() options {
	return options{
		logger:       slog.Default(),
		backoff:      xretry.NewNoBackoff(),
		healthyAfter: defaultHealthyAfter,
		clock:        clockwork.NewRealClock(),
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

// WithBackoff 设置故障重启前的退避策略。
// 默认 xretry.NewNoBackoff()（立即重启），nil 忽略。
func WithBackoff(policy xretry.BackoffPolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.backoff = policy
		}
	}
}

// WithHealthyAfter 设置一次运行持续多久后视为健康，连续故障计数随之归零。
// 默认 1s，<= 0 忽略。
func WithHealthyAfter(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.healthyAfter = d
		}
	}
}

// WithOnFault 设置故障回调，在重启前同步调用。attempt 为连续故障次数（从 1 开始）。
// 回调运行在监督 goroutine 上，应保持轻量。
func WithOnFault(fn func(attempt int, err error)) Option {
	return func(o *options) {
		o.onFault = fn
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider，用于记录重启次数。
// 默认不记录指标。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithClock 设置退避等待和健康判定使用的时钟。默认系统时钟，nil 忽略。
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}
