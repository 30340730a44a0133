package xexpire

import (
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xexpire/pkg/resilience/xretry"
)

const (
	defaultName         = "xexpire"
	defaultPollInterval = time.Second
)

// Option 定义 List 可选配置函数类型。
type Option func(*options)

type options struct {
	name          string
	logger        *slog.Logger
	clock         clockwork.Clock
	backoff       xretry.BackoffPolicy
	pollInterval  time.Duration
	onExpired     any // func(T)，在 New 中校验类型
	meterProvider metric.MeterProvider
}

func defaultOptions() options {
	return options{
		name:         defaultName,
		logger:       slog.Default(),
		clock:        clockwork.NewRealClock(),
		pollInterval: defaultPollInterval,
	}
}

// WithName 设置列表名称，用于日志、指标属性和 reaper goroutine 的 pprof 标签。
// 默认 "xexpire"，空字符串忽略。
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
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

// WithClock 设置 reaper 等待使用的时钟。默认系统时钟，nil 忽略。
//
// 元素的 Delay() 由元素自身计算；使用 FakeClock 时，元素也应基于同一时钟
// （例如 xdelay.NewItemWithClock）。
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithBackoff 设置 reaper 故障后重启前的退避策略。默认立即重启，nil 忽略。
func WithBackoff(policy xretry.BackoffPolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.backoff = policy
		}
	}
}

// WithPollInterval 设置 reaper 单轮等待的上限。默认 1s，<= 0 忽略。
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithOnExpired 设置过期回调。回调在 reaper goroutine 上、元素从列表删除之后调用，
// 应保持轻量；回调 panic 会导致 reaper 重启。
//
// fn 的参数类型必须与列表元素类型一致，否则 New 返回 [ErrOnExpiredType]。nil 忽略。
func WithOnExpired[T any](fn func(T)) Option {
	return func(o *options) {
		if fn != nil {
			o.onExpired = fn
		}
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider。默认不记录指标。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}
