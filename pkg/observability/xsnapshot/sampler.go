package xsnapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/omeyang/xexpire/pkg/lifecycle/xsuper"
	"github.com/omeyang/xexpire/pkg/resilience/xretry"
)

// SampleFunc 采集一次外部状态。
type SampleFunc[V any] func(ctx context.Context) (V, error)

// Snapshot 是一条采样记录。Seq 从 1 开始，只分配给成功的采样。
type Snapshot[V any] struct {
	Seq   uint64
	At    time.Time
	Value V
}

// Sampler 周期性采样并保存采样日志。
// 必须通过 [New] 创建，使用完毕后调用 [Sampler.Destroy] 或 [Sampler.Shutdown]。
type Sampler[V any] struct {
	name     string
	sample   SampleFunc[V]
	schedule cron.Schedule
	opts     options
	retryer  *xretry.Retryer // nil 表示不重试
	logger   *slog.Logger
	metrics  *metrics
	sup      *xsuper.Supervisor
	started  atomic.Bool

	mu   sync.RWMutex
	buf  []Snapshot[V]
	head int // 环形缓冲已满时最旧记录的位置
	seq  uint64
}

// New 创建采样器并立即启动后台采样。
//
// name 不能为空，sample 不能为 nil，interval 必须大于 0。
// 设置 [WithSchedule] 时 interval 仍需合法，但计划以 cron 表达式为准。
func New[V any](name string, sample SampleFunc[V], interval time.Duration, opts ...Option) (*Sampler[V], error) {
	if sample == nil {
		return nil, ErrNilSampleFunc
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	schedule, err := parseSchedule(o.schedule, interval)
	if err != nil {
		return nil, err
	}
	m, err := newMetrics(o.meterProvider, name)
	if err != nil {
		return nil, err
	}

	s := &Sampler[V]{
		name:     name,
		sample:   sample,
		schedule: schedule,
		opts:     o,
		metrics:  m,
		logger: o.logger.With(
			slog.String("component", "xsnapshot"),
			slog.String("sampler", name),
		),
	}
	if o.capacity > 0 {
		s.buf = make([]Snapshot[V], 0, o.capacity)
	}
	if o.retryAttempts > 1 {
		s.retryer = xretry.NewRetryer(
			xretry.WithRetryPolicy(xretry.NewFixedRetry(o.retryAttempts)),
			xretry.WithBackoffPolicy(o.retryBackoff),
			xretry.WithOnRetry(func(attempt int, err error) {
				s.logger.Warn("sample attempt failed",
					slog.Int("attempt", attempt),
					slog.Any("error", err),
				)
			}),
		)
	}

	sup, err := xsuper.New(name, func() xsuper.Task { return s.run },
		xsuper.WithLogger(o.logger),
		xsuper.WithClock(o.clock),
		xsuper.WithBackoff(o.restart),
		xsuper.WithMeterProvider(o.meterProvider),
	)
	if err != nil {
		return nil, fmt.Errorf("xsnapshot: start sampler: %w", err)
	}
	s.sup = sup
	return s, nil
}

// run 是采样任务：等待下一个计划时间，采样，重复。
// 采样失败返回错误，由 Supervisor 重启。
func (s *Sampler[V]) run(ctx context.Context) error {
	if s.started.CompareAndSwap(false, true) && s.opts.immediate {
		if err := s.sampleOnce(ctx); err != nil {
			return err
		}
	}
	for {
		now := s.opts.clock.Now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			// 计划不再触发，只等待停止。
			<-ctx.Done()
			return ctx.Err()
		}
		if err := s.sleep(ctx, next.Sub(now)); err != nil {
			return err
		}
		if err := s.sampleOnce(ctx); err != nil {
			return err
		}
	}
}

func (s *Sampler[V]) sleep(ctx context.Context, d time.Duration) error {
	t := s.opts.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}

func (s *Sampler[V]) sampleOnce(ctx context.Context) error {
	start := s.opts.clock.Now()

	var (
		v   V
		err error
	)
	if s.retryer != nil {
		v, err = xretry.DoWithResult[V](ctx, s.retryer, s.sample)
	} else {
		v, err = s.sample(ctx)
	}
	s.metrics.recordSample(ctx, s.opts.clock.Since(start), err)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("xsnapshot: sample: %w", err)
	}

	snap := s.record(v)
	s.logger.Debug("sampled", slog.Uint64("seq", snap.Seq))
	return nil
}

// record 追加一条采样，环形缓冲已满时覆盖最旧的记录。
func (s *Sampler[V]) record(v V) Snapshot[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	snap := Snapshot[V]{Seq: s.seq, At: s.opts.clock.Now(), Value: v}
	if c := s.opts.capacity; c > 0 && len(s.buf) == c {
		s.buf[s.head] = snap
		s.head = (s.head + 1) % c
		return snap
	}
	s.buf = append(s.buf, snap)
	return snap
}

// Name 返回名称。
func (s *Sampler[V]) Name() string {
	return s.name
}

// Snapshots 返回采样日志副本，按 Seq 升序。
func (s *Sampler[V]) Snapshots() []Snapshot[V] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot[V], 0, len(s.buf))
	out = append(out, s.buf[s.head:]...)
	return append(out, s.buf[:s.head]...)
}

// Len 返回日志中的记录数。
func (s *Sampler[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buf)
}

// Last 返回最近一次采样。尚无采样时返回 false。
func (s *Sampler[V]) Last() (Snapshot[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.buf)
	if n == 0 {
		return Snapshot[V]{}, false
	}
	return s.buf[(s.head+n-1)%n], true
}

// Restarts 返回采样任务的故障重启次数。
func (s *Sampler[V]) Restarts() uint64 {
	return s.sup.Restarts()
}

// Done 返回采样 goroutine 退出时关闭的 channel。
func (s *Sampler[V]) Done() <-chan struct{} {
	return s.sup.Done()
}

// Destroy 停止采样，不等待 goroutine 退出。该方法是幂等的。
// 采样日志保留，仍可读取。
func (s *Sampler[V]) Destroy() {
	s.sup.Destroy()
}

// Shutdown 停止采样并等待 goroutine 退出，ctx 先结束时返回 ctx.Err()。
func (s *Sampler[V]) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return s.sup.Shutdown(ctx)
}
