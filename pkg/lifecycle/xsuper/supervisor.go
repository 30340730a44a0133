package xsuper

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"runtime/pprof"
	"sync/atomic"

	"github.com/google/uuid"
)

// Task 是受监督的长期任务。ctx 在 Destroy 时取消，任务应据此退出。
type Task func(ctx context.Context) error

// TaskFactory 产生任务实例。启动时调用一次，每次故障重启再调用一次。
type TaskFactory func() Task

// State 表示 Supervisor 的运行状态。
type State int32

const (
	// StateRunning 任务正在运行。
	StateRunning State = iota
	// StateBackoff 故障后等待重启。
	StateBackoff
	// StateStopped 监督已结束（Destroy 或任务正常返回）。
	StateStopped
)

// String 返回状态名称。
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateBackoff:
		return "backoff"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Supervisor 独占一个后台 goroutine 运行一个任务，并在任务故障后重启它。
// 必须通过 [New] 创建。所有方法并发安全。
type Supervisor struct {
	name     string
	id       string
	factory  TaskFactory
	opts     options
	metrics  *metrics
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	restarts atomic.Uint64
	state    atomic.Int32
}

// New 创建 Supervisor 并立即在后台 goroutine 中启动任务。
//
// name 用于日志、指标和 pprof 标签，不能为空；factory 不能为 nil。
func New(name string, factory TaskFactory, opts ...Option) (*Supervisor, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if factory == nil {
		return nil, ErrNilFactory
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	m, err := newMetrics(o.meterProvider, name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Supervisor{
		name:    name,
		id:      uuid.NewString(),
		factory: factory,
		opts:    o,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.opts.logger = o.logger.With(
		slog.String("component", "xsuper"),
		slog.String("supervisor", name),
		slog.String("supervisor_id", s.id),
	)

	go s.loop()
	return s, nil
}

// Name 返回名称。
func (s *Supervisor) Name() string {
	return s.name
}

// Restarts 返回累计故障重启次数。
func (s *Supervisor) Restarts() uint64 {
	return s.restarts.Load()
}

// State 返回当前状态。
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// Done 返回监督 goroutine 退出时关闭的 channel。
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Destroy 停止监督：不再重启，并取消任务 ctx。
// 不等待任务退出；该方法是幂等的。
func (s *Supervisor) Destroy() {
	s.cancel()
}

// Shutdown 调用 Destroy 后等待监督 goroutine 退出。
// ctx 先结束时返回 ctx.Err()，goroutine 仍会在任务返回后退出，可通过 Done() 等待。
func (s *Supervisor) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	s.Destroy()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Supervisor) loop() {
	defer close(s.done)
	defer s.state.Store(int32(StateStopped))

	pprof.Do(s.ctx, pprof.Labels("xsuper", s.name), s.supervise)
}

// supervise 顺序运行任务实例，故障后按退避策略重启，直到 ctx 取消或任务正常返回。
func (s *Supervisor) supervise(ctx context.Context) {
	logger := s.opts.logger
	faults := 0

	for ctx.Err() == nil {
		s.state.Store(int32(StateRunning))
		started := s.opts.clock.Now()

		err := s.runOnce(ctx)
		switch {
		case ctx.Err() != nil:
			logger.Debug("task stopped")
			return
		case err == nil:
			logger.Debug("task finished, supervision ends")
			return
		case errors.Is(err, ErrNilTask):
			logger.Error("task factory returned nil, supervision ends")
			return
		}

		if s.opts.clock.Since(started) >= s.opts.healthyAfter {
			faults = 0
		}
		faults++
		total := s.restarts.Add(1)

		attrs := []any{
			slog.Int("attempt", faults),
			slog.Uint64("restarts", total),
			slog.Any("error", err),
		}
		var pe *PanicError
		if errors.As(err, &pe) {
			attrs = append(attrs, slog.String("stack", string(pe.Stack)))
		}
		logger.Error("task fault, restarting", attrs...)

		s.metrics.recordRestart(ctx)
		if s.opts.onFault != nil {
			s.opts.onFault(faults, err)
		}

		if !s.backoff(ctx, faults) {
			return
		}
	}
}

// backoff 按退避策略等待。返回 false 表示等待期间 ctx 被取消。
func (s *Supervisor) backoff(ctx context.Context, faults int) bool {
	delay := s.opts.backoff.NextDelay(faults)
	if delay <= 0 {
		return true
	}
	s.state.Store(int32(StateBackoff))
	t := s.opts.clock.NewTimer(delay)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.Chan():
		return true
	}
}

// runOnce 从工厂取得新任务并运行，panic 转换为 *PanicError。
func (s *Supervisor) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	task := s.factory()
	if task == nil {
		return ErrNilTask
	}
	return task(ctx)
}
