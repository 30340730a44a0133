package xrun

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Service 是在 Group 中运行的长期任务，应在 ctx 取消后尽快返回。
type Service func(ctx context.Context) error

// Group 在 errgroup 之上协调一组服务：任一服务出错、返回 ErrStop
// 或调用 Cancel 时，其余服务的 ctx 被取消。
//
// Go、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     options
}

// NewGroup 创建 Group，返回的 ctx 在 Group 取消时结束。nil ctx 视为 Background。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		opts:     o,
	}, egCtx
}

// Go 以 name 启动服务。服务的开始、结束和错误会记录日志。
func (g *Group) Go(name string, svc Service) {
	logger := g.opts.logger.With(
		slog.String("group", g.opts.name),
		slog.String("service", name),
	)
	g.eg.Go(func() error {
		if svc == nil {
			return ErrNilFunc
		}
		logger.Debug("service starting")
		err := svc(g.ctx)
		switch {
		case errors.Is(err, ErrStop):
			logger.Debug("service requested stop")
			g.cancel(ErrStop)
			return nil
		case err != nil && !errors.Is(err, context.Canceled):
			logger.Warn("service exited with error", slog.Any("error", err))
		default:
			logger.Debug("service stopped")
		}
		return err
	})
}

// Wait 等待所有服务结束。
//
// 返回第一个服务错误；Group 被取消时返回取消原因（例如 *SignalError），
// 原因为 nil、context.Canceled 或 ErrStop 时返回 nil。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	g.opts.logger.Debug("all services stopped", slog.String("group", g.opts.name))

	if g.causeCtx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
		cause := context.Cause(g.causeCtx)
		if cause == nil || errors.Is(cause, context.Canceled) || errors.Is(cause, ErrStop) {
			return nil
		}
		return cause
	}
	return err
}

// Cancel 取消所有服务，cause 作为 Wait 的返回值（nil 表示正常结束）。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 ctx。
func (g *Group) Context() context.Context {
	return g.ctx
}
