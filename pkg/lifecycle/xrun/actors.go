package xrun

import (
	"context"
	"time"
)

// Shutdowner 是可优雅关闭的组件，例如 xexpire.List、xsnapshot.Sampler、xsuper.Supervisor。
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Component 返回托管组件生命周期的服务：阻塞直到 Group 取消，
// 然后在 timeout 内调用 c.Shutdown。timeout <= 0 表示不限时。
//
//	g.Go("list", xrun.Component(list, 5*time.Second))
func Component(c Shutdowner, timeout time.Duration) Service {
	return func(ctx context.Context) error {
		if c == nil {
			return ErrNilComponent
		}
		<-ctx.Done()

		shutdownCtx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, timeout)
			defer cancel()
		}
		return c.Shutdown(shutdownCtx)
	}
}

// Ticker 返回周期执行 fn 的服务。immediate 为 true 时启动后先执行一次。
// fn 返回 ErrStop 可正常结束整个 Group，返回其他错误则以该错误结束。
func Ticker(interval time.Duration, immediate bool, fn Service) Service {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				if err := fn(ctx); err != nil {
					return err
				}
			}
		}
	}
}

// WaitForDone 返回只等待 Group 取消的服务。
func WaitForDone() Service {
	return func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
}
