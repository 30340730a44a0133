package xexpire

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/omeyang/xexpire/pkg/collection/xdelay"
)

// reap 是运行在 Supervisor goroutine 上的过期任务。
//
// 每轮先检查 ctx，再在 pollInterval 上限内等待最早到期的元素。
// 返回 nil 表示队列已关闭，监督随之结束；ctx 取消时返回 ctx 错误。
func (l *List[T]) reap(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		e, err := l.take(ctx)
		switch {
		case err == nil:
			l.expire(ctx, e)
		case errors.Is(err, xdelay.ErrInterrupted):
			l.logger.Warn("reaper wait interrupted, continuing")
		case errors.Is(err, xdelay.ErrClosed):
			return nil
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			// 单轮等待到达上限
		default:
			return err
		}
	}
}

func (l *List[T]) take(ctx context.Context) (*xdelay.Entry[T], error) {
	ctx, cancel := context.WithTimeout(ctx, l.opts.pollInterval)
	defer cancel()
	return l.queue.Take(ctx)
}

// expire 把 reaper 取出的句柄从序列中删除。
// 句柄已被调用方删除时不做任何事，OnExpired 不会触发。
func (l *List[T]) expire(ctx context.Context, e *xdelay.Entry[T]) {
	l.mu.Lock()
	i := slices.Index(l.entries, e)
	if i >= 0 {
		l.entries = without(l.entries, i)
	}
	l.mu.Unlock()

	if i < 0 {
		return
	}
	l.metrics.recordExpired(ctx)
	l.logger.Debug("element expired", slog.Int("index", i))
	if l.onExpired != nil {
		l.onExpired(e.Value())
	}
}
