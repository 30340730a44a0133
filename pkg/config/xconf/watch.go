package xconf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc 在每次重载尝试后调用。err 非 nil 时 cfg 仍保持上一次成功加载的内容。
type ChangeFunc func(cfg *Config, err error)

// Watcher 监视配置文件，变更时自动 Reload 并通知 ChangeFunc。
//
// Watcher 监视文件所在目录而非文件本身，编辑器先删除再创建或
// 写临时文件再 rename 的保存方式都能被捕获。
type Watcher struct {
	cfg      *Config
	fs       *fsnotify.Watcher
	onChange ChangeFunc
	opts     watchOptions

	mu     sync.Mutex
	closed bool
}

// NewWatcher 创建 Watcher，需调用 Run 开始监视。
//
//	w, err := xconf.NewWatcher(cfg, func(c *xconf.Config, err error) { ... })
//	g.Go("config-watch", w.Run)
func NewWatcher(cfg *Config, onChange ChangeFunc, opts ...WatchOption) (*Watcher, error) {
	if cfg == nil || cfg.path == "" {
		return nil, ErrNotReloadable
	}
	o := defaultWatchOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(cfg.path)
	if err := fs.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch directory %s: %w", dir, err), fs.Close())
	}

	return &Watcher{
		cfg:      cfg,
		fs:       fs,
		onChange: onChange,
		opts:     o,
	}, nil
}

// Run 阻塞监视直到 ctx 取消，返回时释放底层 watcher。
// 回调只在 Run 的 goroutine 中执行，Run 返回后不会再有回调。
// 每个 Watcher 只能 Run 一次。
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	w.mu.Unlock()
	defer func() { _ = w.fs.Close() }()

	name := filepath.Base(w.cfg.path)
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.opts.debounce)
			} else {
				timer.Reset(w.opts.debounce)
			}
			pending = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.notify(fmt.Errorf("xconf: watch error: %w", err))

		case <-pending:
			pending = nil
			w.notify(w.cfg.Reload())
		}
	}
}

// Close 释放未运行的 Watcher。Run 已开始时无需调用。
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}

func (w *Watcher) notify(err error) {
	if err != nil {
		w.opts.logger.Warn("config reload failed",
			slog.String("path", w.cfg.path),
			slog.Any("error", err),
		)
	} else {
		w.opts.logger.Info("config reloaded", slog.String("path", w.cfg.path))
	}
	if w.onChange != nil {
		w.onChange(w.cfg, err)
	}
}

// relevant 只关心目标文件的写入、创建和 rename（原子写入）。
func relevant(ev fsnotify.Event, name string) bool {
	if filepath.Base(ev.Name) != name {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
