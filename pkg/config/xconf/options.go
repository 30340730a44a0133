package xconf

import (
	"log/slog"
	"time"
)

type options struct {
	delim  string
	tag    string
	strict bool
}

// Option 配置 Config。
type Option func(*options)

func defaultOptions() options {
	return options{
		delim: ".",
		tag:   "koanf",
	}
}

// WithDelim 设置配置键分隔符，默认 "."，例如 "list.poll_interval"。
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithTag 设置 Unmarshal 使用的结构体标签，默认 "koanf"。
func WithTag(tag string) Option {
	return func(o *options) {
		if tag != "" {
			o.tag = tag
		}
	}
}

// WithStrict 让 Unmarshal 拒绝目标结构体中不存在的键，用于发现拼写错误。
func WithStrict() Option {
	return func(o *options) {
		o.strict = true
	}
}

const defaultDebounce = 100 * time.Millisecond

type watchOptions struct {
	debounce time.Duration
	logger   *slog.Logger
}

// WatchOption 配置 Watcher。
type WatchOption func(*watchOptions)

func defaultWatchOptions() watchOptions {
	return watchOptions{
		debounce: defaultDebounce,
		logger:   slog.Default(),
	}
}

// WithDebounce 设置防抖时间：该时间内的多次变更只触发一次重载。默认 100ms。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithWatchLogger 设置 Watcher 的日志记录器。
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(o *watchOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
