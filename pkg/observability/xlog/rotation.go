package xlog

import (
	"fmt"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 5
	defaultMaxAgeDays = 7
)

// RotationOption 配置日志文件轮转。
type RotationOption func(*lumberjack.Logger)

// WithMaxSize 设置单个文件大小上限（MB），默认 100。
func WithMaxSize(mb int) RotationOption {
	return func(l *lumberjack.Logger) {
		l.MaxSize = mb
	}
}

// WithMaxBackups 设置保留的备份文件数，默认 5，0 表示不限。
func WithMaxBackups(n int) RotationOption {
	return func(l *lumberjack.Logger) {
		l.MaxBackups = n
	}
}

// WithMaxAge 设置备份保留天数，默认 7，0 表示不按天数清理。
func WithMaxAge(days int) RotationOption {
	return func(l *lumberjack.Logger) {
		l.MaxAge = days
	}
}

// WithCompress 设置是否 gzip 压缩备份，默认不压缩。
func WithCompress(compress bool) RotationOption {
	return func(l *lumberjack.Logger) {
		l.Compress = compress
	}
}

// newRotator 创建按大小轮转的文件写入器。文件在首次写入时创建。
func newRotator(filename string, opts ...RotationOption) (*lumberjack.Logger, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: empty filename", ErrInvalidRotation)
	}
	l := &lumberjack.Logger{
		Filename:   filepath.Clean(filename),
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.MaxSize <= 0 || l.MaxBackups < 0 || l.MaxAge < 0 {
		return nil, fmt.Errorf("%w: size=%dMB backups=%d age=%dd",
			ErrInvalidRotation, l.MaxSize, l.MaxBackups, l.MaxAge)
	}
	return l, nil
}
