package xsnapshot

import "errors"

var (
	// ErrInvalidInterval 表示采样间隔不大于 0。
	ErrInvalidInterval = errors.New("xsnapshot: interval must be positive")

	// ErrInvalidSchedule 表示 cron 表达式无法解析。
	ErrInvalidSchedule = errors.New("xsnapshot: invalid schedule")

	// ErrNilSampleFunc 表示采样函数为 nil。
	ErrNilSampleFunc = errors.New("xsnapshot: sample func cannot be nil")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xsnapshot: nil context")
)
