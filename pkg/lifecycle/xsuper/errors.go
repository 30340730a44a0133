package xsuper

import (
	"errors"
	"fmt"
)

var (
	// ErrNilFactory 表示任务工厂为 nil。
	ErrNilFactory = errors.New("xsuper: task factory cannot be nil")

	// ErrEmptyName 表示 Supervisor 名称为空。
	ErrEmptyName = errors.New("xsuper: name cannot be empty")

	// ErrNilTask 表示任务工厂返回了 nil 任务。
	ErrNilTask = errors.New("xsuper: factory returned nil task")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xsuper: nil context")
)

// PanicError 包装任务中 recover 到的 panic。
type PanicError struct {
	Value any
	Stack []byte
}

// Error 实现 error 接口。
func (e *PanicError) Error() string {
	return fmt.Sprintf("xsuper: task panic: %v", e.Value)
}

// Unwrap 在 panic 值本身是 error 时返回它。
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
