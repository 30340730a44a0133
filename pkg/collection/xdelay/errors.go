package xdelay

import "errors"

var (
	// ErrClosed 表示队列已关闭。
	ErrClosed = errors.New("xdelay: queue is closed")

	// ErrInterrupted 表示阻塞等待被 Interrupt 打断，队列内容未改变。
	ErrInterrupted = errors.New("xdelay: wait interrupted")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xdelay: nil context")
)
