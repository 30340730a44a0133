package xexpire

import "errors"

var (
	// ErrIndexOutOfRange 表示下标越界。返回时会附带下标和长度信息。
	ErrIndexOutOfRange = errors.New("xexpire: index out of range")

	// ErrClosed 表示列表已关闭。
	ErrClosed = errors.New("xexpire: list closed")

	// ErrOnExpiredType 表示 WithOnExpired 回调的参数类型与列表元素类型不一致。
	ErrOnExpiredType = errors.New("xexpire: on-expired callback type does not match element type")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xexpire: nil context")
)
