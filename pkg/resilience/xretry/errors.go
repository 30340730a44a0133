package xretry

import (
	"errors"

	retry "github.com/avast/retry-go/v5"
)

var (
	// ErrNilFunc 表示待执行函数为 nil。
	ErrNilFunc = errors.New("xretry: nil func")

	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xretry: nil context")

	// ErrNilRetryer 表示 Retryer 为 nil。
	ErrNilRetryer = errors.New("xretry: nil retryer")
)

// Permanent 将 err 标记为不可重试。Retryer 遇到该错误会立即返回。
// err 为 nil 时返回 nil。
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return retry.Unrecoverable(err)
}

// IsPermanent 判断 err 是否被 [Permanent] 标记。
func IsPermanent(err error) bool {
	return err != nil && !retry.IsRecoverable(err)
}
