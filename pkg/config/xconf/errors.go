package xconf

import "errors"

var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 表示无法识别的配置格式或扩展名。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 表示读取配置文件失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 表示配置内容无法解析。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 表示配置无法反序列化到目标结构体。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrNotReloadable 表示 Config 由字节数据创建，不能 Reload 或 Watch。
	ErrNotReloadable = errors.New("xconf: config created from bytes is not reloadable")

	// ErrWatcherClosed 表示 Watcher 已运行过或已关闭。
	ErrWatcherClosed = errors.New("xconf: watcher closed")
)
