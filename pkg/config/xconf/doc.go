// Package xconf 在 koanf 之上加载 YAML/JSON 配置，并支持文件监视和热重载。
//
// # 设计决策
//
// xconf 只负责加载、反序列化和重载，不做默认值注入和字段校验，
// 这些由使用方在 Unmarshal 之后完成（参见 cmd/xexpirectl 的 DemoConfig）。
//
// Reload 解析成功后用 atomic.Pointer 整体替换 koanf 实例，失败时保留旧配置。
// Client() 返回的指针是快照：Reload 后仍然可用，但内容是旧的，
// 需要最新值时每次重新调用 Client()。
//
// Unmarshal 默认允许弱类型转换，并识别 "250ms" 这类 time.Duration 字符串
// 以及 encoding.TextUnmarshaler 字段。WithStrict 开启后，配置中出现
// 目标结构体没有的键会返回 ErrUnmarshalFailed。
//
// # 监视
//
// Watcher.Run 是阻塞调用，签名与 xrun.Service 一致，可直接交给 xrun.Group。
// 防抖在 Run 自己的 goroutine 中完成，重载和回调都在同一个 goroutine 中执行，
// 因此 Run 返回之后不会再有回调。
package xconf
