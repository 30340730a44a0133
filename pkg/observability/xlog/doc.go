// Package xlog 构建基于 log/slog 的日志记录器。
//
// 库代码只依赖 *slog.Logger（通过各包的 WithLogger 注入）；xlog 只负责在进程入口
// 按配置组装它：级别、格式、固定属性、文件轮转。
//
// # 基本用法
//
//	logger, level, cleanup, err := xlog.New().
//	    SetLevelString(cfg.Log.Level).
//	    SetFormat(cfg.Log.Format).
//	    SetAttrs(slog.String("service", "xexpirectl")).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
//
//	level.Set(slog.LevelDebug) // 运行时调整级别，例如配置热更新时
//
// # 文件轮转
//
// SetRotation 通过 lumberjack 按文件大小轮转：
//
//	xlog.New().SetRotation("/var/log/app.log", xlog.WithMaxSize(50), xlog.WithCompress(true))
//
// cleanup 关闭当前文件。lumberjack 的后台清理 goroutine 在首次轮转后启动，
// 进程内不会退出。
//
// # 级别
//
// [Level] 实现 encoding.TextUnmarshaler，配置结构体中可直接声明 xlog.Level 字段，
// 由 xconf（koanf）从 "debug"/"info"/"warn"/"error" 解码。
package xlog
