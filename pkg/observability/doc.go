// Package observability 提供日志与采样相关的子包。
//
// 子包列表：
//   - xlog: 基于 log/slog 的 Logger 构建器，支持运行时调整级别和文件轮转
//   - xsnapshot: 在受监督的 goroutine 上按固定间隔或 cron 计划采样外部状态
//
// 指标直接使用 OpenTelemetry metric API，由各组件的 WithMeterProvider 注入。
package observability
