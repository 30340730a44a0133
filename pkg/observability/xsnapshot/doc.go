// Package xsnapshot 提供按固定间隔或 cron 计划采样外部状态的后台采样器。
//
// [Sampler] 在一个 xsuper.Supervisor goroutine 上循环：等待下一个采样时间，
// 调用 [SampleFunc]，把结果追加到采样日志。采样函数 panic 或返回错误时，
// Supervisor 重启采样任务；采样日志由 Sampler 持有，重启后继续追加。
//
// # 基本用法
//
//	s, err := xsnapshot.New("queue-depth", func(ctx context.Context) (int, error) {
//	    return queue.Len(), nil
//	}, time.Second, xsnapshot.WithCapacity(3600))
//	if err != nil {
//	    return err
//	}
//	defer s.Destroy()
//
//	for _, snap := range s.Snapshots() {
//	    fmt.Println(snap.Seq, snap.At, snap.Value)
//	}
//
// # 计划
//
// 默认每隔 interval 采样一次（上一次采样结束后开始计时）。[WithSchedule] 使用
// cron 表达式代替固定间隔，支持可选的秒字段和 @every/@hourly 等描述符：
//
//	xsnapshot.WithSchedule("*/5 * * * * *") // 每 5 秒
//	xsnapshot.WithSchedule("@every 2s")
//
// @every 的最小精度为 1 秒；亚秒级采样使用固定间隔。
//
// # 失败处理
//
//   - [WithRetry]：单次采样失败时先按 xretry 重试，仍失败才视为故障
//   - 故障（错误或 panic）由 Supervisor 记录并重启，默认立即重启
//   - 失败的采样不写入日志，Seq 只为成功的采样分配
//
// # 容量
//
// 默认日志无上限，随运行时间增长。[WithCapacity] 把日志限制为环形缓冲，
// 超出时丢弃最旧的采样。
package xsnapshot
