// Package xsuper 提供单 goroutine 任务监督器：一个 Supervisor 独占一个后台 goroutine，
// 运行一个长期任务，任务故障后自动重启。
//
// # 基本用法
//
//	sup, err := xsuper.New("reaper", func() xsuper.Task {
//	    return func(ctx context.Context) error {
//	        for {
//	            select {
//	            case <-ctx.Done():
//	                return ctx.Err()
//	            case <-time.After(time.Second):
//	                work()
//	            }
//	        }
//	    }
//	}, xsuper.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer sup.Destroy()
//
// # 生命周期
//
//   - New 校验参数后立即启动后台 goroutine，没有单独的 Start
//   - TaskFactory 在启动时调用一次，每次故障重启时再调用一次，得到全新的 Task
//   - Destroy 不阻塞：停止后续重启并取消任务 ctx
//   - Shutdown(ctx) 在 Destroy 之后等待 goroutine 退出或 ctx 结束
//
// # 故障语义
//
//   - 任务 panic：recover 后记录堆栈，视为故障
//   - 任务返回非 nil 错误（且不是 Destroy 造成的 ctx 取消）：视为故障
//   - 任务返回 nil：监督结束，不再重启，状态变为 StateStopped
//
// 故障时记录 Error 日志、累加重启计数和 xsuper.restart.total 指标、调用 WithOnFault 回调，
// 然后按 BackoffPolicy 等待后重启。
//
// # 设计决策
//
// 1. 默认无退避、无上限：故障后立即重启，与既有契约一致。持续故障会形成无节制的重启循环，
// 生产环境建议通过 WithBackoff 配置有界退避（如 xretry.NewExponentialBackoff()）。
// 退避计数在一次运行持续超过 WithHealthyAfter（默认 1s）后归零。
//
// 2. 协作式取消：Destroy 通过 ctx 取消通知任务，任务应在每轮循环检查 ctx.Done()。
// Go 无法强制终止 goroutine，不检查 ctx 的任务只能等它自行返回。
//
// 3. 单 goroutine 顺序重启：重启在同一个监督 goroutine 中进行，任何时刻最多只有一个
// 任务实例在运行，不会出现新旧实例并存。
//
// 4. goroutine 命名：监督 goroutine 通过 pprof.Do 打上 xsuper=<name> 标签，
// 在 goroutine profile 中可按名称定位。Go 的 goroutine 不会阻塞进程退出。
package xsuper
