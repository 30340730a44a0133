// Package xexpire 提供元素按各自延迟自动过期的并发安全列表。
//
// # 核心概念
//
// [List] 同时持有两个视图：
//   - 有序序列：按插入顺序排列，支持下标访问和快照迭代
//   - 延迟队列（xdelay.Queue）：按剩余延迟排序，驱动过期
//
// 两个视图持有同一组 *xdelay.Entry 句柄。一个后台 reaper 任务在 xsuper.Supervisor
// 的 goroutine 上运行，阻塞等待最早到期的元素，然后把它从序列中移除。
//
// # 基本用法
//
//	l, err := xexpire.New[*xdelay.Item[string]](
//	    xexpire.WithName("sessions"),
//	    xexpire.WithOnExpired(func(it *xdelay.Item[string]) {
//	        log.Println("expired:", it.Value())
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//	defer l.Close()
//
//	_ = l.Add(xdelay.NewItem("session-1", 30*time.Second))
//	fmt.Println(l.Len()) // 1
//
// # 元素生命周期
//
//	absent → present → removed
//
// 元素被调用方的 Remove* 删除或被 reaper 过期删除，以先发生者为准；
// 同一元素不会被删除两次（OnExpired 只对真正由 reaper 删除的元素触发）。
//
// # 可见性
//
// 元素到期后并不会立即从 Len/Get/Snapshot 中消失，而是在 reaper 取出并删除后消失。
// 过期精度取决于调度，只保证"到期后尽快"。
//
// # 设计决策
//
// 1. 句柄删除：RemoveAt(i) 删除的是下标 i 上的那个句柄，而不是队列中第一个值相等的元素。
// 两个值相等的元素（例如同一个指针被添加两次）互不影响。
//
// 2. 写时复制：每次修改替换序列切片，读操作和 All() 迭代基于不可变快照，
// 迭代过程中的并发修改不会影响本次迭代。
//
// 3. 调用方从不等待 reaper：所有修改只持有列表锁和队列锁的短临界区；
// 只有 reaper 会在 Take 中挂起。
//
// 4. reaper 每轮等待有上限（WithPollInterval），每轮开始检查 ctx，
// Close 后能及时退出。reaper 故障（panic）由 Supervisor 重启，列表数据不受影响。
//
// 5. 列表关闭后 Add/AddAll/Insert 返回 [ErrClosed]；删除和读取仍然可用，
// 剩余元素不再过期。
package xexpire
