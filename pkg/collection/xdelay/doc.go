// Package xdelay 提供按剩余延迟排序的阻塞优先队列。
//
// # 核心概念
//
//   - [Delayed]：能报告自身剩余延迟的元素。Delay() <= 0 表示"已到期，可被取出"
//   - [Item]：开箱即用的 Delayed 实现，携带一个值和基于时钟计算的截止时间
//   - [Queue]：并发安全的延迟队列，按 Delay() 升序排列，支持阻塞取出到期元素、
//     任意插入以及按句柄（[Entry]）删除
//
// # 基本用法
//
//	q := xdelay.NewQueue[*xdelay.Item[string]]()
//	defer q.Close()
//
//	q.Push(xdelay.NewItem("session-1", 5*time.Second))
//
//	e, err := q.Take(ctx) // 阻塞直到队首元素到期
//	if err == nil {
//	    fmt.Println(e.Value().Value())
//	}
//
// # Take 的返回
//
//   - 队首元素到期：移除并返回该元素的 Entry
//   - 队列为空：一直等待直到有元素插入（或 ctx 结束）
//   - [Queue.Interrupt] 被调用：返回 [ErrInterrupted]，队列内容不变；
//     调用时没有阻塞中的 Take 则由下一次 Take 返回
//   - [Queue.Close] 被调用：返回 [ErrClosed]
//   - ctx 结束：返回 ctx.Err()
//
// 只有成功取出才会移除元素，等待被打断时不会丢失任何元素。
//
// # 设计决策
//
// 1. 句柄删除：Push 返回 *Entry，Remove 按句柄指针删除，而不是按值相等查找。
// 两个值相等但来源不同的元素永远不会被混淆，上层容器（xexpire）依赖这一点保证
// "按下标删除"删的就是那个下标上的元素。
//
// 2. 比较是实时的：堆比较时才调用 Delay()，与倒计时语义一致。对基于截止时间的元素，
// 所有元素以相同速率倒计时，堆序保持稳定；同延迟时按插入顺序排列。
//
// 3. 唤醒采用"关闭并替换 channel"的广播方式：新元素成为队首、队首被删除、
// Drain 时唤醒所有等待者重新计算等待时间，避免 sync.Cond 无法配合 ctx 的问题。
//
// 4. 时钟可注入：等待使用 clockwork.Clock 的定时器，测试中可使用 FakeClock
// 精确推进时间。
//
// # 已知限制
//
//   - 到期后的取出时机取决于调度，不保证实时精度
//   - Delay() 由调用方实现，必须并发安全且不应阻塞（在队列锁内调用）
package xdelay
