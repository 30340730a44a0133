// Package xretry 提供退避策略与基于 retry-go 的重试执行器。
//
// # 退避策略
//
// [BackoffPolicy] 根据第几次失败（从 1 开始）给出下一次尝试前的等待时间：
//   - [NoBackoff]：不等待，立即重试
//   - [FixedBackoff]：固定间隔
//   - [ExponentialBackoff]：指数增长，带上限和抖动
//
// xsuper 用它计算故障重启前的等待时间；默认 NoBackoff，即故障后立即重启。
//
// # 重试执行器
//
// [Retryer] 组合 [RetryPolicy] 与 BackoffPolicy，底层使用 [avast/retry-go/v5]：
//
//	r := xretry.NewRetryer(
//	    xretry.WithRetryPolicy(xretry.NewFixedRetry(3)),
//	    xretry.WithBackoffPolicy(xretry.NewFixedBackoff(50*time.Millisecond)),
//	)
//	v, err := xretry.DoWithResult(ctx, r, func(ctx context.Context) (int, error) {
//	    return probe(ctx)
//	})
//
// 用 [Permanent] 包装的错误不会被重试。
//
// # 设计决策
//
// 抖动使用 math/rand/v2：退避抖动只需要分散重启时刻，不需要密码学随机性。
//
// [avast/retry-go/v5]: https://github.com/avast/retry-go
package xretry
