// Package xrun 基于 errgroup 管理进程内一组服务的运行与协调关闭。
//
// # 核心概念
//
//   - [Group]：errgroup + 可携带原因的取消。任一服务出错或返回 [ErrStop] 时，
//     其余服务的 ctx 被取消
//   - [Run]：Group + 系统信号监听，信号到达时 Wait 返回 *[SignalError]
//   - [Service]：func(ctx) error 形式的长期任务
//
// # 常用服务
//
//   - [Component]：托管带 Shutdown(ctx) 的组件（xexpire.List、xsnapshot.Sampler 等），
//     Group 取消时在超时内关闭它
//   - [Ticker]：周期执行；回调返回 ErrStop 可让整个 Group 正常结束
//   - [WaitForDone]：占位服务，保持 Group 运行直到取消
//
// # 基本用法
//
//	err := xrun.Run(ctx, []xrun.Option{xrun.WithLogger(logger)}, map[string]xrun.Service{
//	    "list":    xrun.Component(list, 5*time.Second),
//	    "sampler": xrun.Component(sampler, 5*time.Second),
//	    "drain": xrun.Ticker(100*time.Millisecond, false, func(context.Context) error {
//	        if list.IsEmpty() {
//	            return xrun.ErrStop
//	        }
//	        return nil
//	    }),
//	})
//	if errors.Is(err, xrun.ErrSignal) {
//	    logger.Info("interrupted")
//	}
//
// # Wait 的返回值
//
//   - 某个服务返回错误（context.Canceled 除外）：返回该错误
//   - 收到信号：返回 *SignalError
//   - Cancel(cause)：返回 cause；cause 为 nil 时返回 nil
//   - 服务返回 ErrStop 或全部服务正常结束：返回 nil
//
// # 设计决策
//
// 1. 退出原因通过 context.WithCancelCause 传递，Wait 据此区分"被要求停止"与"出错退出"。
//
// 2. 信号监听作为普通服务运行，测试可以通过 ctx 注入信号通道，不向进程发送真实信号。
//
// 3. 组件关闭使用 context.WithoutCancel 派生的 ctx：Group 的 ctx 已取消，
// 直接传入会让 Shutdown 立即超时。
package xrun
