package xdelay

import "github.com/jonboulle/clockwork"

// Option 定义 Queue 可选配置函数类型。
type Option func(*options)

type options struct {
	clock clockwork.Clock
}

func defaultOptions() options {
	return options{
		clock: clockwork.NewRealClock(),
	}
}

// WithClock 设置等待定时器使用的时钟。
// 默认使用系统时钟。传入 nil 将被忽略。
//
// 注意：队列只用该时钟创建等待定时器，元素的剩余延迟仍由元素自己计算。
// 使用 FakeClock 测试时，元素也应基于同一个时钟创建（见 [NewItemWithClock]）。
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}
