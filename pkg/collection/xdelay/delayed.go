package xdelay

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Delayed 是可报告剩余延迟的元素。
//
// Delay 返回距离到期的剩余时间，<= 0 表示已到期。
// 实现必须并发安全，且不能阻塞。
type Delayed interface {
	Delay() time.Duration
}

// Less 按当前剩余延迟比较 a 与 b，a 先到期时返回 true。
// 两次调用之间结果可能变化（倒计时是实时的）。
func Less(a, b Delayed) bool {
	return a.Delay() < b.Delay()
}

// Item 是携带值的 Delayed 实现，截止时间在创建时确定。
// Item 创建后不可变，可在多个 goroutine 间共享。
type Item[V any] struct {
	value    V
	deadline time.Time
	clock    clockwork.Clock
}

// NewItem 创建 ttl 之后到期的 Item，使用系统时钟。
// ttl <= 0 的 Item 立即到期。
func NewItem[V any](value V, ttl time.Duration) *Item[V] {
	return NewItemWithClock(clockwork.NewRealClock(), value, ttl)
}

// NewItemWithClock 与 NewItem 相同，但使用指定时钟计算截止时间和剩余延迟。
// clock 为 nil 时使用系统时钟。
func NewItemWithClock[V any](clock clockwork.Clock, value V, ttl time.Duration) *Item[V] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Item[V]{
		value:    value,
		deadline: clock.Now().Add(ttl),
		clock:    clock,
	}
}

// Value 返回携带的值。
func (it *Item[V]) Value() V {
	return it.value
}

// Deadline 返回到期时刻。
func (it *Item[V]) Deadline() time.Time {
	return it.deadline
}

// Delay 实现 Delayed 接口。
func (it *Item[V]) Delay() time.Duration {
	return it.deadline.Sub(it.clock.Now())
}

var _ Delayed = (*Item[int])(nil)
