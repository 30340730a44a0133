package xdelay

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Entry 是队列中元素的句柄。
// 由 [Queue.Push] 返回，用于按身份删除元素。
type Entry[T Delayed] struct {
	value T
	seq   uint64
	index int // 在堆中的位置，-1 表示不在队列中
}

// Value 返回句柄携带的元素。
func (e *Entry[T]) Value() T {
	return e.value
}

// entryHeap 实现 heap.Interface，按 Delay() 升序，同延迟按插入顺序。
type entryHeap[T Delayed] []*Entry[T]

func (h entryHeap[T]) Len() int { return len(h) }

func (h entryHeap[T]) Less(i, j int) bool {
	di, dj := h[i].value.Delay(), h[j].value.Delay()
	if di != dj {
		return di < dj
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap[T]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap[T]) Push(x any) {
	e := x.(*Entry[T])
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap[T]) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue 是按剩余延迟排序的并发安全阻塞队列。
// 必须通过 [NewQueue] 创建，零值不可用。
type Queue[T Delayed] struct {
	mu     sync.Mutex
	items  entryHeap[T]
	seq    uint64
	wake   chan struct{} // 关闭即广播：队首变化
	intr   chan struct{} // 关闭即广播：Interrupt
	done   chan struct{}
	closed bool
	clock  clockwork.Clock

	// interrupted 记录尚未被任何 Take 消费的 Interrupt。
	interrupted bool
}

// NewQueue 创建延迟队列。
func NewQueue[T Delayed](opts ...Option) *Queue[T] {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Queue[T]{
		wake:  make(chan struct{}),
		intr:  make(chan struct{}),
		done:  make(chan struct{}),
		clock: o.clock,
	}
}

// Push 插入元素并返回其句柄。
// 如果新元素成为队首，会唤醒阻塞中的 Take 重新计算等待时间。
// 队列已关闭时返回 ErrClosed。
func (q *Queue[T]) Push(v T) (*Entry[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrClosed
	}
	q.seq++
	e := &Entry[T]{value: v, seq: q.seq}
	heap.Push(&q.items, e)
	if e.index == 0 {
		q.broadcastLocked()
	}
	return e, nil
}

// Remove 删除句柄 e 对应的元素。
// 返回 false 表示 e 不在本队列中（已被取出、已删除或属于其他队列）。
func (q *Queue[T]) Remove(e *Entry[T]) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(e)
}

func (q *Queue[T]) removeLocked(e *Entry[T]) bool {
	if e == nil || e.index < 0 || e.index >= len(q.items) || q.items[e.index] != e {
		return false
	}
	wasHead := e.index == 0
	heap.Remove(&q.items, e.index)
	if wasHead {
		q.broadcastLocked()
	}
	return true
}

// Take 阻塞直到队首元素到期，移除并返回其句柄。
//
// 队列为空时一直等待新元素。等待可被以下事件结束：
//   - ctx 结束：返回 ctx.Err()
//   - Interrupt：返回 ErrInterrupted（每次 Interrupt 只结束一次 Take）
//   - Close：返回 ErrClosed
//
// 以上情况下队列内容保持不变。
func (q *Queue[T]) Take(ctx context.Context) (*Entry[T], error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, ErrClosed
		}
		if q.interrupted {
			q.interrupted = false
			q.mu.Unlock()
			return nil, ErrInterrupted
		}
		var (
			timer   clockwork.Timer
			timeout <-chan time.Time
		)
		if len(q.items) > 0 {
			d := q.items[0].value.Delay()
			if d <= 0 {
				e := heap.Pop(&q.items).(*Entry[T])
				q.mu.Unlock()
				return e, nil
			}
			timer = q.clock.NewTimer(d)
			timeout = timer.Chan()
		}
		wake, intr := q.wake, q.intr
		q.mu.Unlock()

		err := q.wait(ctx, wake, intr, timeout)
		if timer != nil {
			timer.Stop()
		}
		if err != nil {
			return nil, err
		}
	}
}

// wait 等待任一唤醒事件。返回 nil 表示应重新检查队首。
func (q *Queue[T]) wait(ctx context.Context, wake, intr <-chan struct{}, timeout <-chan time.Time) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrClosed
	case <-intr:
		return nil
	case <-wake:
		return nil
	case <-timeout:
		return nil
	}
}

// Poll 非阻塞地取出已到期的队首元素。
// 队列为空或队首未到期时返回 nil, false。
func (q *Queue[T]) Poll() (*Entry[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 || q.items[0].value.Delay() > 0 {
		return nil, false
	}
	return heap.Pop(&q.items).(*Entry[T]), true
}

// Peek 返回队首元素句柄但不移除。
func (q *Queue[T]) Peek() (*Entry[T], bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// Len 返回队列中的元素数（含已到期但尚未取出的元素）。
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain 移除并返回全部元素，顺序不保证。
func (q *Queue[T]) Drain() []*Entry[T] {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*Entry[T], len(q.items))
	for i, e := range q.items {
		e.index = -1
		out[i] = e
	}
	clear(q.items)
	q.items = q.items[:0]
	if len(out) > 0 {
		q.broadcastLocked()
	}
	return out
}

// Interrupt 使一次 Take 返回 ErrInterrupted，不改变队列内容。
//
// 若有 Take 正在阻塞，其中之一被打断；否则中断被记录下来，
// 由下一次 Take 在检查队首之前消费。连续多次 Interrupt 在被消费前只计一次。
func (q *Queue[T]) Interrupt() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.interrupted = true
	close(q.intr)
	q.intr = make(chan struct{})
}

// Close 关闭队列。该方法是幂等的。
// 关闭后 Push 返回 ErrClosed，阻塞中和之后的 Take 返回 ErrClosed；
// 已在队列中的元素保留，仍可通过 Len/Peek/Remove/Drain 访问。
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

// broadcastLocked 唤醒所有等待者，调用方须持有 q.mu。
func (q *Queue[T]) broadcastLocked() {
	close(q.wake)
	q.wake = make(chan struct{})
}
