package xexpire

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/omeyang/xexpire/pkg/collection/xdelay"
	"github.com/omeyang/xexpire/pkg/lifecycle/xsuper"
)

// Element 是列表元素的约束。
// 相等判断（Remove、Contains、IndexOf、RemoveAll、RetainAll）使用 ==，
// 指针类型因此获得按身份比较的语义。
//
// T 为接口类型时，动态值不可比较（如含切片字段的结构体）的元素不等于任何值，
// 只能通过 RemoveAt、RemoveFunc 或过期删除，相等判断不会 panic。
type Element interface {
	comparable
	xdelay.Delayed
}

// List 是元素按各自延迟自动过期的并发安全列表。
// 必须通过 [New] 创建，使用完毕后调用 [List.Close] 或 [List.Shutdown]。
type List[T Element] struct {
	mu      sync.RWMutex
	entries []*xdelay.Entry[T] // 写时复制：只整体替换，不原地修改
	closed  bool

	queue     *xdelay.Queue[T]
	sup       *xsuper.Supervisor
	opts      options
	onExpired func(T)
	logger    *slog.Logger
	metrics   *metrics
}

// New 创建列表，并立即启动后台 reaper。
func New[T Element](opts ...Option) (*List[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	var onExpired func(T)
	if o.onExpired != nil {
		fn, ok := o.onExpired.(func(T))
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrOnExpiredType, o.onExpired)
		}
		onExpired = fn
	}

	m, err := newMetrics(o.meterProvider, o.name)
	if err != nil {
		return nil, err
	}

	l := &List[T]{
		queue:     xdelay.NewQueue[T](xdelay.WithClock(o.clock)),
		opts:      o,
		onExpired: onExpired,
		metrics:   m,
		logger: o.logger.With(
			slog.String("component", "xexpire"),
			slog.String("list", o.name),
		),
	}

	supOpts := []xsuper.Option{
		xsuper.WithLogger(o.logger),
		xsuper.WithClock(o.clock),
		xsuper.WithMeterProvider(o.meterProvider),
		xsuper.WithBackoff(o.backoff),
	}
	sup, err := xsuper.New(o.name, func() xsuper.Task { return l.reap }, supOpts...)
	if err != nil {
		l.queue.Close()
		return nil, fmt.Errorf("xexpire: start reaper: %w", err)
	}
	l.sup = sup
	return l, nil
}

// =============================================================================
// 修改
// =============================================================================

// Add 在末尾添加元素。列表关闭后返回 ErrClosed。
func (l *List[T]) Add(v T) error {
	return l.AddAll(v)
}

// AddAll 按顺序在末尾添加多个元素，一次加锁完成。列表关闭后返回 ErrClosed。
func (l *List[T]) AddAll(vs ...T) error {
	if len(vs) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	added, err := l.pushLocked(vs)
	if err != nil {
		return err
	}
	next := make([]*xdelay.Entry[T], 0, len(l.entries)+len(added))
	next = append(next, l.entries...)
	l.entries = append(next, added...)
	l.metrics.recordAdded(context.Background(), len(added))
	return nil
}

// Insert 在下标 i 处插入元素，0 <= i <= Len()。
// 越界返回 ErrIndexOutOfRange，列表关闭后返回 ErrClosed。
func (l *List[T]) Insert(i int, v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if i < 0 || i > len(l.entries) {
		return outOfRange(i, len(l.entries))
	}
	added, err := l.pushLocked([]T{v})
	if err != nil {
		return err
	}
	l.entries = slices.Concat(l.entries[:i], added, l.entries[i:])
	l.metrics.recordAdded(context.Background(), 1)
	return nil
}

// Remove 删除第一个等于 v 的元素。元素不存在时返回 false。
func (l *List[T]) Remove(v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexLocked(v)
	if i < 0 {
		return false
	}
	l.removeAtLocked(i)
	l.metrics.recordRemoved(context.Background(), 1)
	return true
}

// RemoveAt 删除并返回下标 i 上的元素。
// 删除的是该下标上的那个句柄，即使其他位置存在相等的元素。
func (l *List[T]) RemoveAt(i int) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.entries) {
		var zero T
		return zero, outOfRange(i, len(l.entries))
	}
	e := l.removeAtLocked(i)
	l.metrics.recordRemoved(context.Background(), 1)
	return e.Value(), nil
}

// RemoveAll 删除所有等于 vs 中任一值的元素，返回删除数量。
func (l *List[T]) RemoveAll(vs ...T) int {
	if len(vs) == 0 {
		return 0
	}
	return l.RemoveFunc(func(v T) bool {
		return containsValue(vs, v)
	})
}

// RetainAll 只保留等于 vs 中任一值的元素，返回删除数量。
// vs 为空时清空列表。
func (l *List[T]) RetainAll(vs ...T) int {
	return l.RemoveFunc(func(v T) bool {
		return !containsValue(vs, v)
	})
}

// RemoveFunc 删除所有使 drop 返回 true 的元素，返回删除数量。
// drop 在列表锁内调用，不能回调本列表的方法。
func (l *List[T]) RemoveFunc(drop func(T) bool) int {
	if drop == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := make([]*xdelay.Entry[T], 0, len(l.entries))
	for _, e := range l.entries {
		if drop(e.Value()) {
			l.queue.Remove(e)
			continue
		}
		kept = append(kept, e)
	}
	n := len(l.entries) - len(kept)
	if n > 0 {
		l.entries = kept
		l.metrics.recordRemoved(context.Background(), n)
	}
	return n
}

// Clear 删除全部元素。
func (l *List[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		l.queue.Remove(e)
	}
	n := len(l.entries)
	l.entries = nil
	l.metrics.recordRemoved(context.Background(), n)
}

// pushLocked 把 vs 依次放入队列。失败时撤销本次已放入的句柄。
func (l *List[T]) pushLocked(vs []T) ([]*xdelay.Entry[T], error) {
	added := make([]*xdelay.Entry[T], 0, len(vs))
	for _, v := range vs {
		e, err := l.queue.Push(v)
		if err != nil {
			for _, a := range added {
				l.queue.Remove(a)
			}
			return nil, fmt.Errorf("xexpire: enqueue: %w", err)
		}
		added = append(added, e)
	}
	return added, nil
}

// removeAtLocked 从序列和队列中删除下标 i 上的句柄。
// 队列删除失败说明 reaper 刚取出该句柄，此时以序列删除为准，reaper 会发现它已不在序列中。
func (l *List[T]) removeAtLocked(i int) *xdelay.Entry[T] {
	e := l.entries[i]
	l.queue.Remove(e)
	l.entries = without(l.entries, i)
	return e
}

func (l *List[T]) indexLocked(v T) int {
	for i, e := range l.entries {
		if equal(e.Value(), v) {
			return i
		}
	}
	return -1
}

// =============================================================================
// 读取
// =============================================================================

// load 返回当前序列。返回的切片不会再被修改。
func (l *List[T]) load() []*xdelay.Entry[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entries
}

// Get 返回下标 i 上的元素，越界返回 ErrIndexOutOfRange。
func (l *List[T]) Get(i int) (T, error) {
	entries := l.load()
	if i < 0 || i >= len(entries) {
		var zero T
		return zero, outOfRange(i, len(entries))
	}
	return entries[i].Value(), nil
}

// Len 返回元素数。到期但尚未被 reaper 删除的元素仍计入。
func (l *List[T]) Len() int {
	return len(l.load())
}

// IsEmpty 报告列表是否为空。
func (l *List[T]) IsEmpty() bool {
	return l.Len() == 0
}

// Contains 报告是否存在等于 v 的元素。
func (l *List[T]) Contains(v T) bool {
	return l.IndexOf(v) >= 0
}

// IndexOf 返回第一个等于 v 的元素下标，不存在时返回 -1。
func (l *List[T]) IndexOf(v T) int {
	for i, e := range l.load() {
		if equal(e.Value(), v) {
			return i
		}
	}
	return -1
}

// Snapshot 返回当前全部元素的副本，按插入顺序排列。
func (l *List[T]) Snapshot() []T {
	entries := l.load()
	out := make([]T, len(entries))
	for i, e := range entries {
		out[i] = e.Value()
	}
	return out
}

// All 返回调用时刻快照上的迭代器。迭代期间的修改和过期不影响本次迭代。
func (l *List[T]) All() iter.Seq2[int, T] {
	entries := l.load()
	return func(yield func(int, T) bool) {
		for i, e := range entries {
			if !yield(i, e.Value()) {
				return
			}
		}
	}
}

// SubList 返回 [from, to) 区间元素的副本，0 <= from <= to <= Len()。
func (l *List[T]) SubList(from, to int) ([]T, error) {
	entries := l.load()
	if from < 0 || from > len(entries) {
		return nil, outOfRange(from, len(entries))
	}
	if to < from || to > len(entries) {
		return nil, outOfRange(to, len(entries))
	}
	out := make([]T, 0, to-from)
	for _, e := range entries[from:to] {
		out = append(out, e.Value())
	}
	return out, nil
}

// Restarts 返回 reaper 的故障重启次数。
func (l *List[T]) Restarts() uint64 {
	return l.sup.Restarts()
}

// =============================================================================
// 生命周期
// =============================================================================

// Interrupt 打断 reaper 当前（或下一次）的等待。reaper 记录警告后继续，不丢失任何元素。
func (l *List[T]) Interrupt() {
	l.queue.Interrupt()
}

// Close 停止 reaper，不等待其退出。该方法是幂等的。
// 关闭后不再过期元素，添加操作返回 ErrClosed，删除和读取仍然可用。
func (l *List[T]) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.sup.Destroy()
	l.queue.Close()
}

// Shutdown 关闭列表并等待 reaper 退出，ctx 先结束时返回 ctx.Err()。
func (l *List[T]) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	l.Close()
	return l.sup.Shutdown(ctx)
}

func outOfRange(i, n int) error {
	return fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, n)
}

// without 返回删除下标 i 后的新切片，不修改 s。
func without[E any](s []E, i int) []E {
	out := make([]E, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// equal 用 == 比较 a 和 b。接口动态值不可比较时 == 会 panic，此时视为不相等。
func equal[T comparable](a, b T) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

func containsValue[T comparable](vs []T, v T) bool {
	return slices.ContainsFunc(vs, func(x T) bool { return equal(x, v) })
}
