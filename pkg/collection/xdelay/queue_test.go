package xdelay

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type takeResult struct {
	e   *Entry[*Item[string]]
	err error
}

func asyncTake(ctx context.Context, q *Queue[*Item[string]]) <-chan takeResult {
	ch := make(chan takeResult, 1)
	go func() {
		e, err := q.Take(ctx)
		ch <- takeResult{e: e, err: err}
	}()
	return ch
}

func blockUntil(t *testing.T, fc *clockwork.FakeClock, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, n))
}

func TestItem_Delay(t *testing.T) {
	fc := clockwork.NewFakeClock()
	it := NewItemWithClock(fc, "a", 2*time.Second)

	assert.Equal(t, "a", it.Value())
	assert.Equal(t, fc.Now().Add(2*time.Second), it.Deadline())
	assert.Equal(t, 2*time.Second, it.Delay())

	fc.Advance(1500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, it.Delay())

	fc.Advance(time.Second)
	assert.Equal(t, -500*time.Millisecond, it.Delay())
}

func TestItem_NilClockFallsBackToRealClock(t *testing.T) {
	it := NewItemWithClock[int](nil, 1, time.Hour)
	assert.Greater(t, it.Delay(), 59*time.Minute)
}

func TestLess(t *testing.T) {
	fc := clockwork.NewFakeClock()
	a := NewItemWithClock(fc, "a", time.Second)
	b := NewItemWithClock(fc, "b", 2*time.Second)

	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))
}

func TestQueue_TakeWaitsForDelay(t *testing.T) {
	fc := clockwork.NewFakeClock()
	q := NewQueue[*Item[string]](WithClock(fc))
	defer q.Close()

	_, err := q.Push(NewItemWithClock(fc, "a", time.Second))
	require.NoError(t, err)

	res := asyncTake(context.Background(), q)
	blockUntil(t, fc, 1)

	select {
	case r := <-res:
		t.Fatalf("Take returned before the delay elapsed: %v", r.err)
	default:
	}

	fc.Advance(time.Second)

	select {
	case r := <-res:
		require.NoError(t, r.err)
		assert.Equal(t, "a", r.e.Value().Value())
	case <-time.After(time.Second):
		t.Fatal("Take did not return after the delay elapsed")
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_TakeReturnsExpiredImmediately(t *testing.T) {
	q := NewQueue[*Item[string]]()
	defer q.Close()

	_, err := q.Push(NewItem("now", 0))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e, err := q.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, "now", e.Value().Value())
}

func TestQueue_TakeRealClock(t *testing.T) {
	q := NewQueue[*Item[string]]()
	defer q.Close()

	start := time.Now()
	_, err := q.Push(NewItem("a", 10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e, err := q.Take(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", e.Value().Value())
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestQueue_EarlierPushWakesTaker(t *testing.T) {
	fc := clockwork.NewFakeClock()
	q := NewQueue[*Item[string]](WithClock(fc))
	defer q.Close()

	_, err := q.Push(NewItemWithClock(fc, "late", 10*time.Second))
	require.NoError(t, err)

	res := asyncTake(context.Background(), q)
	blockUntil(t, fc, 1)

	_, err = q.Push(NewItemWithClock(fc, "early", time.Second))
	require.NoError(t, err)

	fc.Advance(time.Second)

	select {
	case r := <-res:
		require.NoError(t, r.err)
		assert.Equal(t, "early", r.e.Value().Value())
	case <-time.After(time.Second):
		t.Fatal("taker was not woken by the earlier element")
	}
	assert.Equal(t, 1, q.Len())
}

func TestQueue_TakeOnEmptyWaitsForPush(t *testing.T) {
	q := NewQueue[*Item[string]]()
	defer q.Close()

	res := asyncTake(context.Background(), q)

	select {
	case <-res:
		t.Fatal("Take on an empty queue must block")
	case <-time.After(20 * time.Millisecond):
	}

	_, err := q.Push(NewItem("a", 0))
	require.NoError(t, err)

	select {
	case r := <-res:
		require.NoError(t, r.err)
		assert.Equal(t, "a", r.e.Value().Value())
	case <-time.After(time.Second):
		t.Fatal("Take was not woken by Push")
	}
}

func TestQueue_TakeContextCanceled(t *testing.T) {
	q := NewQueue[*Item[string]]()
	defer q.Close()

	_, err := q.Push(NewItem("a", time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = q.Take(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, q.Len(), "a canceled wait must not lose the pending element")
}

func TestQueue_TakeNilContext(t *testing.T) {
	q := NewQueue[*Item[string]]()
	defer q.Close()

	//nolint:staticcheck // 测试 nil ctx
	_, err := q.Take(nil)
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestQueue_InterruptKeepsPendingElement(t *testing.T) {
	q := NewQueue[*Item[string]]()
	defer q.Close()

	_, err := q.Push(NewItem("pending", time.Hour))
	require.NoError(t, err)

	res := asyncTake(context.Background(), q)

	var got takeResult
	require.Eventually(t, func() bool {
		q.Interrupt()
		select {
		case got = <-res:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, got.err, ErrInterrupted)
	assert.Nil(t, got.e)
	assert.Equal(t, 1, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, "pending", head.Value().Value())
}

func TestQueue_InterruptBeforeTakeIsNotLost(t *testing.T) {
	q := NewQueue[*Item[string]]()
	defer q.Close()

	_, err := q.Push(NewItem("ready", 0))
	require.NoError(t, err)

	q.Interrupt()
	q.Interrupt()

	_, err = q.Take(context.Background())
	require.ErrorIs(t, err, ErrInterrupted, "an interrupt with no waiter is delivered to the next Take")
	assert.Equal(t, 1, q.Len())

	e, err := q.Take(context.Background())
	require.NoError(t, err, "repeated interrupts collapse into one")
	assert.Equal(t, "ready", e.Value().Value())
}

func TestQueue_CloseUnblocksTake(t *testing.T) {
	q := NewQueue[*Item[string]]()
	res := asyncTake(context.Background(), q)

	var got takeResult
	require.Eventually(t, func() bool {
		q.Close()
		select {
		case got = <-res:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, got.err, ErrClosed)

	_, err := q.Push(NewItem("late", 0))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = q.Take(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	// 幂等
	q.Close()
}

func TestQueue_RemoveByIdentity(t *testing.T) {
	fc := clockwork.NewFakeClock()
	q := NewQueue[*Item[string]](WithClock(fc))
	defer q.Close()

	// 两个值与截止时间都相同的元素，只能靠句柄区分
	e1, err := q.Push(NewItemWithClock(fc, "same", time.Second))
	require.NoError(t, err)
	e2, err := q.Push(NewItemWithClock(fc, "same", time.Second))
	require.NoError(t, err)

	assert.True(t, q.Remove(e2))
	assert.False(t, q.Remove(e2), "second removal of the same handle must report false")
	assert.Equal(t, 1, q.Len())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Same(t, e1, head)
}

func TestQueue_RemoveForeignOrNil(t *testing.T) {
	q1 := NewQueue[*Item[string]]()
	defer q1.Close()
	q2 := NewQueue[*Item[string]]()
	defer q2.Close()

	e, err := q1.Push(NewItem("a", time.Hour))
	require.NoError(t, err)
	_, err = q2.Push(NewItem("b", time.Hour))
	require.NoError(t, err)

	assert.False(t, q2.Remove(e))
	assert.False(t, q2.Remove(nil))
	assert.Equal(t, 1, q2.Len())
	assert.True(t, q1.Remove(e))
}

func TestQueue_RemoveHeadWakesTaker(t *testing.T) {
	fc := clockwork.NewFakeClock()
	q := NewQueue[*Item[string]](WithClock(fc))
	defer q.Close()

	head, err := q.Push(NewItemWithClock(fc, "head", time.Second))
	require.NoError(t, err)
	_, err = q.Push(NewItemWithClock(fc, "next", 2*time.Second))
	require.NoError(t, err)

	res := asyncTake(context.Background(), q)
	blockUntil(t, fc, 1)

	require.True(t, q.Remove(head))
	fc.Advance(2 * time.Second)

	select {
	case r := <-res:
		require.NoError(t, r.err)
		assert.Equal(t, "next", r.e.Value().Value())
	case <-time.After(time.Second):
		t.Fatal("Take did not return the next element")
	}
}

func TestQueue_PollOrder(t *testing.T) {
	fc := clockwork.NewFakeClock()
	q := NewQueue[*Item[string]](WithClock(fc))
	defer q.Close()

	for _, tc := range []struct {
		v   string
		ttl time.Duration
	}{
		{"c", 3 * time.Second},
		{"a", time.Second},
		{"b", 2 * time.Second},
	} {
		_, err := q.Push(NewItemWithClock(fc, tc.v, tc.ttl))
		require.NoError(t, err)
	}

	_, ok := q.Poll()
	assert.False(t, ok, "nothing has expired yet")

	fc.Advance(3 * time.Second)

	var got []string
	for {
		e, ok := q.Poll()
		if !ok {
			break
		}
		got = append(got, e.Value().Value())
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestQueue_SameDelayKeepsInsertionOrder(t *testing.T) {
	fc := clockwork.NewFakeClock()
	q := NewQueue[*Item[int]](WithClock(fc))
	defer q.Close()

	for i := range 5 {
		_, err := q.Push(NewItemWithClock(fc, i, 0))
		require.NoError(t, err)
	}
	for i := range 5 {
		e, ok := q.Poll()
		require.True(t, ok)
		assert.Equal(t, i, e.Value().Value())
	}
}

func TestQueue_Drain(t *testing.T) {
	q := NewQueue[*Item[string]]()
	defer q.Close()

	e, err := q.Push(NewItem("a", time.Hour))
	require.NoError(t, err)
	_, err = q.Push(NewItem("b", time.Minute))
	require.NoError(t, err)

	out := q.Drain()
	assert.Len(t, out, 2)
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Remove(e), "drained handles are no longer queued")

	_, ok := q.Peek()
	assert.False(t, ok)
}

func TestQueue_ConcurrentPushRemoveTake(t *testing.T) {
	q := NewQueue[*Item[int]]()
	defer q.Close()

	const (
		producers = 8
		perWorker = 200
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var taken atomic.Int64
	takerDone := make(chan struct{})
	go func() {
		defer close(takerDone)
		for {
			if _, err := q.Take(ctx); err != nil {
				return
			}
			taken.Add(1)
		}
	}()

	var removed atomic.Int64
	var wg sync.WaitGroup
	for w := range producers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range perWorker {
				e, err := q.Push(NewItem(w*perWorker+i, time.Duration(i%5)*time.Millisecond))
				if err != nil {
					t.Errorf("Push: %v", err)
					return
				}
				if i%3 == 0 && q.Remove(e) {
					removed.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	total := int64(producers * perWorker)
	require.Eventually(t, func() bool {
		return taken.Load()+removed.Load() == total
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, q.Len())

	cancel()
	<-takerDone
}
