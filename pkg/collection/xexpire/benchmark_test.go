package xexpire

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/omeyang/xexpire/pkg/collection/xdelay"
)

func benchList(b *testing.B) *List[item] {
	b.Helper()
	l, err := New[item](WithLogger(discard))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = l.Shutdown(context.Background()) })
	return l
}

func BenchmarkList_AddRemove(b *testing.B) {
	l := benchList(b)
	it := xdelay.NewItem("x", time.Hour)
	b.ReportAllocs()
	for b.Loop() {
		_ = l.Add(it)
		l.Remove(it)
	}
}

func BenchmarkList_Get(b *testing.B) {
	for _, n := range []int{16, 1024} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			l := benchList(b)
			for i := range n {
				_ = l.Add(xdelay.NewItem(fmt.Sprint(i), time.Hour))
			}
			b.ReportAllocs()
			for b.Loop() {
				_, _ = l.Get(n / 2)
			}
		})
	}
}

func BenchmarkList_GetParallel(b *testing.B) {
	l := benchList(b)
	for i := range 256 {
		_ = l.Add(xdelay.NewItem(fmt.Sprint(i), time.Hour))
	}
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = l.Len()
			_, _ = l.Get(128)
		}
	})
}
