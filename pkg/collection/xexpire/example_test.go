package xexpire_test

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/omeyang/xexpire/pkg/collection/xdelay"
	"github.com/omeyang/xexpire/pkg/collection/xexpire"
)

func Example() {
	l, err := xexpire.New[*xdelay.Item[string]](
		xexpire.WithName("sessions"),
		xexpire.WithLogger(slog.New(slog.DiscardHandler)),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = l.Shutdown(context.Background()) }()

	_ = l.Add(xdelay.NewItem("short-lived", 20*time.Millisecond))
	_ = l.Add(xdelay.NewItem("long-lived", time.Hour))
	fmt.Println(l.Len())

	time.Sleep(200 * time.Millisecond)
	for i, it := range l.All() {
		fmt.Println(i, it.Value())
	}
	// Output:
	// 2
	// 0 long-lived
}

func ExampleWithOnExpired() {
	expired := make(chan string, 1)
	l, err := xexpire.New[*xdelay.Item[string]](
		xexpire.WithLogger(slog.New(slog.DiscardHandler)),
		xexpire.WithOnExpired(func(it *xdelay.Item[string]) {
			expired <- it.Value()
		}),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = l.Shutdown(context.Background()) }()

	_ = l.Add(xdelay.NewItem("token-1", 10*time.Millisecond))
	fmt.Println("expired:", <-expired)
	// Output: expired: token-1
}
