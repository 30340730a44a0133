package xexpire

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName              = "xexpire"
	metricNameAddedTotal   = "xexpire.added.total"
	metricNameRemovedTotal = "xexpire.removed.total"
	metricNameExpiredTotal = "xexpire.expired.total"
	metricNameSize         = "xexpire.size"
)

// metrics 记录列表指标。nil 接收者为空操作。
type metrics struct {
	added   metric.Int64Counter
	removed metric.Int64Counter
	expired metric.Int64Counter
	size    metric.Int64UpDownCounter
	attrs   metric.MeasurementOption
}

// newMetrics 创建指标记录器。mp 为 nil 时返回 nil（不记录指标）。
func newMetrics(mp metric.MeterProvider, name string) (*metrics, error) {
	if mp == nil {
		return nil, nil
	}
	meter := mp.Meter(meterName)

	added, err := meter.Int64Counter(metricNameAddedTotal,
		metric.WithDescription("添加的元素数"),
		metric.WithUnit("{element}"),
	)
	if err != nil {
		return nil, fmt.Errorf("xexpire: create added counter: %w", err)
	}
	removed, err := meter.Int64Counter(metricNameRemovedTotal,
		metric.WithDescription("调用方删除的元素数"),
		metric.WithUnit("{element}"),
	)
	if err != nil {
		return nil, fmt.Errorf("xexpire: create removed counter: %w", err)
	}
	expired, err := meter.Int64Counter(metricNameExpiredTotal,
		metric.WithDescription("过期删除的元素数"),
		metric.WithUnit("{element}"),
	)
	if err != nil {
		return nil, fmt.Errorf("xexpire: create expired counter: %w", err)
	}
	size, err := meter.Int64UpDownCounter(metricNameSize,
		metric.WithDescription("当前元素数"),
		metric.WithUnit("{element}"),
	)
	if err != nil {
		return nil, fmt.Errorf("xexpire: create size counter: %w", err)
	}

	return &metrics{
		added:   added,
		removed: removed,
		expired: expired,
		size:    size,
		attrs:   metric.WithAttributes(attribute.String("list", name)),
	}, nil
}

func (m *metrics) recordAdded(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.added.Add(ctx, int64(n), m.attrs)
	m.size.Add(ctx, int64(n), m.attrs)
}

func (m *metrics) recordRemoved(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.removed.Add(ctx, int64(n), m.attrs)
	m.size.Add(ctx, -int64(n), m.attrs)
}

func (m *metrics) recordExpired(ctx context.Context) {
	if m == nil {
		return
	}
	m.expired.Add(ctx, 1, m.attrs)
	m.size.Add(ctx, -1, m.attrs)
}
