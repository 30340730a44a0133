package xsuper

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName              = "xsuper"
	metricNameRestartTotal = "xsuper.restart.total"
)

// metrics 记录监督器指标。nil 接收者为空操作。
type metrics struct {
	restarts metric.Int64Counter
	attrs    metric.MeasurementOption
}

// newMetrics 创建指标记录器。mp 为 nil 时返回 nil（不记录指标）。
func newMetrics(mp metric.MeterProvider, name string) (*metrics, error) {
	if mp == nil {
		return nil, nil
	}
	meter := mp.Meter(meterName)
	restarts, err := meter.Int64Counter(metricNameRestartTotal,
		metric.WithDescription("任务故障重启次数"),
		metric.WithUnit("{restart}"),
	)
	if err != nil {
		return nil, fmt.Errorf("xsuper: create restart counter: %w", err)
	}
	return &metrics{
		restarts: restarts,
		attrs:    metric.WithAttributes(attribute.String("supervisor", name)),
	}, nil
}

func (m *metrics) recordRestart(ctx context.Context) {
	if m == nil {
		return
	}
	m.restarts.Add(ctx, 1, m.attrs)
}
