package xsnapshot

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName                = "xsnapshot"
	metricNameSampleTotal    = "xsnapshot.sample.total"
	metricNameSampleDuration = "xsnapshot.sample.duration"

	resultOK    = "ok"
	resultError = "error"
)

// metrics 记录采样指标。nil 接收者为空操作。
type metrics struct {
	samples  metric.Int64Counter
	duration metric.Float64Histogram
	sampler  attribute.KeyValue
}

// newMetrics 创建指标记录器。mp 为 nil 时返回 nil（不记录指标）。
func newMetrics(mp metric.MeterProvider, name string) (*metrics, error) {
	if mp == nil {
		return nil, nil
	}
	meter := mp.Meter(meterName)

	samples, err := meter.Int64Counter(metricNameSampleTotal,
		metric.WithDescription("采样次数（按结果区分）"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return nil, fmt.Errorf("xsnapshot: create sample counter: %w", err)
	}
	duration, err := meter.Float64Histogram(metricNameSampleDuration,
		metric.WithDescription("单次采样耗时（含重试）"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xsnapshot: create duration histogram: %w", err)
	}

	return &metrics{
		samples:  samples,
		duration: duration,
		sampler:  attribute.String("sampler", name),
	}, nil
}

func (m *metrics) recordSample(ctx context.Context, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := resultOK
	if err != nil {
		result = resultError
	}
	m.samples.Add(ctx, 1, metric.WithAttributes(m.sampler, attribute.String("result", result)))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(m.sampler))
}
