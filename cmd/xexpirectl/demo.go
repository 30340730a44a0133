package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/omeyang/xexpire/pkg/collection/xdelay"
	"github.com/omeyang/xexpire/pkg/collection/xexpire"
	"github.com/omeyang/xexpire/pkg/config/xconf"
	"github.com/omeyang/xexpire/pkg/lifecycle/xrun"
	"github.com/omeyang/xexpire/pkg/observability/xlog"
	"github.com/omeyang/xexpire/pkg/observability/xsnapshot"
)

const (
	shutdownTimeout = 5 * time.Second
	drainCheck      = 20 * time.Millisecond
)

type demoItem = *xdelay.Item[string]

// runDemo 运行演示：元素全部过期或收到信号后打印采样结果和计数。
// cfg 非 nil 时监视配置文件，log.level 的修改立即生效。
func runDemo(ctx context.Context, stdout, stderr io.Writer, conf DemoConfig, cfg *xconf.Config) (err error) {
	b := xlog.New().
		SetOutput(stderr).
		SetLevel(conf.Log.Level).
		SetFormat(conf.Log.Format).
		SetAttrs(slog.String("run", uuid.NewString()))
	if conf.Log.File != "" {
		b.SetRotation(conf.Log.File)
	}
	logger, levelVar, closeLog, err := b.Build()
	if err != nil {
		return asUsage(err)
	}
	defer func() { err = errors.Join(err, closeLog()) }()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { err = errors.Join(err, mp.Shutdown(context.WithoutCancel(ctx))) }()

	list, err := xexpire.New[demoItem](
		xexpire.WithName("demo"),
		xexpire.WithLogger(logger),
		xexpire.WithPollInterval(conf.List.PollInterval),
		xexpire.WithBackoff(conf.restartBackoff()),
		xexpire.WithMeterProvider(mp),
		xexpire.WithOnExpired(func(it demoItem) {
			logger.Debug("item expired", slog.String("id", it.Value()))
		}),
	)
	if err != nil {
		return err
	}

	samplerOpts := []xsnapshot.Option{
		xsnapshot.WithLogger(logger),
		xsnapshot.WithImmediate(),
		xsnapshot.WithCapacity(conf.Sampler.Capacity),
		xsnapshot.WithRetry(conf.Sampler.Retry),
		xsnapshot.WithRestartBackoff(conf.restartBackoff()),
		xsnapshot.WithMeterProvider(mp),
	}
	if conf.Sampler.Schedule != "" {
		samplerOpts = append(samplerOpts, xsnapshot.WithSchedule(conf.Sampler.Schedule))
	}
	sampler, err := xsnapshot.New("list-size", func(context.Context) (int, error) {
		return list.Len(), nil
	}, conf.Sampler.Interval, samplerOpts...)
	if err != nil {
		err = errors.Join(err, list.Shutdown(context.WithoutCancel(ctx)))
		if errors.Is(err, xsnapshot.ErrInvalidSchedule) {
			return asUsage(err)
		}
		return err
	}

	stop := func(err error) error {
		stopCtx := context.WithoutCancel(ctx)
		return errors.Join(err, list.Shutdown(stopCtx), sampler.Shutdown(stopCtx))
	}
	if err := fill(list, conf.Demo); err != nil {
		return stop(err)
	}
	logger.Info("demo started",
		slog.Int("items", conf.Demo.Items),
		slog.Duration("max_ttl", conf.Demo.MaxTTL),
	)

	services := map[string]xrun.Service{
		"list":    xrun.Component(list, shutdownTimeout),
		"sampler": xrun.Component(sampler, shutdownTimeout),
		"drain": xrun.Ticker(drainCheck, false, func(context.Context) error {
			if list.IsEmpty() {
				return xrun.ErrStop
			}
			return nil
		}),
	}
	if cfg != nil {
		w, err := xconf.NewWatcher(cfg, reloadLevel(logger, levelVar), xconf.WithWatchLogger(logger))
		if err != nil {
			return stop(err)
		}
		services["config-watch"] = w.Run
	}

	runErr := xrun.Run(ctx, []xrun.Option{xrun.WithLogger(logger), xrun.WithName("demo")}, services)
	var sigErr *xrun.SignalError
	if errors.As(runErr, &sigErr) {
		logger.Info("demo interrupted", slog.String("signal", sigErr.Signal.String()))
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}

	report(stdout, sampler.Snapshots(), list, reader)
	return nil
}

// fill 加入 items 个 uuid 命名、TTL 在 (0, maxTTL] 内随机的元素。
func fill(list *xexpire.List[demoItem], c ItemsConfig) error {
	items := make([]demoItem, c.Items)
	for i := range items {
		ttl := 1 + rand.N(c.MaxTTL)
		items[i] = xdelay.NewItem(uuid.NewString(), ttl)
	}
	return list.AddAll(items...)
}

// reloadLevel 返回配置变更回调：重新读取 log.level 并更新 levelVar。
func reloadLevel(logger *slog.Logger, levelVar *slog.LevelVar) xconf.ChangeFunc {
	return func(cfg *xconf.Config, err error) {
		if err != nil {
			return
		}
		var lc LogConfig
		if err := cfg.Unmarshal("log", &lc); err != nil {
			logger.Warn("ignoring invalid log config", slog.Any("error", err))
			return
		}
		if lc.Level.Slog() != levelVar.Level() {
			levelVar.Set(lc.Level.Slog())
			logger.Info("log level changed", slog.String("level", lc.Level.String()))
		}
	}
}

// report 打印采样记录和指标汇总。
func report(w io.Writer, snaps []xsnapshot.Snapshot[int], list *xexpire.List[demoItem], reader sdkmetric.Reader) {
	fmt.Fprintln(w, "seq\ttime\tsize")
	for _, s := range snaps {
		fmt.Fprintf(w, "%d\t%s\t%d\n", s.Seq, s.At.Format(time.RFC3339Nano), s.Value)
	}

	var rm metricdata.ResourceMetrics
	totals := make(map[string]int64)
	if err := reader.Collect(context.Background(), &rm); err == nil {
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
					for _, dp := range sum.DataPoints {
						totals[m.Name] += dp.Value
					}
				}
			}
		}
	}
	fmt.Fprintf(w, "added=%d expired=%d remaining=%d restarts=%d\n",
		totals["xexpire.added.total"], totals["xexpire.expired.total"], list.Len(), list.Restarts())
}
