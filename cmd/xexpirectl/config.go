package main

import (
	"fmt"
	"io"
	"time"

	"github.com/omeyang/xexpire/pkg/config/xconf"
	"github.com/omeyang/xexpire/pkg/observability/xlog"
	"github.com/omeyang/xexpire/pkg/resilience/xretry"
)

// DemoConfig 是 demo 命令的完整配置，对应配置文件结构:
//
//	log:
//	  level: info
//	  format: text
//	  file: ""
//	list:
//	  poll_interval: 1s
//	sampler:
//	  interval: 500ms
//	  schedule: ""
//	  capacity: 0
//	  retry: 1
//	demo:
//	  items: 10
//	  max_ttl: 2s
//	supervisor:
//	  backoff:
//	    initial: 10ms
//	    max: 1s
//	    multiplier: 2
type DemoConfig struct {
	Log        LogConfig        `koanf:"log"`
	List       ListConfig       `koanf:"list"`
	Sampler    SamplerConfig    `koanf:"sampler"`
	Demo       ItemsConfig      `koanf:"demo"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level  xlog.Level `koanf:"level"`
	Format string     `koanf:"format"`
	File   string     `koanf:"file"`
}

// ListConfig 过期列表配置。
type ListConfig struct {
	PollInterval time.Duration `koanf:"poll_interval"`
}

// SamplerConfig 采样器配置。
type SamplerConfig struct {
	Interval time.Duration `koanf:"interval"`
	Schedule string        `koanf:"schedule"`
	Capacity int           `koanf:"capacity"`
	Retry    int           `koanf:"retry"`
}

// ItemsConfig 演示元素配置。
type ItemsConfig struct {
	Items  int           `koanf:"items"`
	MaxTTL time.Duration `koanf:"max_ttl"`
}

// SupervisorConfig 后台任务重启退避配置。
type SupervisorConfig struct {
	Backoff BackoffConfig `koanf:"backoff"`
}

// BackoffConfig 指数退避参数。
type BackoffConfig struct {
	Initial    time.Duration `koanf:"initial"`
	Max        time.Duration `koanf:"max"`
	Multiplier float64       `koanf:"multiplier"`
}

func defaultDemoConfig() DemoConfig {
	return DemoConfig{
		Log:     LogConfig{Level: xlog.LevelInfo, Format: xlog.FormatText},
		List:    ListConfig{PollInterval: time.Second},
		Sampler: SamplerConfig{Interval: 500 * time.Millisecond, Retry: 1},
		Demo:    ItemsConfig{Items: 10, MaxTTL: 2 * time.Second},
		Supervisor: SupervisorConfig{Backoff: BackoffConfig{
			Initial:    10 * time.Millisecond,
			Max:        time.Second,
			Multiplier: 2,
		}},
	}
}

// loadDemoConfig 在默认值之上叠加配置文件。path 为空时只返回默认值。
// 配置中出现未知键属于配置错误。
func loadDemoConfig(path string) (DemoConfig, *xconf.Config, error) {
	conf := defaultDemoConfig()
	if path == "" {
		return conf, nil, nil
	}
	cfg, err := xconf.New(path, xconf.WithStrict())
	if err != nil {
		return conf, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Unmarshal("", &conf); err != nil {
		return conf, nil, asUsage(err)
	}
	return conf, cfg, nil
}

// Validate 检查配置取值范围，错误属于用法错误。
func (c DemoConfig) Validate() error {
	switch {
	case c.Log.Format != xlog.FormatText && c.Log.Format != xlog.FormatJSON:
		return usagef("log.format 必须是 text 或 json，得到 %q", c.Log.Format)
	case c.List.PollInterval <= 0:
		return usagef("list.poll_interval 必须大于 0")
	case c.Sampler.Interval <= 0:
		return usagef("sampler.interval 必须大于 0")
	case c.Sampler.Capacity < 0:
		return usagef("sampler.capacity 不能为负")
	case c.Demo.Items < 0:
		return usagef("demo.items 不能为负")
	case c.Demo.MaxTTL <= 0:
		return usagef("demo.max_ttl 必须大于 0")
	case c.Supervisor.Backoff.Initial < 0 || c.Supervisor.Backoff.Max < 0:
		return usagef("supervisor.backoff 的延迟不能为负")
	case c.Supervisor.Backoff.Multiplier != 0 && c.Supervisor.Backoff.Multiplier < 1:
		return usagef("supervisor.backoff.multiplier 不能小于 1")
	}
	return nil
}

// restartBackoff 把退避配置转换为 xretry 策略，Initial 为 0 表示立即重启。
func (c DemoConfig) restartBackoff() xretry.BackoffPolicy {
	b := c.Supervisor.Backoff
	if b.Initial == 0 {
		return xretry.NewNoBackoff()
	}
	opts := []xretry.ExponentialOption{xretry.WithInitialDelay(b.Initial)}
	if b.Max > 0 {
		opts = append(opts, xretry.WithMaxDelay(b.Max))
	}
	if b.Multiplier > 0 {
		opts = append(opts, xretry.WithMultiplier(b.Multiplier))
	}
	return xretry.NewExponentialBackoff(opts...)
}

// print 以 key = value 形式输出生效配置。
func (c DemoConfig) print(w io.Writer) {
	rows := []struct {
		key string
		val any
	}{
		{"log.level", c.Log.Level},
		{"log.format", c.Log.Format},
		{"log.file", c.Log.File},
		{"list.poll_interval", c.List.PollInterval},
		{"sampler.interval", c.Sampler.Interval},
		{"sampler.schedule", c.Sampler.Schedule},
		{"sampler.capacity", c.Sampler.Capacity},
		{"sampler.retry", c.Sampler.Retry},
		{"demo.items", c.Demo.Items},
		{"demo.max_ttl", c.Demo.MaxTTL},
		{"supervisor.backoff.initial", c.Supervisor.Backoff.Initial},
		{"supervisor.backoff.max", c.Supervisor.Backoff.Max},
		{"supervisor.backoff.multiplier", c.Supervisor.Backoff.Multiplier},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s = %v\n", r.key, r.val)
	}
}
