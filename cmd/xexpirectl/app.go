package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xexpire/pkg/observability/xlog"
)

// createApp 创建 CLI 应用。标准输出与错误输出可替换，便于测试。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xexpirectl",
		Usage:     "xexpire 过期列表演示与配置检查工具",
		Version:   fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			createDemoCommand(),
			createConfigCommand(),
		},
		OnUsageError: onUsageError,
		// 退出码由 run 统一映射，禁止 urfave/cli 自行 os.Exit。
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func onUsageError(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return asUsage(err)
}

func createDemoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "加入随机 TTL 的元素并采样列表长度，直到全部过期或收到信号",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "配置文件（yaml/json），运行中修改 log.level 立即生效"},
			&cli.IntFlag{Name: "items", Aliases: []string{"n"}, Usage: "元素数量"},
			&cli.DurationFlag{Name: "max-ttl", Usage: "元素 TTL 上限"},
			&cli.DurationFlag{Name: "interval", Usage: "采样间隔"},
			&cli.StringFlag{Name: "schedule", Usage: "cron 采样计划，优先于 --interval"},
			&cli.StringFlag{Name: "log-level", Usage: "日志级别 debug/info/warn/error"},
			&cli.StringFlag{Name: "log-format", Usage: "日志格式 text/json"},
			&cli.StringFlag{Name: "log-file", Usage: "日志文件，按大小轮转"},
		},
		OnUsageError: onUsageError,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conf, cfg, err := loadDemoConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, &conf); err != nil {
				return err
			}
			if err := conf.Validate(); err != nil {
				return err
			}
			return runDemo(ctx, cmd.Root().Writer, cmd.Root().ErrWriter, conf, cfg)
		},
	}
}

func createConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "配置文件工具",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "加载并校验配置文件，打印生效值",
				ArgsUsage: "<file>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return usagef("config check 需要且只需要一个文件参数")
					}
					conf, _, err := loadDemoConfig(cmd.Args().First())
					if err != nil {
						return err
					}
					if err := conf.Validate(); err != nil {
						return err
					}
					conf.print(cmd.Root().Writer)
					return nil
				},
			},
		},
	}
}

// applyFlags 用显式设置的命令行参数覆盖配置文件。
func applyFlags(cmd *cli.Command, conf *DemoConfig) error {
	if cmd.IsSet("items") {
		conf.Demo.Items = cmd.Int("items")
	}
	if cmd.IsSet("max-ttl") {
		conf.Demo.MaxTTL = cmd.Duration("max-ttl")
	}
	if cmd.IsSet("interval") {
		conf.Sampler.Interval = cmd.Duration("interval")
	}
	if cmd.IsSet("schedule") {
		conf.Sampler.Schedule = cmd.String("schedule")
	}
	if cmd.IsSet("log-level") {
		level, err := xlog.ParseLevel(cmd.String("log-level"))
		if err != nil {
			return asUsage(err)
		}
		conf.Log.Level = level
	}
	if cmd.IsSet("log-format") {
		conf.Log.Format = cmd.String("log-format")
	}
	if cmd.IsSet("log-file") {
		conf.Log.File = cmd.String("log-file")
	}
	return nil
}
