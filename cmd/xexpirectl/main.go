// xexpirectl 演示并检查 xexpire 过期列表。
//
// 用法:
//
//	xexpirectl [全局选项] <命令> [命令参数]
//
// 命令:
//
//	demo                 向过期列表加入随机 TTL 的元素，采样列表长度直到全部过期
//	config check <file>  加载并校验配置文件，打印生效值
//
// 退出码:
//
//	0: 成功（demo 收到 SIGINT/SIGTERM 后正常收尾也返回 0）
//	1: 运行失败
//	2: 参数或配置错误
//
// 示例:
//
//	xexpirectl demo --items 20 --max-ttl 3s --interval 200ms
//	xexpirectl demo --config demo.yaml --log-format json
//	xexpirectl config check demo.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// 版本信息，可通过 -ldflags 注入:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// run 执行命令并把错误映射为退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)
	err := app.Run(ctx, args)
	if err == nil {
		return exitOK
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return exitUsage
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return exitFailure
}
