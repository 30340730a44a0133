package xsnapshot

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// parser 接受可选的秒字段和描述符。
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// intervalSchedule 是固定间隔计划。与 cron.Every 不同，它保留亚秒精度。
type intervalSchedule time.Duration

// Next 实现 cron.Schedule。
func (d intervalSchedule) Next(t time.Time) time.Time {
	return t.Add(time.Duration(d))
}

// parseSchedule 在 spec 非空时解析 cron 表达式，否则返回固定间隔计划。
// 永远不会触发的表达式（如 2 月 30 日）视为无效。
func parseSchedule(spec string, interval time.Duration) (cron.Schedule, error) {
	if spec == "" {
		return intervalSchedule(interval), nil
	}
	s, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, spec, err)
	}
	if s.Next(time.Now()).IsZero() {
		return nil, fmt.Errorf("%w: %q: never fires", ErrInvalidSchedule, spec)
	}
	return s, nil
}
