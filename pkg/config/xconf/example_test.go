package xconf_test

import (
	"fmt"
	"time"

	"github.com/omeyang/xexpire/pkg/config/xconf"
)

func ExampleNewFromBytes() {
	data := []byte(`
list:
  poll_interval: 500ms
sampler:
  interval: 2s
`)
	cfg, err := xconf.NewFromBytes(data, xconf.FormatYAML)
	if err != nil {
		panic(err)
	}

	var conf struct {
		List struct {
			PollInterval time.Duration `koanf:"poll_interval"`
		} `koanf:"list"`
	}
	if err := cfg.Unmarshal("", &conf); err != nil {
		panic(err)
	}
	fmt.Println(conf.List.PollInterval, cfg.Client().Duration("sampler.interval"))
	// Output: 500ms 2s
}
