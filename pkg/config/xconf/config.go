package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 是配置内容的格式。
type Format string

const (
	// FormatYAML YAML 格式，扩展名 .yaml 或 .yml。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式，扩展名 .json。
	FormatJSON Format = "json"
)

// Config 是从文件或字节数据加载的配置。所有方法并发安全。
type Config struct {
	k      atomic.Pointer[koanf.Koanf]
	path   string
	format Format
	opts   options

	// reloadMu 串行化 Reload，避免较慢的旧读取覆盖较新的结果。
	reloadMu sync.Mutex
}

// New 从文件加载配置，格式由扩展名决定。空文件得到空配置。
func New(path string, opts ...Option) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	c := newConfig(path, format, opts)
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromBytes 从字节数据加载配置，适用于 ConfigMap 或内嵌默认值。
// 这样创建的 Config 不能 Reload 或 Watch。
func NewFromBytes(data []byte, format Format, opts ...Option) (*Config, error) {
	c := newConfig("", format, opts)
	k, err := c.parse(data)
	if err != nil {
		return nil, err
	}
	c.k.Store(k)
	return c, nil
}

func newConfig(path string, format Format, opts []Option) *Config {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Config{path: path, format: format, opts: o}
}

// Client 返回当前的 koanf 实例。Reload 之后旧指针仍可用，但内容是旧配置。
func (c *Config) Client() *koanf.Koanf {
	return c.k.Load()
}

// Path 返回配置文件路径，字节数据创建的 Config 返回空字符串。
func (c *Config) Path() string {
	return c.path
}

// Format 返回配置格式。
func (c *Config) Format() Format {
	return c.format
}

// Unmarshal 把 path 下的配置解码到 target，path 为空时解码整个配置。
//
// 字符串形式的 time.Duration（"250ms"）和实现 encoding.TextUnmarshaler 的
// 字段（例如 xlog.Level）会自动转换。WithStrict 时多余的键返回错误。
func (c *Config) Unmarshal(path string, target any) error {
	conf := koanf.UnmarshalConf{
		Tag: c.opts.tag,
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			ErrorUnused:      c.opts.strict,
			TagName:          c.opts.tag,
			Result:           target,
			WeaklyTypedInput: true,
		},
	}
	if err := c.k.Load().UnmarshalWithConf(path, target, conf); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// MustUnmarshal 与 Config.Unmarshal 相同，失败时 panic。只用于启动阶段的必要配置。
func MustUnmarshal(c *Config, path string, target any) {
	if err := c.Unmarshal(path, target); err != nil {
		panic(err)
	}
}

// Reload 重新读取配置文件。解析失败时保留原配置。
func (c *Config) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}

	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := c.parse(data)
	if err != nil {
		return err
	}
	c.k.Store(k)
	return nil
}

func (c *Config) parse(data []byte) (*koanf.Koanf, error) {
	var parser koanf.Parser
	switch c.format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, c.format)
	}

	k := koanf.New(c.opts.delim)
	if len(data) == 0 {
		return k, nil
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}
