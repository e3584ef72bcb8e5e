package eventbus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventbus/config"
)

// ════════════════════════════════════════════════════════════════════════════
//                              预设
// ════════════════════════════════════════════════════════════════════════════

// 预设名称常量，与 config 包一致
const (
	// PresetOrdered 订阅默认串行
	PresetOrdered = config.PresetOrdered

	// PresetThroughput 订阅默认并发且不限制
	PresetThroughput = config.PresetThroughput

	// PresetBounded 订阅默认有界并发
	PresetBounded = config.PresetBounded
)

// ════════════════════════════════════════════════════════════════════════════
//                              选项
// ════════════════════════════════════════════════════════════════════════════

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config *config.Config

	// registerer 外部指标注册器，nil 时使用 Hub 私有注册表
	registerer prometheus.Registerer

	errorHandler ErrorHandler

	// userFxOptions 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// WithConfig 使用完整配置
//
// 之后的选项在该配置上继续修改。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("config is nil")
		}
		c := *cfg
		o.config = &c
		return nil
	}
}

// WithConfigFile 从 JSON/YAML 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithPreset 应用预设
func WithPreset(name string) Option {
	return func(o *options) error {
		return config.ApplyPreset(o.config, name)
	}
}

// WithSerializeByDefault 设置订阅默认是否串行
func WithSerializeByDefault(serialize bool) Option {
	return func(o *options) error {
		o.config.EventBus.SerializeByDefault = serialize
		return nil
	}
}

// WithMaxConcurrency 设置非串行订阅的默认并发上限，0 表示不限制
func WithMaxConcurrency(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("max concurrency must be >= 0, got %d", n)
		}
		o.config.EventBus.MaxConcurrency = n
		return nil
	}
}

// WithMetrics 启用或关闭 Prometheus 指标
func WithMetrics(enabled bool) Option {
	return func(o *options) error {
		o.config.Metrics.Enabled = enabled
		return nil
	}
}

// WithRegisterer 把指标注册到外部 Registerer
//
// 多个 Hub 可共享同一 Registerer，同名指标被复用。
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithErrorHandler 设置处理器失败回调，作用于 Hub 创建的所有总线
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) error {
		o.errorHandler = h
		return nil
	}
}

// WithLogLevel 设置全局日志级别（debug/info/warn/error）
func WithLogLevel(level string) Option {
	return func(o *options) error {
		o.config.Log.Level = level
		return o.config.Log.Validate()
	}
}

// WithFxOption 追加自定义 Fx 选项
//
// 可用于替换 pkgif.Factory（fx.Decorate）或注入额外组件。
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
