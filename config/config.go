// Package config 提供 go-eventbus 的配置管理
//
// 本包采用与组件对应的分块配置：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON / YAML 加载，保存为 JSON
//   - 支持预设配置（ordered/throughput）
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.EventBus.SerializeByDefault = true
//
//	// 应用预设
//	config.ApplyPreset(cfg, "throughput")
//
//	// 从文件加载
//	cfg, err := config.LoadFile("eventbus.yaml")
package config

import (
	"errors"

	"go.uber.org/multierr"
)

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("invalid config")

// Config 是 go-eventbus 的完整配置结构
//
// 配置按照功能模块组织：
//   - EventBus: 订阅默认投递方式
//   - Metrics: Prometheus 指标
//   - Log: 日志级别
type Config struct {
	// EventBus 事件总线配置
	EventBus EventBusConfig `json:"eventbus" yaml:"eventbus"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`

	// Log 日志配置
	Log LogConfig `json:"log" yaml:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		EventBus: DefaultEventBusConfig(),
		Metrics:  DefaultMetricsConfig(),
		Log:      DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
//
// 汇总所有子配置的错误，而不是在第一个错误处返回。
func (c *Config) Validate() error {
	return multierr.Combine(
		c.EventBus.Validate(),
		c.Metrics.Validate(),
		c.Log.Validate(),
	)
}
