package config

import (
	"fmt"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// EventBusConfig 事件总线配置
//
// 决定订阅未显式指定投递方式时的默认值。
type EventBusConfig struct {
	// SerializeByDefault 订阅默认串行投递
	SerializeByDefault bool `json:"serialize_by_default" yaml:"serialize_by_default"`

	// MaxConcurrency 非串行订阅的默认并发上限，0 表示不限制
	MaxConcurrency int `json:"max_concurrency" yaml:"max_concurrency"`
}

// DefaultEventBusConfig 返回默认事件总线配置
func DefaultEventBusConfig() EventBusConfig {
	return EventBusConfig{
		SerializeByDefault: false,
		MaxConcurrency:     0,
	}
}

// Validate 验证事件总线配置
func (c EventBusConfig) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("%w: eventbus.max_concurrency must be >= 0, got %d", ErrInvalidConfig, c.MaxConcurrency)
	}
	return nil
}

// BusOptions 转换为总线选项
func (c EventBusConfig) BusOptions() []pkgif.BusOpt {
	return []pkgif.BusOpt{
		pkgif.DefaultSerialize(c.SerializeByDefault),
		pkgif.DefaultMaxConcurrency(c.MaxConcurrency),
	}
}
