package config

import (
	"errors"
	"fmt"
)

// ValidateAll 验证整个配置的有效性
//
// nil 配置视为错误。
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并修复可修复的问题
//
// 可修复的问题：
//   - 并发上限为负 -> 不限制
//   - 串行模式下设置了并发上限 -> 清除上限
//   - 未知的日志级别 -> 使用环境变量配置
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.EventBus.MaxConcurrency < 0 {
		c.EventBus.MaxConcurrency = 0
	}
	if c.EventBus.SerializeByDefault {
		c.EventBus.MaxConcurrency = 0
	}
	if c.Log.Validate() != nil {
		c.Log.Level = ""
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed after fixes: %w", err)
	}
	return c, nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("config validation failed: %v", err))
	}
}
