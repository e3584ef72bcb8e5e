package config

import (
	"fmt"
	"log/slog"

	"github.com/dep2p/go-eventbus/internal/util/logger"
)

// LogConfig 日志配置
//
// 为空时使用 EVENTBUS_LOG_LEVEL 环境变量的结果。
type LogConfig struct {
	// Level 全局日志级别（debug/info/warn/error）
	Level string `json:"level" yaml:"level"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if c.Level == "" {
		return nil
	}
	if _, ok := logger.ParseLevel(c.Level); !ok {
		return fmt.Errorf("%w: log.level %q is unknown", ErrInvalidConfig, c.Level)
	}
	return nil
}

// SlogLevel 返回配置的级别，未配置时 ok 为 false
func (c LogConfig) SlogLevel() (level slog.Level, ok bool) {
	if c.Level == "" {
		return slog.LevelInfo, false
	}
	return logger.ParseLevel(c.Level)
}
