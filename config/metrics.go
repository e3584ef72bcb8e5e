package config

import (
	"fmt"
	"regexp"
)

// metricNamespace Prometheus 名称片段
var metricNamespace = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enabled 是否采集 Prometheus 指标
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Namespace 指标命名空间，可为空
	Namespace string `json:"namespace" yaml:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "dep2p",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Namespace != "" && !metricNamespace.MatchString(c.Namespace) {
		return fmt.Errorf("%w: metrics.namespace %q is not a valid metric name", ErrInvalidConfig, c.Namespace)
	}
	return nil
}
