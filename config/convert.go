package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为 JSON
func (c *Config) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// FromYAML 从 YAML 数据创建配置
func FromYAML(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 按扩展名加载配置文件并验证
//
// 支持 .json、.yaml、.yml。
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		cfg, err = FromJSON(data)
	case ".yaml", ".yml":
		cfg, err = FromYAML(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 预设名称常量
const (
	// PresetOrdered 订阅默认串行
	PresetOrdered = "ordered"

	// PresetThroughput 订阅默认并发且不限制
	PresetThroughput = "throughput"

	// PresetBounded 订阅默认有界并发，上限为 BoundedMaxConcurrency
	PresetBounded = "bounded"
)

// BoundedMaxConcurrency bounded 预设的并发上限
const BoundedMaxConcurrency = 8

// ApplyPreset 应用预设配置
//
// 支持的预设：
//   - PresetOrdered: 订阅默认串行
//   - PresetThroughput: 订阅默认并发且不限制
//   - PresetBounded: 订阅默认并发，上限为 BoundedMaxConcurrency
//
// 空名称不做任何修改。
func ApplyPreset(cfg *Config, presetName string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	switch presetName {
	case PresetOrdered:
		cfg.EventBus.SerializeByDefault = true
		cfg.EventBus.MaxConcurrency = 0
	case PresetThroughput:
		cfg.EventBus.SerializeByDefault = false
		cfg.EventBus.MaxConcurrency = 0
	case PresetBounded:
		cfg.EventBus.SerializeByDefault = false
		cfg.EventBus.MaxConcurrency = BoundedMaxConcurrency
	case "":
	default:
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	return nil
}
