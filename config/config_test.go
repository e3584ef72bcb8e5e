package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.EventBus.SerializeByDefault)
	assert.Zero(t, cfg.EventBus.MaxConcurrency)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Log.Level)
}

// TestConfig_Validate_AggregatesErrors 测试验证汇总所有错误
func TestConfig_Validate_AggregatesErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.EventBus.MaxConcurrency = -1
	cfg.Metrics.Namespace = "not-valid"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Len(t, multierr.Errors(err), 3)
}

// TestEventBusConfig 测试事件总线配置
func TestEventBusConfig(t *testing.T) {
	t.Run("Validate_NegativeConcurrency", func(t *testing.T) {
		cfg := DefaultEventBusConfig()
		cfg.MaxConcurrency = -2
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("BusOptions", func(t *testing.T) {
		cfg := EventBusConfig{SerializeByDefault: true, MaxConcurrency: 4}

		var s pkgif.BusSettings
		for _, opt := range cfg.BusOptions() {
			opt(&s)
		}
		assert.True(t, s.Serialize)
		assert.Equal(t, 4, s.MaxConcurrency)
	})
}

// TestLogConfig 测试日志配置
func TestLogConfig(t *testing.T) {
	_, ok := LogConfig{}.SlogLevel()
	assert.False(t, ok)

	level, ok := LogConfig{Level: "debug"}.SlogLevel()
	assert.True(t, ok)
	assert.Equal(t, "DEBUG", level.String())

	assert.NoError(t, LogConfig{Level: "warn"}.Validate())
	assert.Error(t, LogConfig{Level: "verbose"}.Validate())
}

// TestFromJSON 测试 JSON 加载
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{"eventbus":{"serialize_by_default":true}}`))
	require.NoError(t, err)

	assert.True(t, cfg.EventBus.SerializeByDefault)
	// 未出现的字段保留默认值
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "dep2p", cfg.Metrics.Namespace)

	_, err = FromJSON([]byte(`{`))
	assert.Error(t, err)
}

// TestToJSON_RoundTrip 测试 JSON 保存后可重新加载
func TestToJSON_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.EventBus.MaxConcurrency = 3
	cfg.Log.Level = "error"

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	loaded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// TestFromYAML 测试 YAML 加载
func TestFromYAML(t *testing.T) {
	data := []byte(`
eventbus:
  max_concurrency: 16
metrics:
  enabled: false
log:
  level: debug
`)
	cfg, err := FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.EventBus.MaxConcurrency)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoadFile 测试按扩展名加载文件
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "eventbus.yml")
		require.NoError(t, os.WriteFile(path, []byte("eventbus:\n  serialize_by_default: true\n"), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.True(t, cfg.EventBus.SerializeByDefault)
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "eventbus.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"metrics":{"namespace":"app"}}`), 0o600))

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "app", cfg.Metrics.Namespace)
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"eventbus":{"max_concurrency":-1}}`), 0o600))

		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		path := filepath.Join(dir, "eventbus.toml")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

// TestApplyPreset 测试预设
func TestApplyPreset(t *testing.T) {
	cfg := NewConfig()

	require.NoError(t, ApplyPreset(cfg, PresetOrdered))
	assert.True(t, cfg.EventBus.SerializeByDefault)

	require.NoError(t, ApplyPreset(cfg, PresetBounded))
	assert.False(t, cfg.EventBus.SerializeByDefault)
	assert.Equal(t, BoundedMaxConcurrency, cfg.EventBus.MaxConcurrency)

	require.NoError(t, ApplyPreset(cfg, "throughput"))
	assert.False(t, cfg.EventBus.SerializeByDefault)
	assert.Zero(t, cfg.EventBus.MaxConcurrency)

	require.NoError(t, ApplyPreset(cfg, ""))
	assert.Error(t, ApplyPreset(cfg, "unknown"))
	assert.Error(t, ApplyPreset(nil, "ordered"))
}

// TestValidateAndFix 测试自动修复
func TestValidateAndFix(t *testing.T) {
	cfg := NewConfig()
	cfg.EventBus.MaxConcurrency = -5
	cfg.Log.Level = "chatty"

	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Zero(t, fixed.EventBus.MaxConcurrency)
	assert.Empty(t, fixed.Log.Level)

	fixed, err = ValidateAndFix(nil)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), fixed)

	// 命名空间无法自动修复
	cfg = NewConfig()
	cfg.Metrics.Namespace = "1bad"
	_, err = ValidateAndFix(cfg)
	assert.Error(t, err)
}

// TestMustValidate 测试 MustValidate
func TestMustValidate(t *testing.T) {
	assert.NotPanics(t, func() { MustValidate(NewConfig()) })
	assert.Panics(t, func() { MustValidate(nil) })
	assert.Error(t, ValidateAll(nil))
}
