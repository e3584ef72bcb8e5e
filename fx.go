package eventbus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-eventbus/config"
	coreeventbus "github.com/dep2p/go-eventbus/internal/core/eventbus"
	"github.com/dep2p/go-eventbus/internal/core/registry"
	"github.com/dep2p/go-eventbus/internal/util/logger"
)

var fxLogger = logger.Logger("eventbus/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置与可选注入（Registerer, ErrorHandler）
//  2. eventbus.Module: 工厂与指标
//  3. registry.Module: 注册表，OnStart 初始化
//  4. 用户自定义 Fx 选项
func buildFxApp(o *options, hub *Hub) (*fx.App, error) {
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),
		fx.Provide(func() prometheus.Registerer { return hub.registerer }),
		coreeventbus.Module(),
		registry.Module(),
	}

	if o.errorHandler != nil {
		modules = append(modules, fx.Supply(o.errorHandler))
	}

	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	modules = append(modules,
		fx.Populate(&hub.registry),
		fx.Invoke(applyLogConfig),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}

	fxLogger.Debug("Fx 应用已构建", "modules", len(modules))
	return app, nil
}

// applyLogConfig 应用日志级别配置
func applyLogConfig(cfg *config.Config) {
	if level, ok := cfg.Log.SlogLevel(); ok {
		logger.SetGlobalLevel(level)
	}
}
