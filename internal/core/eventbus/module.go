package eventbus

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventbus/config"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	Config       *config.Config        `optional:"true"`
	Registerer   prometheus.Registerer `optional:"true"`
	ErrorHandler pkgif.ErrorHandler    `optional:"true"`
	Clock        clock.Clock           `optional:"true"`
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Factory pkgif.Factory

	// Metrics 指标关闭时为 nil
	Metrics *Metrics
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name,
		fx.Provide(ProvideFactory),
	)
}

// ProvideFactory 提供事件总线工厂
//
// 未提供 Registerer 时指标不注册，仍可通过 Result.Metrics 读取。
func ProvideFactory(p Params) (Result, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	opts := cfg.EventBus.BusOptions()
	if p.ErrorHandler != nil {
		opts = append(opts, WithErrorHandler(p.ErrorHandler))
	}
	if p.Clock != nil {
		opts = append(opts, WithClock(p.Clock))
	}

	factory := NewFactory(opts...)
	var metrics *Metrics
	if cfg.Metrics.Enabled {
		m, err := NewMetrics(p.Registerer, cfg.Metrics.Namespace)
		if err != nil {
			return Result{}, err
		}
		metrics = m
		factory = factory.WithMetrics(metrics)
	}

	log.Debug("事件总线工厂已创建",
		"serialize", cfg.EventBus.SerializeByDefault,
		"maxConcurrency", cfg.EventBus.MaxConcurrency,
		"metrics", cfg.Metrics.Enabled)

	return Result{Factory: factory, Metrics: metrics}, nil
}

// ============================================================================
// 模块元信息
// ============================================================================

const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "eventbus"
	// Description 模块描述
	Description = "事件总线模块，提供按消息类型的发布/订阅与投递队列"
)
