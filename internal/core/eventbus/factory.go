package eventbus

import (
	"reflect"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// Factory 实现
// ============================================================================

// Factory 默认事件总线工厂
//
// 所有总线共享同一组总线选项。设置了 Metrics 时，
// 每个总线获得按消息类型打标签的观测者。
type Factory struct {
	opts    []pkgif.BusOpt
	metrics *Metrics
}

var _ pkgif.Factory = (*Factory)(nil)

// NewFactory 创建工厂
func NewFactory(opts ...pkgif.BusOpt) *Factory {
	return &Factory{opts: opts}
}

// WithMetrics 返回附带指标的工厂
func (f *Factory) WithMetrics(m *Metrics) *Factory {
	return &Factory{opts: f.opts, metrics: m}
}

// Create 实现 pkgif.Factory
func (f *Factory) Create(messageType reflect.Type, build pkgif.BuildFunc) any {
	opts := f.opts
	if f.metrics != nil {
		opts = append(opts[:len(opts):len(opts)], pkgif.WithObserver(f.metrics.For(messageType)))
	}
	return build(opts...)
}

// Builder 返回 T 的 BuildFunc
func Builder[T any]() pkgif.BuildFunc {
	return func(opts ...pkgif.BusOpt) any {
		return NewBus[T](opts...)
	}
}
