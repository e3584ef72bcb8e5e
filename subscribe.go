package eventbus

import (
	"context"

	coreeventbus "github.com/dep2p/go-eventbus/internal/core/eventbus"
	"github.com/dep2p/go-eventbus/internal/core/registry"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ════════════════════════════════════════════════════════════════════════════
//                              获取总线
// ════════════════════════════════════════════════════════════════════════════

// Get 返回消息类型 T 的默认总线
//
// 同一 Hub 上对同一类型的调用总是返回同一实例。
func Get[T any](h *Hub) (EventBus[T], error) {
	return registry.Get[T](h.registry)
}

// GetNamed 返回消息类型 T 下名为 name 的总线
//
// name 为空或全为空白时返回 ErrInvalidName。
func GetNamed[T any](h *Hub, name string) (EventBus[T], error) {
	return registry.GetNamed[T](h.registry, NewName(name))
}

// NewBus 创建一个不经过 Hub 的独立总线
func NewBus[T any](opts ...BusOpt) EventBus[T] {
	return coreeventbus.NewBus[T](opts...)
}

// ════════════════════════════════════════════════════════════════════════════
//                              订阅
// ════════════════════════════════════════════════════════════════════════════

// Subscribe 以弱引用订阅同步处理器
//
// 总线不延长 subscriber 的生命周期。
func Subscribe[T any, S any, P interface {
	*S
	Handler[T]
}](bus EventBus[T], subscriber P, opts ...SubscribeOpt) uint64 {
	return coreeventbus.Subscribe[T, S, P](bus, subscriber, opts...)
}

// SubscribeAsync 以弱引用订阅异步处理器
func SubscribeAsync[T any, S any, P interface {
	*S
	AsyncHandler[T]
}](bus EventBus[T], subscriber P, opts ...SubscribeOpt) uint64 {
	return coreeventbus.SubscribeAsync[T, S, P](bus, subscriber, opts...)
}

// SubscribeFunc 订阅同步函数，需要显式 Unsubscribe
func SubscribeFunc[T any](bus EventBus[T], fn func(T), opts ...SubscribeOpt) uint64 {
	return coreeventbus.SubscribeFunc(bus, fn, opts...)
}

// SubscribeAsyncFunc 订阅异步函数，需要显式 Unsubscribe
func SubscribeAsyncFunc[T any](bus EventBus[T], fn func(context.Context, T) error, opts ...SubscribeOpt) uint64 {
	return coreeventbus.SubscribeAsyncFunc(bus, fn, opts...)
}

// ════════════════════════════════════════════════════════════════════════════
//                              订阅选项
// ════════════════════════════════════════════════════════════════════════════

// Serialize 设置订阅是否串行投递
func Serialize(serialize bool) SubscribeOpt {
	return pkgif.Serialize(serialize)
}

// MaxConcurrency 设置订阅并发投递上限
func MaxConcurrency(n int) SubscribeOpt {
	return pkgif.MaxConcurrency(n)
}

// WithDeliveryContext 设置订阅的投递上下文
func WithDeliveryContext(dc DeliveryContext) SubscribeOpt {
	return pkgif.WithDeliveryContext(dc)
}

// WithContext 设置异步处理器的基础上下文
func WithContext(ctx context.Context) SubscribeOpt {
	return pkgif.WithContext(ctx)
}
