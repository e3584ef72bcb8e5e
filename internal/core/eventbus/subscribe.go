package eventbus

import (
	"context"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// 订阅便利函数
// ============================================================================

// Subscribe 以弱引用订阅同步处理器
//
//	type printer struct{ prefix string }
//	func (p *printer) Handle(n int) { fmt.Println(p.prefix, n) }
//
//	id := eventbus.Subscribe[int](bus, &printer{prefix: "got"})
//
// subscriber 为 nil 时返回 0。
func Subscribe[T any, S any, P interface {
	*S
	pkgif.Handler[T]
}](bus pkgif.EventBus[T], subscriber P, opts ...pkgif.SubscribeOpt) uint64 {
	if (*S)(subscriber) == nil {
		return 0
	}
	return bus.SubscribeRef(WeakRef[T, S, P](subscriber), opts...)
}

// SubscribeAsync 以弱引用订阅异步处理器
func SubscribeAsync[T any, S any, P interface {
	*S
	pkgif.AsyncHandler[T]
}](bus pkgif.EventBus[T], subscriber P, opts ...pkgif.SubscribeOpt) uint64 {
	if (*S)(subscriber) == nil {
		return 0
	}
	return bus.SubscribeRef(WeakAsyncRef[T, S, P](subscriber), opts...)
}

// SubscribeFunc 订阅同步函数
//
// 函数没有可观察的身份，总线持有强引用，只能通过 Unsubscribe 移除。
func SubscribeFunc[T any](bus pkgif.EventBus[T], fn func(T), opts ...pkgif.SubscribeOpt) uint64 {
	if fn == nil {
		return 0
	}
	return bus.SubscribeRef(StrongRef[T](pkgif.HandlerFunc[T](fn)), opts...)
}

// SubscribeAsyncFunc 订阅异步函数
func SubscribeAsyncFunc[T any](bus pkgif.EventBus[T], fn func(context.Context, T) error, opts ...pkgif.SubscribeOpt) uint64 {
	if fn == nil {
		return 0
	}
	return bus.SubscribeRef(StrongAsyncRef[T](pkgif.AsyncHandlerFunc[T](fn)), opts...)
}
