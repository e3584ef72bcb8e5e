package eventbus

import (
	"context"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// 本地选项函数
// ============================================================================

// Serialize 设置订阅是否串行投递
//
// 与 pkg/interfaces.Serialize 等效
func Serialize(serialize bool) pkgif.SubscribeOpt {
	return pkgif.Serialize(serialize)
}

// MaxConcurrency 设置订阅并发投递上限
func MaxConcurrency(n int) pkgif.SubscribeOpt {
	return pkgif.MaxConcurrency(n)
}

// WithDeliveryContext 设置订阅的投递上下文
func WithDeliveryContext(dc pkgif.DeliveryContext) pkgif.SubscribeOpt {
	return pkgif.WithDeliveryContext(dc)
}

// WithContext 设置异步处理器的基础上下文
func WithContext(ctx context.Context) pkgif.SubscribeOpt {
	return pkgif.WithContext(ctx)
}

// WithErrorHandler 设置总线的处理器失败回调
func WithErrorHandler(h pkgif.ErrorHandler) pkgif.BusOpt {
	return pkgif.WithErrorHandler(h)
}

// WithObserver 设置总线观测者
func WithObserver(o pkgif.Observer) pkgif.BusOpt {
	return pkgif.WithObserver(o)
}

// WithClock 设置总线时钟
func WithClock(c clock.Clock) pkgif.BusOpt {
	return pkgif.WithClock(c)
}
