package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-eventbus/internal/util/logger"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// subsystem 日志子系统名
const subsystem = "core/eventbus"

var log = logger.Logger(subsystem)

// ============================================================================
// Bus 实现
// ============================================================================

// Bus 单一消息类型的事件总线
//
// 每个订阅拥有独立的投递队列。Publish 对当前订阅做快照后逐个入队，
// 不等待任何处理器执行。处理器的 panic 和错误都不会传回发布者。
type Bus[T any] struct {
	id     string
	nextID atomic.Uint64
	count  atomic.Int64

	// subs 订阅 ID -> *dispatchQueue[T]
	subs sync.Map

	settings pkgif.BusSettings
	log      *slog.Logger
}

var _ pkgif.EventBus[struct{}] = (*Bus[struct{}])(nil)

// NewBus 创建事件总线
func NewBus[T any](opts ...pkgif.BusOpt) *Bus[T] {
	settings := pkgif.BusSettings{}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.Observer == nil {
		settings.Observer = NopObserver{}
	}
	if settings.Clock == nil {
		settings.Clock = clock.New()
	}

	id := uuid.NewString()
	return &Bus[T]{
		id:       id,
		settings: settings,
		log:      logger.With(subsystem, "bus", id, "type", reflect.TypeFor[T]().String()),
	}
}

// ID 返回总线实例标识
func (b *Bus[T]) ID() string {
	return b.id
}

// Len 返回当前订阅数
func (b *Bus[T]) Len() int {
	return int(b.count.Load())
}

// SubscribeRef 注册订阅者引用
//
// 订阅 ID 从 1 开始单调递增。ref 为 nil 时返回 0，0 不对应任何订阅。
func (b *Bus[T]) SubscribeRef(ref pkgif.HandlerRef[T], opts ...pkgif.SubscribeOpt) uint64 {
	if ref == nil {
		return 0
	}

	settings := pkgif.SubscriptionSettings{
		Serialize:      b.settings.Serialize,
		MaxConcurrency: b.settings.MaxConcurrency,
		Context:        context.Background(),
	}
	for _, opt := range opts {
		opt(&settings)
	}

	id := b.nextID.Add(1)
	degree := settings.Degree()
	q := newDispatchQueue(degree, b.settings.Clock, b.deliverer(id, ref, settings))
	b.subs.Store(id, q)
	b.count.Add(1)
	b.settings.Observer.Subscribed()

	b.log.Debug("订阅已注册", "subscription", id, "degree", degree, "async", ref.Async())
	return id
}

// Unsubscribe 取消订阅
//
// 同一 ID 只有第一次调用返回 true。已入队的消息仍会投递完毕。
func (b *Bus[T]) Unsubscribe(subscriptionID uint64) bool {
	v, ok := b.subs.LoadAndDelete(subscriptionID)
	if !ok {
		return false
	}
	b.count.Add(-1)
	b.settings.Observer.Unsubscribed()

	q := v.(*dispatchQueue[T])
	func() {
		defer func() { _ = recover() }()
		q.complete()
	}()

	b.log.Debug("订阅已取消", "subscription", subscriptionID)
	return true
}

// Publish 发布消息
func (b *Bus[T]) Publish(message T) {
	var queues []*dispatchQueue[T]
	b.subs.Range(func(_, v any) bool {
		queues = append(queues, v.(*dispatchQueue[T]))
		return true
	})

	b.settings.Observer.Published(len(queues))
	for _, q := range queues {
		// 快照之后被取消的订阅
		if !q.post(message) {
			b.settings.Observer.Dropped(pkgif.DropCompleted)
		}
	}
}

// queue 返回订阅的投递队列
func (b *Bus[T]) queue(subscriptionID uint64) (*dispatchQueue[T], bool) {
	v, ok := b.subs.Load(subscriptionID)
	if !ok {
		return nil, false
	}
	return v.(*dispatchQueue[T]), true
}

// ============================================================================
// 投递
// ============================================================================

// deliverer 返回订阅队列使用的投递函数
func (b *Bus[T]) deliverer(id uint64, ref pkgif.HandlerRef[T], settings pkgif.SubscriptionSettings) func(queued[T]) {
	dc := settings.DeliveryContext
	ctx := settings.Context

	return func(item queued[T]) {
		if dc == nil {
			b.dispatch(id, ref, ctx, item)
			return
		}

		defer func() {
			if r := recover(); r != nil {
				b.fail(id, fmt.Errorf("%w: %v", ErrDeliveryPanic, r))
			}
		}()
		dc.Post(func(any) {
			b.dispatch(id, ref, ctx, item)
		}, nil)
	}
}

// dispatch 解析订阅者并调用
func (b *Bus[T]) dispatch(id uint64, ref pkgif.HandlerRef[T], ctx context.Context, item queued[T]) {
	invoke, ok := ref.Resolve()
	if !ok {
		b.settings.Observer.Dropped(pkgif.DropCollected)
		return
	}
	b.settings.Observer.Delivered(b.settings.Clock.Since(item.enqueued))

	if ref.Async() {
		go b.call(id, invoke, ctx, item.message)
		return
	}
	b.call(id, invoke, ctx, item.message)
}

// call 调用处理器，吞掉 panic 和错误
func (b *Bus[T]) call(id uint64, invoke pkgif.InvokeFunc[T], ctx context.Context, message T) {
	defer func() {
		if r := recover(); r != nil {
			b.fail(id, fmt.Errorf("%w: %v", ErrHandlerPanic, r))
		}
	}()

	if err := invoke(ctx, message); err != nil {
		b.fail(id, err)
	}
}

// fail 上报处理器失败
func (b *Bus[T]) fail(id uint64, err error) {
	b.settings.Observer.Failed(err)

	h := b.settings.ErrorHandler
	if h == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("错误回调 panic", "subscription", id, "panic", r)
		}
	}()
	h(id, err)
}
