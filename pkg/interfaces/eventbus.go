package interfaces

import (
	"context"
	"reflect"
	"time"

	"github.com/benbjohnson/clock"
)

// ============================================================================
// 处理器
// ============================================================================

// Handler 同步消息处理器
type Handler[T any] interface {
	// Handle 处理消息
	Handle(message T)
}

// HandlerFunc 函数形式的同步处理器
type HandlerFunc[T any] func(message T)

// Handle 实现 Handler
func (f HandlerFunc[T]) Handle(message T) { f(message) }

// AsyncHandler 异步消息处理器
//
// HandleAsync 在独立的 goroutine 中执行，总线不等待其完成，
// 返回的错误只会交给总线的 ErrorHandler。
type AsyncHandler[T any] interface {
	// HandleAsync 处理消息
	HandleAsync(ctx context.Context, message T) error
}

// AsyncHandlerFunc 函数形式的异步处理器
type AsyncHandlerFunc[T any] func(ctx context.Context, message T) error

// HandleAsync 实现 AsyncHandler
func (f AsyncHandlerFunc[T]) HandleAsync(ctx context.Context, message T) error {
	return f(ctx, message)
}

// InvokeFunc 已解析订阅者的调用入口
type InvokeFunc[T any] func(ctx context.Context, message T) error

// HandlerRef 订阅者引用
//
// 总线在每次投递前调用 Resolve。订阅者已不可达时 Resolve 返回 false，
// 该条消息被静默丢弃。
type HandlerRef[T any] interface {
	// Resolve 解析订阅者
	Resolve() (InvokeFunc[T], bool)

	// Async 是否为异步处理器（脱离队列在独立 goroutine 中执行）
	Async() bool
}

// DeliveryContext 投递上下文
//
// 把一次处理器调用编组到某个执行环境（例如某个所有者 goroutine）。
// 总线只负责 Post，不关心回调在哪里、何时执行。
type DeliveryContext interface {
	// Post 提交回调，state 原样传回
	Post(callback func(state any), state any)
}

// ============================================================================
// EventBus
// ============================================================================

// EventBus 单一消息类型的事件总线
type EventBus[T any] interface {
	// SubscribeRef 注册订阅者引用，返回订阅 ID
	SubscribeRef(ref HandlerRef[T], opts ...SubscribeOpt) uint64

	// Unsubscribe 取消订阅，返回该 ID 是否存在
	Unsubscribe(subscriptionID uint64) bool

	// Publish 向当前所有订阅者投递消息，不等待投递完成
	Publish(message T)
}

// ============================================================================
// 订阅选项
// ============================================================================

// SubscribeOpt 订阅选项函数类型
type SubscribeOpt func(*SubscriptionSettings)

// SubscriptionSettings 订阅设置（导出以供实现使用）
type SubscriptionSettings struct {
	// Serialize 串行投递（并发度 1，按发布顺序）
	Serialize bool

	// MaxConcurrency 非串行模式下的最大并发投递数，<= 0 表示不限制
	MaxConcurrency int

	// DeliveryContext 投递上下文，nil 表示在分发 goroutine 中直接调用
	DeliveryContext DeliveryContext

	// Context 传给异步处理器的基础上下文
	Context context.Context
}

// Degree 返回有效并发度：1 为串行，-1 为不限制
func (s *SubscriptionSettings) Degree() int {
	switch {
	case s.Serialize:
		return 1
	case s.MaxConcurrency > 0:
		return s.MaxConcurrency
	default:
		return -1
	}
}

// Serialize 设置是否串行投递
func Serialize(serialize bool) SubscribeOpt {
	return func(s *SubscriptionSettings) {
		s.Serialize = serialize
	}
}

// MaxConcurrency 设置并发投递上限（隐含非串行）
func MaxConcurrency(n int) SubscribeOpt {
	return func(s *SubscriptionSettings) {
		s.Serialize = false
		s.MaxConcurrency = n
	}
}

// WithDeliveryContext 设置投递上下文
func WithDeliveryContext(dc DeliveryContext) SubscribeOpt {
	return func(s *SubscriptionSettings) {
		s.DeliveryContext = dc
	}
}

// WithContext 设置异步处理器的基础上下文
func WithContext(ctx context.Context) SubscribeOpt {
	return func(s *SubscriptionSettings) {
		if ctx != nil {
			s.Context = ctx
		}
	}
}

// ============================================================================
// 总线选项
// ============================================================================

// ErrorHandler 接收被总线吞掉的处理器错误
type ErrorHandler func(subscriptionID uint64, err error)

// DropReason 消息丢弃原因
type DropReason string

const (
	// DropCollected 订阅者已被回收
	DropCollected DropReason = "collected"
	// DropCompleted 队列已完成，不再接收消息
	DropCompleted DropReason = "completed"
)

// Observer 总线观测接口
//
// 实现必须并发安全且不阻塞。
type Observer interface {
	// Subscribed 新增订阅
	Subscribed()
	// Unsubscribed 移除订阅
	Unsubscribed()
	// Published 发布一条消息，fanout 为快照中的队列数
	Published(fanout int)
	// Delivered 一次投递开始执行，latency 为入队到执行的耗时
	Delivered(latency time.Duration)
	// Dropped 一条消息被丢弃
	Dropped(reason DropReason)
	// Failed 处理器失败
	Failed(err error)
}

// BusOpt 总线选项函数类型
type BusOpt func(*BusSettings)

// BusSettings 总线设置（导出以供实现使用）
type BusSettings struct {
	// Serialize 订阅默认是否串行
	Serialize bool

	// MaxConcurrency 订阅默认并发上限
	MaxConcurrency int

	// ErrorHandler 处理器失败回调
	ErrorHandler ErrorHandler

	// Observer 观测者
	Observer Observer

	// Clock 时钟（用于计算投递延迟）
	Clock clock.Clock
}

// DefaultSerialize 设置订阅默认串行
func DefaultSerialize(serialize bool) BusOpt {
	return func(s *BusSettings) {
		s.Serialize = serialize
	}
}

// DefaultMaxConcurrency 设置订阅默认并发上限
func DefaultMaxConcurrency(n int) BusOpt {
	return func(s *BusSettings) {
		s.MaxConcurrency = n
	}
}

// WithErrorHandler 设置处理器失败回调
func WithErrorHandler(h ErrorHandler) BusOpt {
	return func(s *BusSettings) {
		s.ErrorHandler = h
	}
}

// WithObserver 设置观测者
func WithObserver(o Observer) BusOpt {
	return func(s *BusSettings) {
		s.Observer = o
	}
}

// WithClock 设置时钟
func WithClock(c clock.Clock) BusOpt {
	return func(s *BusSettings) {
		s.Clock = c
	}
}

// ============================================================================
// 工厂与注册表
// ============================================================================

// BuildFunc 构造某一消息类型的默认事件总线，返回值实现 EventBus[T]
type BuildFunc func(opts ...BusOpt) any

// Factory 事件总线工厂
//
// Go 方法不能携带类型参数，因此工厂以 reflect.Type 标识消息类型，
// 并由注册表提供该类型的 BuildFunc。工厂可以计数、包装或替换构造过程，
// 但返回值必须实现对应的 EventBus[T]。
type Factory interface {
	// Create 构造 messageType 的事件总线
	Create(messageType reflect.Type, build BuildFunc) any
}

// Initializable 具有显式初始化阶段的组件
type Initializable interface {
	// Initialize 初始化，重复调用无副作用
	Initialize()

	// IsInitialized 是否已初始化
	IsInitialized() bool
}
