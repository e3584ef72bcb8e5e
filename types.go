package eventbus

import (
	"github.com/dep2p/go-eventbus/internal/core/dispatch"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              公共类型
// ════════════════════════════════════════════════════════════════════════════

type (
	// EventBus 单一消息类型的事件总线
	EventBus[T any] = pkgif.EventBus[T]

	// Handler 同步消息处理器
	Handler[T any] = pkgif.Handler[T]

	// AsyncHandler 异步消息处理器
	AsyncHandler[T any] = pkgif.AsyncHandler[T]

	// HandlerRef 订阅者引用
	HandlerRef[T any] = pkgif.HandlerRef[T]

	// DeliveryContext 投递上下文
	DeliveryContext = pkgif.DeliveryContext

	// SubscribeOpt 订阅选项
	SubscribeOpt = pkgif.SubscribeOpt

	// BusOpt 总线选项
	BusOpt = pkgif.BusOpt

	// ErrorHandler 处理器失败回调
	ErrorHandler = pkgif.ErrorHandler

	// Factory 事件总线工厂
	Factory = pkgif.Factory

	// Name 总线名称
	Name = types.Name

	// Loop 单一所有者 goroutine 的投递上下文
	Loop = dispatch.Loop
)

// NewName 创建总线名称
func NewName(value string) Name {
	return types.NewName(value)
}

// NewLoop 创建并启动投递循环，用完后调用 Close
func NewLoop() *Loop {
	return dispatch.NewLoop()
}

// Inline 在投递 goroutine 中直接执行的投递上下文
var Inline DeliveryContext = dispatch.Inline{}
