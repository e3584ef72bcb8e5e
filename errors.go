package eventbus

import (
	"errors"

	coreeventbus "github.com/dep2p/go-eventbus/internal/core/eventbus"
	"github.com/dep2p/go-eventbus/internal/core/registry"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// Hub 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted Hub 未启动
	ErrNotStarted = errors.New("hub not started")

	// ErrAlreadyStarted Hub 已启动
	ErrAlreadyStarted = errors.New("hub already started")

	// ErrHubClosed Hub 已关闭
	ErrHubClosed = errors.New("hub closed")

	// ────────────────────────────────────────────────────────────────────────
	// 注册表错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotInitialized 注册表尚未初始化（Hub 从未启动）
	ErrNotInitialized = registry.ErrNotInitialized

	// ErrInvalidName 总线名称为空或全为空白
	ErrInvalidName = registry.ErrInvalidName

	// ErrNilFactory 工厂为 nil
	ErrNilFactory = registry.ErrNilFactory

	// ErrFactoryMismatch 工厂返回的值不是所需消息类型的总线
	ErrFactoryMismatch = registry.ErrFactoryMismatch

	// ErrBusUnavailable 工厂此前 panic 或返回 nil
	ErrBusUnavailable = registry.ErrBusUnavailable

	// ────────────────────────────────────────────────────────────────────────
	// 投递错误（交给 ErrorHandler）
	// ────────────────────────────────────────────────────────────────────────

	// ErrHandlerPanic 处理器发生 panic
	ErrHandlerPanic = coreeventbus.ErrHandlerPanic

	// ErrDeliveryPanic 投递上下文 Post 发生 panic
	ErrDeliveryPanic = coreeventbus.ErrDeliveryPanic
)
