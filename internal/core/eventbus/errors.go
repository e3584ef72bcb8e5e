package eventbus

import "errors"

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrHandlerPanic 处理器发生 panic
	ErrHandlerPanic = errors.New("eventbus: handler panicked")
	// ErrDeliveryPanic 投递上下文 Post 发生 panic
	ErrDeliveryPanic = errors.New("eventbus: delivery context panicked")
)
