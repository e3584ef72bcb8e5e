package registry

import "errors"

// ============================================================================
// 错误定义
// ============================================================================

var (
	// ErrNotInitialized 注册表尚未初始化
	ErrNotInitialized = errors.New("event bus registry is not initialized")
	// ErrInvalidName 总线名称为空或全为空白
	ErrInvalidName = errors.New("invalid event bus name")
	// ErrNilFactory 工厂为 nil
	ErrNilFactory = errors.New("event bus factory is nil")
	// ErrFactoryMismatch 工厂返回的值不是所需消息类型的总线
	ErrFactoryMismatch = errors.New("factory returned a bus of the wrong message type")
	// ErrBusUnavailable 工厂此前 panic 或返回 nil，该键没有可用的总线
	ErrBusUnavailable = errors.New("event bus unavailable: factory panicked or returned nil")
)
