package eventbus

import (
	"context"
	"unsafe"
	"weak"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// 弱引用
// ============================================================================

// weakRef 同步订阅者的弱引用
type weakRef[T any, S any, P interface {
	*S
	pkgif.Handler[T]
}] struct {
	ptr weak.Pointer[S]
}

func (r weakRef[T, S, P]) Resolve() (pkgif.InvokeFunc[T], bool) {
	s := r.ptr.Value()
	if s == nil {
		return nil, false
	}
	h := P(s)
	return func(_ context.Context, message T) error {
		h.Handle(message)
		return nil
	}, true
}

func (weakRef[T, S, P]) Async() bool { return false }

// weakAsyncRef 异步订阅者的弱引用
type weakAsyncRef[T any, S any, P interface {
	*S
	pkgif.AsyncHandler[T]
}] struct {
	ptr weak.Pointer[S]
}

func (r weakAsyncRef[T, S, P]) Resolve() (pkgif.InvokeFunc[T], bool) {
	s := r.ptr.Value()
	if s == nil {
		return nil, false
	}
	return P(s).HandleAsync, true
}

func (weakAsyncRef[T, S, P]) Async() bool { return true }

// WeakRef 以弱引用包装同步订阅者
//
// 总线不延长订阅者的生命周期。订阅者被回收后，后续消息被静默丢弃。
// 零大小类型的订阅者没有可回收的状态，按强引用持有。
func WeakRef[T any, S any, P interface {
	*S
	pkgif.Handler[T]
}](subscriber P) pkgif.HandlerRef[T] {
	if zeroSized[S]() {
		return StrongRef[T](subscriber)
	}
	return weakRef[T, S, P]{ptr: weak.Make((*S)(subscriber))}
}

// WeakAsyncRef 以弱引用包装异步订阅者
func WeakAsyncRef[T any, S any, P interface {
	*S
	pkgif.AsyncHandler[T]
}](subscriber P) pkgif.HandlerRef[T] {
	if zeroSized[S]() {
		return StrongAsyncRef[T](subscriber)
	}
	return weakAsyncRef[T, S, P]{ptr: weak.Make((*S)(subscriber))}
}

// zeroSized 报告 S 是否为零大小类型
//
// 零大小对象共享同一地址，weak.Make 不接受这样的指针。
func zeroSized[S any]() bool {
	var s S
	return unsafe.Sizeof(s) == 0
}

// ============================================================================
// 强引用
// ============================================================================

// strongRef 强引用，始终可解析
type strongRef[T any] struct {
	invoke pkgif.InvokeFunc[T]
	async  bool
}

func (r strongRef[T]) Resolve() (pkgif.InvokeFunc[T], bool) { return r.invoke, true }

func (r strongRef[T]) Async() bool { return r.async }

// StrongRef 以强引用包装同步处理器，订阅期间处理器保持可达
func StrongRef[T any](h pkgif.Handler[T]) pkgif.HandlerRef[T] {
	return strongRef[T]{invoke: func(_ context.Context, message T) error {
		h.Handle(message)
		return nil
	}}
}

// StrongAsyncRef 以强引用包装异步处理器
func StrongAsyncRef[T any](h pkgif.AsyncHandler[T]) pkgif.HandlerRef[T] {
	return strongRef[T]{invoke: h.HandleAsync, async: true}
}
