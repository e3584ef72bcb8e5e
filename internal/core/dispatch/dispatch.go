// Package dispatch 提供事件总线的投递上下文实现
//
//   - Inline: 在投递 goroutine 中直接执行回调
//   - Loop: 在单个所有者 goroutine 中按提交顺序执行回调
//
// Loop 用于把处理器调用编组到某个必须独占访问的状态上，
// 例如只允许单一 goroutine 修改的视图模型或连接对象。
package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-eventbus/internal/util/logger"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

var log = logger.Logger("core/dispatch")

// ============================================================================
//                              Inline
// ============================================================================

// Inline 在调用方 goroutine 中直接执行回调
type Inline struct{}

var _ pkgif.DeliveryContext = Inline{}

// Post 实现 pkgif.DeliveryContext
func (Inline) Post(callback func(state any), state any) {
	callback(state)
}

// ============================================================================
//                              Loop
// ============================================================================

// posted 一次提交
type posted struct {
	callback func(state any)
	state    any
}

// Loop 单一所有者 goroutine 的投递上下文
//
// 回调按 Post 的顺序依次执行，互不重叠。回调 panic 会被记录并跳过。
type Loop struct {
	mu     sync.Mutex
	items  []posted
	closed bool

	wake    chan struct{}
	done    chan struct{}
	running int32

	executed atomic.Uint64
	rejected atomic.Uint64
}

var _ pkgif.DeliveryContext = (*Loop)(nil)

// NewLoop 创建并启动 Loop
func NewLoop() *Loop {
	l := &Loop{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		running: 1,
	}
	go l.loop()
	return l
}

// Post 提交回调
//
// Close 之后提交的回调被丢弃。
func (l *Loop) Post(callback func(state any), state any) {
	if callback == nil {
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.rejected.Add(1)
		return
	}
	l.items = append(l.items, posted{callback: callback, state: state})
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Close 停止接收回调，执行完已提交的回调后返回
//
// 不能在回调中调用。
func (l *Loop) Close() error {
	if !atomic.CompareAndSwapInt32(&l.running, 1, 0) {
		<-l.done
		return nil
	}

	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done

	log.Debug("投递循环已停止", "executed", l.executed.Load(), "rejected", l.rejected.Load())
	return nil
}

// Executed 返回已执行的回调数
func (l *Loop) Executed() uint64 {
	return l.executed.Load()
}

// Rejected 返回 Close 之后被丢弃的回调数
func (l *Loop) Rejected() uint64 {
	return l.rejected.Load()
}

// loop 主循环
func (l *Loop) loop() {
	defer close(l.done)

	for {
		l.mu.Lock()
		batch := l.items
		l.items = nil
		closed := l.closed
		l.mu.Unlock()

		for _, p := range batch {
			l.run(p)
		}

		if len(batch) == 0 {
			if closed {
				return
			}
			<-l.wake
		}
	}
}

// run 执行单个回调
func (l *Loop) run(p posted) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("投递回调 panic", "panic", r)
		}
	}()

	p.callback(p.state)
	l.executed.Add(1)
}
