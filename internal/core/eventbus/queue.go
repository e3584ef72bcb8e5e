package eventbus

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"
)

// queued 队列中的一条消息
type queued[T any] struct {
	message  T
	enqueued time.Time
}

// dispatchQueue 单个订阅的投递队列
//
// 无界 FIFO。有待处理消息时才启动 worker goroutine，队列排空后 worker 退出，
// 因此空闲或被遗弃的订阅不占用 goroutine。
//
// 并发度：
//   - 1：worker 内串行调用，严格按入队顺序
//   - N：每条消息一个 goroutine，最多 N 个同时执行
//   - -1：每条消息一个 goroutine，不限制
type dispatchQueue[T any] struct {
	mu      sync.Mutex
	items   []queued[T]
	running bool // 是否有 worker 正在排空队列
	closed  bool // complete 之后不再接收消息

	degree  int
	deliver func(queued[T])
	group   errgroup.Group
	clock   clock.Clock
	done    chan struct{}
}

func newDispatchQueue[T any](degree int, clk clock.Clock, deliver func(queued[T])) *dispatchQueue[T] {
	q := &dispatchQueue[T]{
		degree:  degree,
		deliver: deliver,
		clock:   clk,
		done:    make(chan struct{}),
	}
	if degree > 1 {
		q.group.SetLimit(degree)
	}
	return q
}

// post 入队一条消息，队列已完成时返回 false
func (q *dispatchQueue[T]) post(message T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, queued[T]{message: message, enqueued: q.clock.Now()})
	if !q.running {
		q.running = true
		go q.drain()
	}
	return true
}

// drain 排空队列，队列为空时退出
func (q *dispatchQueue[T]) drain() {
	for {
		q.mu.Lock()
		batch := q.items
		q.items = nil
		if len(batch) == 0 {
			q.running = false
			closed := q.closed
			q.mu.Unlock()

			if closed {
				q.finish()
			}
			return
		}
		q.mu.Unlock()

		for _, item := range batch {
			if q.degree == 1 {
				q.deliver(item)
				continue
			}
			// 达到并发上限时阻塞的是 worker，而不是发布者
			q.group.Go(func() error {
				q.deliver(item)
				return nil
			})
		}
	}
}

// complete 停止接收新消息
//
// 已入队的消息和正在执行的投递会继续完成，全部结束后 Done 关闭。
func (q *dispatchQueue[T]) complete() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	idle := !q.running
	q.mu.Unlock()

	if idle {
		q.finish()
	}
}

// finish 在 closed 且 worker 退出后调用，恰好一次
func (q *dispatchQueue[T]) finish() {
	if q.degree == 1 {
		close(q.done)
		return
	}
	go func() {
		_ = q.group.Wait()
		close(q.done)
	}()
}

// Done 返回队列完成信号
func (q *dispatchQueue[T]) Done() <-chan struct{} {
	return q.done
}
