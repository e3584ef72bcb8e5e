package eventbus

import (
	"bytes"
	"sync"
	"sync/atomic"
	"time"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

const waitTimeout = 5 * time.Second

// countingObserver 记录所有观测回调
type countingObserver struct {
	subscribed   atomic.Int64
	unsubscribed atomic.Int64
	published    atomic.Int64
	fanout       atomic.Int64
	delivered    atomic.Int64
	collected    atomic.Int64
	completed    atomic.Int64
	failed       atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (o *countingObserver) Subscribed()   { o.subscribed.Add(1) }
func (o *countingObserver) Unsubscribed() { o.unsubscribed.Add(1) }

func (o *countingObserver) Published(fanout int) {
	o.published.Add(1)
	o.fanout.Add(int64(fanout))
}

func (o *countingObserver) Delivered(latency time.Duration) {
	o.delivered.Add(1)
	o.mu.Lock()
	o.latencies = append(o.latencies, latency)
	o.mu.Unlock()
}

func (o *countingObserver) Dropped(reason pkgif.DropReason) {
	switch reason {
	case pkgif.DropCollected:
		o.collected.Add(1)
	case pkgif.DropCompleted:
		o.completed.Add(1)
	}
}

func (o *countingObserver) Failed(error) { o.failed.Add(1) }

func (o *countingObserver) Latencies() []time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]time.Duration(nil), o.latencies...)
}

// recorder 记录收到的消息
type recorder[T any] struct {
	mu  sync.Mutex
	got []T
}

func (r *recorder[T]) Handle(message T) {
	r.mu.Lock()
	r.got = append(r.got, message)
	r.mu.Unlock()
}

func (r *recorder[T]) Messages() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.got...)
}

func (r *recorder[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

// errorSink 收集 ErrorHandler 收到的错误
type errorSink struct {
	mu   sync.Mutex
	ids  []uint64
	errs []error
}

func (s *errorSink) handle(id uint64, err error) {
	s.mu.Lock()
	s.ids = append(s.ids, id)
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *errorSink) Errors() ([]uint64, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint64(nil), s.ids...), append([]error(nil), s.errs...)
}

// countingContext 计数 Post 调用并在调用方直接执行
type countingContext struct {
	posts atomic.Int64
}

func (c *countingContext) Post(callback func(any), state any) {
	c.posts.Add(1)
	callback(state)
}

// panickingContext Post 时 panic
type panickingContext struct{}

func (panickingContext) Post(func(any), any) {
	panic("no owner")
}

// syncBuffer 并发安全的日志缓冲区
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
