package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-eventbus/internal/util/logger"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// 接口契约测试
// ============================================================================

// TestBus_ImplementsInterface 验证 Bus 实现接口
func TestBus_ImplementsInterface(t *testing.T) {
	var _ pkgif.EventBus[int] = (*Bus[int])(nil)
	var _ pkgif.EventBus[fmt.Stringer] = NewBus[fmt.Stringer]()
}

// ============================================================================
// 订阅 ID
// ============================================================================

// TestBus_SubscribeIDs 测试订阅 ID 从 1 开始严格递增
func TestBus_SubscribeIDs(t *testing.T) {
	bus := NewBus[int]()

	var last uint64
	seen := make(map[uint64]bool)
	for i := 0; i < 50; i++ {
		id := SubscribeFunc(bus, func(int) {})
		assert.Greater(t, id, last)
		assert.False(t, seen[id])
		seen[id] = true
		last = id
	}
	assert.Equal(t, uint64(50), last)
	assert.Equal(t, 50, bus.Len())
}

// TestBus_SubscribeIDs_NotReused 测试取消后 ID 不复用
func TestBus_SubscribeIDs_NotReused(t *testing.T) {
	bus := NewBus[int]()

	first := SubscribeFunc(bus, func(int) {})
	require.True(t, bus.Unsubscribe(first))

	second := SubscribeFunc(bus, func(int) {})
	assert.Greater(t, second, first)
}

// TestBus_SubscribeNil 测试空订阅者返回 0
func TestBus_SubscribeNil(t *testing.T) {
	bus := NewBus[int]()

	assert.Zero(t, bus.SubscribeRef(nil))
	assert.Zero(t, SubscribeFunc[int](bus, nil))
	assert.Zero(t, SubscribeAsyncFunc[int](bus, nil))

	var h *recorder[int]
	assert.Zero(t, Subscribe[int](bus, h))
	assert.Zero(t, bus.Len())
	assert.False(t, bus.Unsubscribe(0))
}

// ============================================================================
// 取消订阅
// ============================================================================

// TestBus_UnsubscribeOnce 测试同一 ID 只有第一次取消返回 true
func TestBus_UnsubscribeOnce(t *testing.T) {
	obs := &countingObserver{}
	bus := NewBus[int](WithObserver(obs))

	id := SubscribeFunc(bus, func(int) {})
	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id+100))
	assert.Zero(t, bus.Len())

	assert.Equal(t, int64(1), obs.subscribed.Load())
	assert.Equal(t, int64(1), obs.unsubscribed.Load())
}

// TestBus_UnsubscribeConcurrent 测试并发取消只有一个成功
func TestBus_UnsubscribeConcurrent(t *testing.T) {
	bus := NewBus[int]()
	id := SubscribeFunc(bus, func(int) {})

	var wins atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if bus.Unsubscribe(id) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load())
}

// TestBus_UnsubscribeDuringDelivery 测试投递中取消：已入队的消息投递完毕，之后不再接收
func TestBus_UnsubscribeDuringDelivery(t *testing.T) {
	obs := &countingObserver{}
	bus := NewBus[int](WithObserver(obs))

	started := make(chan struct{})
	release := make(chan struct{})
	rec := &recorder[int]{}
	id := SubscribeFunc(bus, func(n int) {
		if n == 1 {
			close(started)
			<-release
		}
		rec.Handle(n)
	}, Serialize(true))

	q, ok := bus.queue(id)
	require.True(t, ok)

	bus.Publish(1)
	<-started
	bus.Publish(2)
	bus.Publish(3)

	require.True(t, bus.Unsubscribe(id))
	bus.Publish(4)
	close(release)

	select {
	case <-q.Done():
	case <-time.After(waitTimeout):
		t.Fatal("queue did not finish")
	}
	assert.Equal(t, []int{1, 2, 3}, rec.Messages())
	// 取消后发布时订阅已不在快照中
	assert.Zero(t, obs.completed.Load())
}

// ============================================================================
// 发布与投递
// ============================================================================

// TestBus_PublishSync 测试同步处理器收到消息
func TestBus_PublishSync(t *testing.T) {
	bus := NewBus[string]()

	got := make(chan string, 1)
	SubscribeFunc(bus, func(s string) { got <- s })

	bus.Publish("hello")

	select {
	case s := <-got:
		assert.Equal(t, "hello", s)
	case <-time.After(waitTimeout):
		t.Fatal("message not delivered")
	}
}

// TestBus_PublishAsync 测试异步处理器收到消息
func TestBus_PublishAsync(t *testing.T) {
	bus := NewBus[int]()

	got := make(chan int, 1)
	SubscribeAsyncFunc(bus, func(_ context.Context, n int) error {
		got <- n
		return nil
	})

	bus.Publish(7)

	select {
	case n := <-got:
		assert.Equal(t, 7, n)
	case <-time.After(waitTimeout):
		t.Fatal("message not delivered")
	}
}

// TestBus_PublishNoSubscribers 测试无订阅者时发布
func TestBus_PublishNoSubscribers(t *testing.T) {
	obs := &countingObserver{}
	bus := NewBus[int](WithObserver(obs))

	assert.NotPanics(t, func() { bus.Publish(1) })
	assert.Equal(t, int64(1), obs.published.Load())
	assert.Zero(t, obs.fanout.Load())
}

// TestBus_PublishFanout 测试每个订阅各收到一次
func TestBus_PublishFanout(t *testing.T) {
	bus := NewBus[int]()

	recs := make([]*recorder[int], 5)
	for i := range recs {
		recs[i] = &recorder[int]{}
		Subscribe[int](bus, recs[i])
	}

	bus.Publish(9)

	for _, rec := range recs {
		require.Eventually(t, func() bool { return rec.Len() == 1 }, waitTimeout, time.Millisecond)
		assert.Equal(t, []int{9}, rec.Messages())
	}
}

// TestBus_Covariance 测试接口类型的总线接收任意实现
func TestBus_Covariance(t *testing.T) {
	bus := NewBus[fmt.Stringer]()

	rec := &recorder[fmt.Stringer]{}
	Subscribe[fmt.Stringer](bus, rec, Serialize(true))

	bus.Publish(time.Second)
	bus.Publish(hostname("10.0.0.1"))

	require.Eventually(t, func() bool { return rec.Len() == 2 }, waitTimeout, time.Millisecond)
	got := rec.Messages()
	assert.Equal(t, "1s", got[0].String())
	assert.Equal(t, "10.0.0.1", got[1].String())
}

type hostname string

func (n hostname) String() string { return string(n) }

// ============================================================================
// 串行与并发
// ============================================================================

// TestBus_SerializeOrder 测试串行模式按发布顺序且不重叠
func TestBus_SerializeOrder(t *testing.T) {
	bus := NewBus[int]()

	const n = 500
	var inflight atomic.Int32
	var overlapped atomic.Bool
	rec := &recorder[int]{}
	SubscribeFunc(bus, func(v int) {
		if inflight.Add(1) > 1 {
			overlapped.Store(true)
		}
		rec.Handle(v)
		inflight.Add(-1)
	}, Serialize(true))

	want := make([]int, n)
	for i := 0; i < n; i++ {
		want[i] = i
		bus.Publish(i)
	}

	require.Eventually(t, func() bool { return rec.Len() == n }, waitTimeout, time.Millisecond)
	assert.Equal(t, want, rec.Messages())
	assert.False(t, overlapped.Load())
}

// TestBus_DefaultSerialize 测试总线级默认串行
func TestBus_DefaultSerialize(t *testing.T) {
	bus := NewBus[int](pkgif.DefaultSerialize(true))

	q, ok := bus.queue(SubscribeFunc(bus, func(int) {}))
	require.True(t, ok)
	assert.Equal(t, 1, q.degree)

	q, ok = bus.queue(SubscribeFunc(bus, func(int) {}, Serialize(false)))
	require.True(t, ok)
	assert.Equal(t, -1, q.degree)
}

// TestBus_Unbounded 测试非串行模式并发投递
func TestBus_Unbounded(t *testing.T) {
	bus := NewBus[int]()

	const n = 8
	var arrived sync.WaitGroup
	arrived.Add(n)
	release := make(chan struct{})
	var done atomic.Int32
	SubscribeFunc(bus, func(int) {
		arrived.Done()
		<-release
		done.Add(1)
	}, Serialize(false))

	for i := 0; i < n; i++ {
		bus.Publish(i)
	}

	// 所有处理器同时在执行，否则 Wait 不会返回
	waitGroup(t, &arrived)
	close(release)
	require.Eventually(t, func() bool { return done.Load() == n }, waitTimeout, time.Millisecond)
}

// TestBus_MaxConcurrency 测试并发上限
func TestBus_MaxConcurrency(t *testing.T) {
	bus := NewBus[int]()

	const limit = 3
	var inflight, peak atomic.Int32
	release := make(chan struct{})
	var done atomic.Int32
	SubscribeFunc(bus, func(int) {
		cur := inflight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		<-release
		inflight.Add(-1)
		done.Add(1)
	}, MaxConcurrency(limit))

	for i := 0; i < 10; i++ {
		bus.Publish(i)
	}

	require.Eventually(t, func() bool { return inflight.Load() == limit }, waitTimeout, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(limit), peak.Load())

	close(release)
	require.Eventually(t, func() bool { return done.Load() == 10 }, waitTimeout, time.Millisecond)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
}

// ============================================================================
// 失败处理
// ============================================================================

// TestBus_HandlerPanic 测试处理器 panic 被捕获并上报
func TestBus_HandlerPanic(t *testing.T) {
	obs := &countingObserver{}
	sink := &errorSink{}
	bus := NewBus[int](WithObserver(obs), WithErrorHandler(sink.handle))

	rec := &recorder[int]{}
	id := SubscribeFunc(bus, func(n int) {
		if n == 1 {
			panic("boom")
		}
		rec.Handle(n)
	}, Serialize(true))

	assert.NotPanics(t, func() {
		bus.Publish(1)
		bus.Publish(2)
	})

	require.Eventually(t, func() bool { return rec.Len() == 1 }, waitTimeout, time.Millisecond)
	ids, errs := sink.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, id, ids[0])
	assert.ErrorIs(t, errs[0], ErrHandlerPanic)
	assert.Contains(t, errs[0].Error(), "boom")
	assert.Equal(t, int64(1), obs.failed.Load())
}

// TestBus_AsyncError 测试异步处理器的错误被上报
func TestBus_AsyncError(t *testing.T) {
	sink := &errorSink{}
	bus := NewBus[int](WithErrorHandler(sink.handle))

	errBad := errors.New("bad message")
	id := SubscribeAsyncFunc(bus, func(_ context.Context, n int) error {
		if n < 0 {
			return errBad
		}
		return nil
	})

	bus.Publish(1)
	bus.Publish(-1)

	require.Eventually(t, func() bool {
		_, errs := sink.Errors()
		return len(errs) == 1
	}, waitTimeout, time.Millisecond)

	ids, errs := sink.Errors()
	assert.Equal(t, id, ids[0])
	assert.ErrorIs(t, errs[0], errBad)
}

// TestBus_ErrorHandlerPanic 测试错误回调 panic 不影响后续投递
func TestBus_ErrorHandlerPanic(t *testing.T) {
	bus := NewBus[int](WithErrorHandler(func(uint64, error) { panic("handler of handler") }))

	rec := &recorder[int]{}
	SubscribeFunc(bus, func(n int) {
		if n == 0 {
			panic("first")
		}
		rec.Handle(n)
	}, Serialize(true))

	bus.Publish(0)
	bus.Publish(1)

	require.Eventually(t, func() bool { return rec.Len() == 1 }, waitTimeout, time.Millisecond)
}

// TestBus_FailureNotLogged 测试处理器失败只交给回调和观测器，不写日志
func TestBus_FailureNotLogged(t *testing.T) {
	out := &syncBuffer{}
	logger.SetOutput(out)
	logger.SetLevel(subsystem, slog.LevelDebug)
	t.Cleanup(func() {
		logger.SetLevel(subsystem, logger.ConfigFromEnv().LevelForSubsystem(subsystem))
		logger.SetOutput(os.Stderr)
	})

	obs := &countingObserver{}
	sink := &errorSink{}
	bus := NewBus[int](WithObserver(obs), WithErrorHandler(sink.handle))

	SubscribeAsyncFunc(bus, func(context.Context, int) error {
		return errors.New("quota-exceeded")
	})
	SubscribeFunc(bus, func(int) { panic("ledger-corrupt") })

	bus.Publish(1)

	require.Eventually(t, func() bool {
		_, errs := sink.Errors()
		return len(errs) == 2
	}, waitTimeout, time.Millisecond)
	assert.Equal(t, int64(2), obs.failed.Load())

	logs := out.String()
	assert.Contains(t, logs, "订阅已注册")
	assert.NotContains(t, logs, "quota-exceeded")
	assert.NotContains(t, logs, "ledger-corrupt")
}

// ============================================================================
// 投递上下文
// ============================================================================

// TestBus_DeliveryContext 测试处理器调用经由投递上下文
func TestBus_DeliveryContext(t *testing.T) {
	bus := NewBus[int]()

	dc := &countingContext{}
	rec := &recorder[int]{}
	Subscribe[int](bus, rec, WithDeliveryContext(dc), Serialize(true))

	for i := 0; i < 3; i++ {
		bus.Publish(i)
	}

	require.Eventually(t, func() bool { return rec.Len() == 3 }, waitTimeout, time.Millisecond)
	assert.Equal(t, int64(3), dc.posts.Load())
	assert.Equal(t, []int{0, 1, 2}, rec.Messages())
}

// TestBus_DeliveryContextPanic 测试投递上下文 panic 被上报
func TestBus_DeliveryContextPanic(t *testing.T) {
	sink := &errorSink{}
	bus := NewBus[int](WithErrorHandler(sink.handle))

	SubscribeFunc(bus, func(int) {}, WithDeliveryContext(panickingContext{}))
	bus.Publish(1)

	require.Eventually(t, func() bool {
		_, errs := sink.Errors()
		return len(errs) == 1
	}, waitTimeout, time.Millisecond)
	_, errs := sink.Errors()
	assert.ErrorIs(t, errs[0], ErrDeliveryPanic)
}

// TestBus_WithContext 测试异步处理器收到订阅的基础上下文
func TestBus_WithContext(t *testing.T) {
	bus := NewBus[int]()

	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "tenant-a")

	got := make(chan any, 1)
	SubscribeAsyncFunc(bus, func(ctx context.Context, _ int) error {
		got <- ctx.Value(key{})
		return nil
	}, WithContext(ctx))

	bus.Publish(1)

	select {
	case v := <-got:
		assert.Equal(t, "tenant-a", v)
	case <-time.After(waitTimeout):
		t.Fatal("message not delivered")
	}
}

// ============================================================================
// 观测
// ============================================================================

// TestBus_DeliveryLatency 测试投递延迟按总线时钟计算
func TestBus_DeliveryLatency(t *testing.T) {
	mock := clock.NewMock()
	obs := &countingObserver{}
	bus := NewBus[int](WithClock(mock), WithObserver(obs))

	started := make(chan struct{})
	release := make(chan struct{})
	var done atomic.Int32
	SubscribeFunc(bus, func(n int) {
		if n == 1 {
			close(started)
			<-release
		}
		done.Add(1)
	}, Serialize(true))

	bus.Publish(1)
	<-started
	bus.Publish(2)
	mock.Add(5 * time.Second)
	close(release)

	require.Eventually(t, func() bool { return done.Load() == 2 }, waitTimeout, time.Millisecond)
	assert.Equal(t, []time.Duration{0, 5 * time.Second}, obs.Latencies())
}

// TestBus_ID 测试总线实例标识
func TestBus_ID(t *testing.T) {
	a, b := NewBus[int](), NewBus[int]()

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func waitGroup(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting")
	}
}
