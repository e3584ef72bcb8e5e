package eventbus

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// NopObserver
// ============================================================================

// NopObserver 不做任何事的观测者
type NopObserver struct{}

var _ pkgif.Observer = NopObserver{}

func (NopObserver) Subscribed()              {}
func (NopObserver) Unsubscribed()            {}
func (NopObserver) Published(int)            {}
func (NopObserver) Delivered(time.Duration)  {}
func (NopObserver) Dropped(pkgif.DropReason) {}
func (NopObserver) Failed(error)             {}

// ============================================================================
// Prometheus 指标
// ============================================================================

// Metrics 事件总线的 Prometheus 指标
//
// 所有指标带 type 标签（消息类型）。丢弃计数额外带 reason 标签。
type Metrics struct {
	subscriptions *prometheus.GaugeVec
	published     *prometheus.CounterVec
	fanout        *prometheus.CounterVec
	delivered     *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	dropped       *prometheus.CounterVec
	failed        *prometheus.CounterVec
}

// NewMetrics 创建并注册指标
//
// reg 为 nil 时指标不注册到任何 Registerer，仍可通过 testutil 读取。
// 同一 Registerer 上已注册的同名指标被复用，多个实例共享计数。
// 同名但定义不同的指标返回错误。
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	const subsystem = "eventbus"

	m := &Metrics{
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "subscriptions",
			Help:      "Number of active subscriptions.",
		}, []string{"type"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "published_total",
			Help:      "Total number of published messages.",
		}, []string{"type"}),
		fanout: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "enqueued_total",
			Help:      "Total number of messages posted to subscription queues.",
		}, []string{"type"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "delivered_total",
			Help:      "Total number of handler invocations.",
		}, []string{"type"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "delivery_latency_seconds",
			Help:      "Time from enqueue to handler invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dropped_total",
			Help:      "Total number of dropped messages.",
		}, []string{"type", "reason"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handler_failures_total",
			Help:      "Total number of handler errors and panics.",
		}, []string{"type"}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.subscriptions, err = register(reg, m.subscriptions); err != nil {
		return nil, err
	}
	if m.published, err = register(reg, m.published); err != nil {
		return nil, err
	}
	if m.fanout, err = register(reg, m.fanout); err != nil {
		return nil, err
	}
	if m.delivered, err = register(reg, m.delivered); err != nil {
		return nil, err
	}
	if m.latency, err = register(reg, m.latency); err != nil {
		return nil, err
	}
	if m.dropped, err = register(reg, m.dropped); err != nil {
		return nil, err
	}
	if m.failed, err = register(reg, m.failed); err != nil {
		return nil, err
	}
	return m, nil
}

// register 注册 c，已存在同名指标时返回已注册的实例
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register metrics: %w", err)
}

// For 返回绑定到消息类型的观测者
func (m *Metrics) For(messageType reflect.Type) pkgif.Observer {
	label := "<nil>"
	if messageType != nil {
		label = messageType.String()
	}
	return &typeObserver{m: m, label: label}
}

// typeObserver 绑定 type 标签的观测者
type typeObserver struct {
	m     *Metrics
	label string
}

func (o *typeObserver) Subscribed() {
	o.m.subscriptions.WithLabelValues(o.label).Inc()
}

func (o *typeObserver) Unsubscribed() {
	o.m.subscriptions.WithLabelValues(o.label).Dec()
}

func (o *typeObserver) Published(fanout int) {
	o.m.published.WithLabelValues(o.label).Inc()
	o.m.fanout.WithLabelValues(o.label).Add(float64(fanout))
}

func (o *typeObserver) Delivered(latency time.Duration) {
	o.m.delivered.WithLabelValues(o.label).Inc()
	o.m.latency.WithLabelValues(o.label).Observe(latency.Seconds())
}

func (o *typeObserver) Dropped(reason pkgif.DropReason) {
	o.m.dropped.WithLabelValues(o.label, string(reason)).Inc()
}

func (o *typeObserver) Failed(error) {
	o.m.failed.WithLabelValues(o.label).Inc()
}
