package eventbus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-eventbus/config"
	"github.com/dep2p/go-eventbus/internal/core/registry"
	"github.com/dep2p/go-eventbus/internal/util/logger"
)

var log = logger.GlobalLogger()

// startTimeout Fx App 启动超时
const startTimeout = 30 * time.Second

// ════════════════════════════════════════════════════════════════════════════
//                              Hub
// ════════════════════════════════════════════════════════════════════════════

// Hub 事件总线入口
//
// Hub 持有一个注册表，按消息类型（及可选名称）惰性创建并缓存总线。
// 启动前获取总线返回 ErrNotInitialized。停止后已获取的总线仍可使用。
type Hub struct {
	mu sync.Mutex

	app      *fx.App
	config   *config.Config
	registry *registry.Registry

	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	started bool
	closed  bool
}

// ════════════════════════════════════════════════════════════════════════════
//                              构造函数
// ════════════════════════════════════════════════════════════════════════════

// New 创建 Hub
//
// 创建但不启动，需要调用 Start。
//
// 示例：
//
//	hub, err := eventbus.New(
//	    eventbus.WithPreset(eventbus.PresetBounded),
//	    eventbus.WithErrorHandler(func(id uint64, err error) { ... }),
//	)
func New(opts ...Option) (*Hub, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	hub := &Hub{config: o.config}
	switch {
	case o.registerer != nil:
		hub.registerer = o.registerer
		if g, ok := o.registerer.(prometheus.Gatherer); ok {
			hub.gatherer = g
		}
	default:
		reg := prometheus.NewRegistry()
		hub.registerer = reg
		hub.gatherer = reg
	}

	app, err := buildFxApp(o, hub)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	hub.app = app

	return hub, nil
}

// Start 快捷启动函数
//
// 等价于 New() + Start()。
func Start(ctx context.Context, opts ...Option) (*Hub, error) {
	hub, err := New(opts...)
	if err != nil {
		return nil, err
	}

	if err := hub.Start(ctx); err != nil {
		return nil, fmt.Errorf("start hub: %w", err)
	}
	return hub, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期管理
// ════════════════════════════════════════════════════════════════════════════

// Start 启动 Hub，初始化注册表
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if h.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := h.app.Start(startCtx); err != nil {
		log.Error("Hub 启动失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}

	h.started = true
	log.Info("Hub 已启动",
		"serialize", h.config.EventBus.SerializeByDefault,
		"maxConcurrency", h.config.EventBus.MaxConcurrency,
		"metrics", h.config.Metrics.Enabled)
	return nil
}

// Stop 停止 Hub
//
// 注册表保持初始化状态，已获取的总线继续工作。
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	if !h.started {
		return ErrNotStarted
	}

	h.started = false
	if err := h.app.Stop(ctx); err != nil {
		log.Error("Hub 停止失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}

	log.Info("Hub 已停止")
	return nil
}

// Close 停止并关闭 Hub，不可再启动
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if !h.started {
		return nil
	}
	h.started = false

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := h.app.Stop(ctx); err != nil {
		return fmt.Errorf("stop fx app: %w", err)
	}

	log.Info("Hub 已关闭")
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              基本信息
// ════════════════════════════════════════════════════════════════════════════

// IsStarted 是否已启动
func (h *Hub) IsStarted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

// Config 返回 Hub 使用的配置副本
func (h *Hub) Config() config.Config {
	return *h.config
}

// Factory 返回 Hub 使用的事件总线工厂
func (h *Hub) Factory() Factory {
	return h.registry.Factory()
}

// Gatherer 返回读取 Hub 指标的 Gatherer
//
// 使用不可读取的外部 Registerer 时返回 nil。
func (h *Hub) Gatherer() prometheus.Gatherer {
	return h.gatherer
}
