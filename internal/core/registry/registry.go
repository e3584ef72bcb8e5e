// Package registry 按消息类型（及可选名称）惰性创建并缓存事件总线
//
// 每个键最多构造一次总线：并发的首次访问者阻塞在同一次构造上，
// 之后所有访问者拿到同一个实例。总线一旦创建不会被移除。
//
//	r, _ := registry.New(eventbus.NewFactory())
//	r.Initialize()
//
//	bus, err := registry.Get[OrderPlaced](r)
//	audit, err := registry.GetNamed[OrderPlaced](r, types.NewName("audit"))
package registry

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-eventbus/internal/core/eventbus"
	"github.com/dep2p/go-eventbus/internal/util/logger"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

var log = logger.Logger("core/registry")

// ============================================================================
// Registry 实现
// ============================================================================

// cell 单个键的总线，最多构造一次
type cell struct {
	once sync.Once
	bus  any
}

func (c *cell) get(create func() any) any {
	c.once.Do(func() {
		c.bus = create()
	})
	return c.bus
}

// tables 初始化时分配的两张表
type tables struct {
	// unnamed reflect.Type -> *cell
	unnamed sync.Map
	// named types.TypeAndName -> *cell
	named sync.Map
}

// Registry 事件总线注册表
type Registry struct {
	factory pkgif.Factory

	initMu sync.Mutex
	tables atomic.Pointer[tables]
}

var _ pkgif.Initializable = (*Registry)(nil)

// New 创建注册表
//
// 注册表在 Initialize 之前不可用。
func New(factory pkgif.Factory) (*Registry, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	return &Registry{factory: factory}, nil
}

// NewDefault 使用默认工厂创建注册表
func NewDefault(opts ...pkgif.BusOpt) *Registry {
	return &Registry{factory: eventbus.NewFactory(opts...)}
}

// Initialize 初始化注册表
//
// 重复调用无副作用，已创建的总线保留。
func (r *Registry) Initialize() {
	if r.tables.Load() != nil {
		return
	}

	r.initMu.Lock()
	defer r.initMu.Unlock()

	if r.tables.Load() != nil {
		return
	}
	r.tables.Store(&tables{})

	log.Debug("注册表已初始化")
}

// IsInitialized 是否已初始化
func (r *Registry) IsInitialized() bool {
	return r.tables.Load() != nil
}

// Factory 返回注册表使用的工厂
func (r *Registry) Factory() pkgif.Factory {
	return r.factory
}

// loaded 返回已初始化的表
func (r *Registry) loaded() (*tables, error) {
	t := r.tables.Load()
	if t == nil {
		return nil, ErrNotInitialized
	}
	return t, nil
}

// ============================================================================
// 获取总线
// ============================================================================

// Get 返回消息类型 T 的默认总线，首次访问时创建
func Get[T any](r *Registry) (pkgif.EventBus[T], error) {
	t, err := r.loaded()
	if err != nil {
		return nil, err
	}

	typ := reflect.TypeFor[T]()
	return resolve[T](r, &t.unnamed, typ, typ)
}

// GetNamed 返回消息类型 T 下名为 name 的总线，首次访问时创建
//
// 同一类型的不同名称对应不同总线；命名总线与默认总线相互独立。
func GetNamed[T any](r *Registry, name types.Name) (pkgif.EventBus[T], error) {
	t, err := r.loaded()
	if err != nil {
		return nil, err
	}
	if !name.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name.Value())
	}

	key := types.TypeAndNameFor[T](name)
	return resolve[T](r, &t.named, key, key.Type())
}

// resolve 取出或构造 key 对应的总线
func resolve[T any](r *Registry, m *sync.Map, key any, typ reflect.Type) (pkgif.EventBus[T], error) {
	v, ok := m.Load(key)
	if !ok {
		v, _ = m.LoadOrStore(key, new(cell))
	}

	created := false
	bus := v.(*cell).get(func() any {
		created = true
		return r.factory.Create(typ, eventbus.Builder[T]())
	})

	if bus == nil {
		return nil, fmt.Errorf("%w: %v", ErrBusUnavailable, key)
	}
	eb, ok := bus.(pkgif.EventBus[T])
	if !ok {
		return nil, fmt.Errorf("%w: want EventBus[%s], got %T", ErrFactoryMismatch, typ, bus)
	}
	if created {
		log.Debug("事件总线已创建", "key", key)
	}
	return eb, nil
}
