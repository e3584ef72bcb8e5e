package registry

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	LC      fx.Lifecycle
	Factory pkgif.Factory
}

// Module 返回 Fx 模块
//
// 注册表在应用启动时初始化。
func Module() fx.Option {
	return fx.Module("registry",
		fx.Provide(ProvideRegistry),
	)
}

// ProvideRegistry 提供注册表
func ProvideRegistry(p Params) (*Registry, error) {
	r, err := New(p.Factory)
	if err != nil {
		return nil, err
	}

	p.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			r.Initialize()
			return nil
		},
	})
	return r, nil
}
