// Package interfaces 定义 go-eventbus 的公共接口
//
// # 文件组织
//
//   - eventbus.go - 处理器、订阅者引用、投递上下文、EventBus[T]、
//     订阅与总线选项、观测接口、工厂
//
// # 实现位置
//
//   - EventBus[T]、Factory: internal/core/eventbus
//   - DeliveryContext: internal/core/dispatch
//   - Initializable: internal/core/registry
//
// 选项采用函数式选项模式，设置结构体导出以供实现读取。
package interfaces
