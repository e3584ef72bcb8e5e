// Package eventbus 提供进程内的类型化发布/订阅
//
// 生产者发布某种类型的消息，独立注册的处理器异步收到消息，
// 生产者不需要知道有哪些、多少个消费者。
//
// # 核心概念
//
//   - Hub: 入口，持有按消息类型（及可选名称）缓存的事件总线
//   - EventBus[T]: 单一消息类型的总线，每个订阅拥有独立的投递队列
//   - 订阅者: 以弱引用持有，订阅者不可达后消息被静默丢弃
//
// # 快速开始
//
//	hub, err := eventbus.Start(ctx, eventbus.WithPreset(eventbus.PresetOrdered))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer hub.Close()
//
//	orders, err := eventbus.Get[OrderPlaced](hub)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	a := &auditor{}
//	id := eventbus.Subscribe[OrderPlaced](orders, a, eventbus.Serialize(true))
//	defer orders.Unsubscribe(id)
//
//	orders.Publish(OrderPlaced{ID: 42})
//
// # 投递方式
//
//   - Serialize(true): 按发布顺序逐条投递，互不重叠
//   - MaxConcurrency(n): 最多 n 条同时投递
//   - 默认: 每条消息独立并发投递
//   - WithDeliveryContext(dc): 处理器调用经由 dc.Post 执行，例如 NewLoop() 的所有者 goroutine
//
// 处理器的 panic 与错误不会传回发布者，只交给 WithErrorHandler 设置的回调。
//
// # 文件组织
//
//   - hub.go: Hub 构造与生命周期
//   - fx.go: Fx 应用组装
//   - options.go: 用户选项
//   - subscribe.go: 获取总线与订阅函数
//   - types.go: 公共类型别名
//   - errors.go: 错误定义
package eventbus
