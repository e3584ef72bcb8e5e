// Package eventbus 实现进程内事件总线
//
// 每个 Bus[T] 服务于一种消息类型。每个订阅拥有独立的投递队列，
// 发布者只负责入队，不等待处理器执行。
//
// 特性：
//   - 弱引用订阅：总线不延长订阅者的生命周期
//   - 串行投递（按发布顺序、互不重叠）或有界/无界并发投递
//   - 投递上下文：把处理器调用编组到指定的执行环境
//   - 异步处理器脱离队列执行
//   - 处理器的 panic 与错误被捕获，只交给 ErrorHandler 和 Observer
//
// # 快速开始
//
//	bus := eventbus.NewBus[OrderPlaced]()
//
//	// 弱引用订阅：h 不可达后自动停止投递
//	h := &auditor{}
//	id := eventbus.Subscribe[OrderPlaced](bus, h, eventbus.Serialize(true))
//
//	// 函数订阅：需要显式取消
//	fid := eventbus.SubscribeFunc(bus, func(e OrderPlaced) { ... })
//	defer bus.Unsubscribe(fid)
//
//	bus.Publish(OrderPlaced{ID: 42})
//	bus.Unsubscribe(id)
//
// # 一致性
//
// Publish 对订阅集合做快照。与之并发的 Subscribe 可能收到也可能收不到这条消息；
// 与之并发的 Unsubscribe 之后，已入队的消息仍会投递。
//
// # Fx 模块
//
//	app := fx.New(
//	    eventbus.Module(),
//	    fx.Invoke(func(f pkgif.Factory) { ... }),
//	)
package eventbus
