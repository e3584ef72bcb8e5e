// Package types 定义 go-eventbus 的公共值类型
//
// 这是最底层的包，不依赖任何其他 go-eventbus 内部包。
//
// # 文件组织
//
//   - name.go - Name（总线名称）、TypeAndName（注册表的命名总线键）
//
// # 值语义
//
// Name 在值不为空白时有效；TypeAndName 在类型非 nil 且名称有效时有效。
// 无效的值与任何值都不相等（Equal），包括它自己。
package types
