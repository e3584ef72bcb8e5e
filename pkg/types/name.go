package types

import (
	"fmt"
	"reflect"
	"strings"
)

// ============================================================================
//                              Name - 总线名称
// ============================================================================

// Name 命名事件总线的名称
//
// Name 是值类型，可以直接作为 map 键使用。
// 值为空或只包含空白字符的 Name 无效，注册表的命名访问器会拒绝它。
type Name struct {
	value string
	valid bool
}

// NewName 创建 Name
func NewName(value string) Name {
	return Name{
		value: value,
		valid: strings.TrimSpace(value) != "",
	}
}

// Value 返回原始名称
func (n Name) Value() string {
	return n.value
}

// IsValid 检查名称是否有效
func (n Name) IsValid() bool {
	return n.valid
}

// Equal 比较两个 Name
//
// 任一方无效时返回 false（包括与自身比较）。
func (n Name) Equal(other Name) bool {
	if !n.valid || !other.valid {
		return false
	}
	return n.value == other.value
}

// String 实现 fmt.Stringer
func (n Name) String() string {
	return n.value
}

// ============================================================================
//                              TypeAndName - 类型与名称组合键
// ============================================================================

// TypeAndName 消息类型与名称的组合键
//
// 用作命名事件总线的注册表键。
type TypeAndName struct {
	typ  reflect.Type
	name Name
}

// NewTypeAndName 创建 TypeAndName
func NewTypeAndName(typ reflect.Type, name Name) TypeAndName {
	return TypeAndName{typ: typ, name: name}
}

// TypeAndNameFor 以类型参数 T 创建 TypeAndName
func TypeAndNameFor[T any](name Name) TypeAndName {
	return NewTypeAndName(reflect.TypeFor[T](), name)
}

// Type 返回消息类型
func (k TypeAndName) Type() reflect.Type {
	return k.typ
}

// Name 返回名称
func (k TypeAndName) Name() Name {
	return k.name
}

// IsValid 类型非空且名称有效
func (k TypeAndName) IsValid() bool {
	return k.typ != nil && k.name.IsValid()
}

// Equal 比较两个 TypeAndName，任一方无效时返回 false
func (k TypeAndName) Equal(other TypeAndName) bool {
	if !k.IsValid() || !other.IsValid() {
		return false
	}
	return k.typ == other.typ && k.name.Equal(other.name)
}

// String 实现 fmt.Stringer，格式为 "<类型>-<名称>"
func (k TypeAndName) String() string {
	if k.typ == nil {
		return fmt.Sprintf("-%s", k.name.value)
	}
	return fmt.Sprintf("%s-%s", k.typ.String(), k.name.value)
}
