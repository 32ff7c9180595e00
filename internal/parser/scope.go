package parser

import (
	"strconv"
	"strings"
)

// ScopeKind 作用域种类
type ScopeKind int

const (
	ScopeNeutral   ScopeKind = iota // 代码块
	ScopeNamespace                  // scope Name { ... }
	ScopeFunction                   // 函数或构造方法
	ScopeClass                      // 类体
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeNamespace:
		return "namespace"
	case ScopeFunction:
		return "function"
	case ScopeClass:
		return "class"
	}
	return "block"
}

// Scope 词法作用域，只持有父链接，由声明共享
type Scope struct {
	Name   string
	Kind   ScopeKind
	Parent *Scope
	ID     int // 同一次解析内唯一，用于区分同名代码块
}

// GlobalScopeName 全局作用域名称
const GlobalScopeName = "__GLOBAL__"

// NewGlobalScope 创建根作用域
func NewGlobalScope() *Scope {
	return &Scope{Name: GlobalScopeName, Kind: ScopeNeutral}
}

// NewScope 创建子作用域
func NewScope(name string, kind ScopeKind, parent *Scope, id int) *Scope {
	return &Scope{Name: name, Kind: kind, Parent: parent, ID: id}
}

// IsGlobal 是否为根作用域
func (s *Scope) IsGlobal() bool {
	return s.Parent == nil
}

// Key 返回跨模块稳定的作用域标识。
// 命名空间和类按名字链区分，代码块和函数额外带上 ID。
func (s *Scope) Key() string {
	if s == nil || s.IsGlobal() {
		return ""
	}
	name := s.Name
	if s.Kind == ScopeNeutral || s.Kind == ScopeFunction {
		name += "#" + strconv.Itoa(s.ID)
	}
	if parent := s.Parent.Key(); parent != "" {
		return parent + "::" + name
	}
	return name
}

// Same 判断两个作用域是否相同，导入表中的作用域按 Key 比较
func (s *Scope) Same(other *Scope) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return false
	}
	return s.Key() == other.Key()
}

// IsExportable 全局或命名空间作用域中的符号才可能导出
func (s *Scope) IsExportable() bool {
	return s.IsGlobal() || s.Kind == ScopeNamespace
}

// Namespace 返回外层命名空间链，如 "Outer::Inner"，不在命名空间内时为空
func (s *Scope) Namespace() string {
	var parts []string
	for cur := s; cur != nil && !cur.IsGlobal(); cur = cur.Parent {
		if cur.Kind == ScopeNamespace {
			parts = append(parts, cur.Name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "::")
}

// EnclosingFunction 返回最近的函数作用域
func (s *Scope) EnclosingFunction() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == ScopeFunction {
			return cur
		}
	}
	return nil
}

// EnclosingClass 返回最近的类作用域
func (s *Scope) EnclosingClass() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == ScopeClass {
			return cur
		}
	}
	return nil
}

func (s *Scope) String() string {
	if s.IsGlobal() {
		return "global"
	}
	return s.Kind.String() + " " + s.Name
}
