package symbol

import (
	"errors"

	"github.com/tangzhangming/starbytes/internal/parser"
)

// EntryKind 符号种类，数值与接口文件中的记录标签一致
type EntryKind byte

const (
	EntryVar       EntryKind = 0x01
	EntryFunction  EntryKind = 0x02
	EntryClass     EntryKind = 0x03
	EntryInterface EntryKind = 0x04
	EntryScope     EntryKind = 0x05 // 命名空间，只存在于内存中的表
)

func (k EntryKind) String() string {
	switch k {
	case EntryVar:
		return "variable"
	case EntryFunction:
		return "function"
	case EntryClass:
		return "class"
	case EntryInterface:
		return "interface"
	case EntryScope:
		return "scope"
	}
	return "unknown"
}

// Param 函数参数
type Param struct {
	Name string
	Type *parser.Type
}

// FuncInfo 函数签名
type FuncInfo struct {
	Generics []string
	Params   []Param
	Return   *parser.Type
}

// Type 返回函数类型 (P1,P2) Ret
func (f *FuncInfo) Type() *parser.Type {
	params := make([]*parser.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	ret := f.Return
	if ret == nil {
		ret = parser.VoidType
	}
	return parser.FuncOf(params, ret)
}

// ClassInfo 类或接口的成员信息
type ClassInfo struct {
	Generics     []string
	Fields       []*Entry
	Methods      []*Entry
	Constructors []*FuncInfo
}

// Field 按名字查找字段
func (c *ClassInfo) Field(name string) *Entry {
	for _, f := range c.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Method 按名字查找方法
func (c *ClassInfo) Method(name string) *Entry {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Constructor 按参数个数查找构造方法，没有声明构造方法时只接受零参数
func (c *ClassInfo) Constructor(argc int) (*FuncInfo, bool) {
	if len(c.Constructors) == 0 {
		return &FuncInfo{Return: parser.VoidType}, argc == 0
	}
	for _, ctor := range c.Constructors {
		if len(ctor.Params) == argc {
			return ctor, true
		}
	}
	return nil, false
}

// Entry 符号表条目
type Entry struct {
	Name        string        // 源码中的名字
	EmittedName string        // 字节码中的名字，命名空间成员为 "Geo::x"
	Kind        EntryKind     // 符号种类
	Scope       *parser.Scope // 声明所在作用域
	Public      bool          // 未标记 @private
	Module      string        // 来自导入表时为所属模块

	Type     *parser.Type  // 变量类型；类和接口为其实例类型
	Readonly bool          // imut 变量
	Func     *FuncInfo     // 函数和方法
	Class    *ClassInfo    // 类和接口
	Inner    *parser.Scope // 类、接口和命名空间自身的作用域
}

// ValueType 把条目当作值使用时的类型
func (e *Entry) ValueType() *parser.Type {
	switch e.Kind {
	case EntryFunction:
		return e.Func.Type()
	case EntryVar:
		return e.Type
	}
	return parser.AnyType
}

// Exported 条目是否进入公开接口
func (e *Entry) Exported() bool {
	return e.Public && e.Kind != EntryScope && e.Scope.IsExportable()
}

// Table 单个模块的符号表
type Table struct {
	Module  string
	entries []*Entry
	index   map[string][]*Entry // key: 作用域 Key + 名字
	deps    []string
}

// New 创建一个新的符号表
func New(module string) *Table {
	return &Table{
		Module: module,
		index:  make(map[string][]*Entry),
	}
}

// key 生成条目的键
func key(scope *parser.Scope, name string) string {
	return scope.Key() + "\x00" + name
}

// Add 添加条目，同一作用域已有同名条目时返回 false 且不添加
func (t *Table) Add(e *Entry) bool {
	k := key(e.Scope, e.Name)
	if len(t.index[k]) > 0 {
		return false
	}
	t.index[k] = append(t.index[k], e)
	t.entries = append(t.entries, e)
	return true
}

// Lookup 返回恰好声明在 scope 中的同名条目
func (t *Table) Lookup(name string, scope *parser.Scope) []*Entry {
	return t.index[key(scope, name)]
}

// Entries 按添加顺序返回所有条目
func (t *Table) Entries() []*Entry {
	return t.entries
}

// AddDependency 记录一个依赖模块，重复添加会被忽略
func (t *Table) AddDependency(module string) {
	for _, d := range t.deps {
		if d == module {
			return
		}
	}
	t.deps = append(t.deps, module)
}

// Dependencies 返回依赖模块列表
func (t *Table) Dependencies() []string {
	return t.deps
}

var (
	ErrUndefined = errors.New("undefined symbol")
	ErrAmbiguous = errors.New("ambiguous symbol")
)

// Context 一个可写的主表加若干只读的导入表
type Context struct {
	Main    *Table
	Imports []*Table
}

// NewContext 创建查找上下文
func NewContext(main *Table, imports ...*Table) *Context {
	return &Context{Main: main, Imports: imports}
}

// Import 加入一个导入表，同名模块只加入一次
func (c *Context) Import(t *Table) {
	for _, imp := range c.Imports {
		if imp.Module == t.Module {
			return
		}
	}
	c.Imports = append(c.Imports, t)
	c.Main.AddDependency(t.Module)
}

// lookupExact 收集主表和所有导入表中恰好声明在 scope 的条目
func (c *Context) lookupExact(name string, scope *parser.Scope) []*Entry {
	found := append([]*Entry(nil), c.Main.Lookup(name, scope)...)
	for _, imp := range c.Imports {
		for _, e := range imp.Lookup(name, scope) {
			if !sameNamespace(found, e) {
				found = append(found, e)
			}
		}
	}
	return found
}

// sameNamespace 多个模块声明的同名命名空间视为同一个
func sameNamespace(found []*Entry, e *Entry) bool {
	if e.Kind != EntryScope {
		return false
	}
	for _, f := range found {
		if f.Kind == EntryScope && f.Inner.Same(e.Inner) {
			return true
		}
	}
	return false
}

// FindEntry 从 scope 向根作用域逐层查找。
// 某一层匹配多于一个返回 ErrAmbiguous，所有层都没有返回 ErrUndefined。
func (c *Context) FindEntry(name string, scope *parser.Scope) (*Entry, error) {
	for s := scope; s != nil; s = s.Parent {
		switch found := c.lookupExact(name, s); len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			return nil, ErrAmbiguous
		}
	}
	return nil, ErrUndefined
}

// FindIn 只在 scope 这一层查找，用于 Geo.x 这样的限定访问
func (c *Context) FindIn(name string, scope *parser.Scope) (*Entry, error) {
	switch found := c.lookupExact(name, scope); len(found) {
	case 0:
		return nil, ErrUndefined
	case 1:
		return found[0], nil
	}
	return nil, ErrAmbiguous
}
