package sema

import (
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// CallKind 调用在字节码中的形态
type CallKind int

const (
	CallFunction    CallKind = iota // 具名函数或持有函数值的变量
	CallBuiltin                     // print
	CallConstructor                 // 类实例化
	CallMethod                      // obj.method(...)，包括内置的数组方法
	CallSelfMethod                  // 类内部省略 self 的方法调用
)

// Call 调用的解析结果
type Call struct {
	Kind  CallKind
	Name  string        // 函数或类的输出名，方法调用为方法名
	Entry *symbol.Entry // 内置调用为 nil
}

// MemberKind 成员访问的形态
type MemberKind int

const (
	MemberField     MemberKind = iota // 实例字段或内置属性
	MemberNamespace                   // Geo.x
)

// Member 成员访问的解析结果
type Member struct {
	Kind  MemberKind
	Entry *symbol.Entry // 内置属性为 nil
}

// Checked 通过语义分析的编译单元，是代码生成器唯一的输入。
// 只能由 Analyze 在没有错误时构造。
type Checked struct {
	Module  string
	File    *parser.File
	Table   *symbol.Table
	Context *symbol.Context

	types   map[parser.Expression]*parser.Type
	idents  map[*parser.Identifier]*symbol.Entry
	decls   map[parser.Statement]*symbol.Entry
	calls   map[*parser.CallExpr]*Call
	members map[*parser.MemberExpr]*Member

	unreachable map[parser.Statement]bool
}

func newChecked(module string, file *parser.File, ctx *symbol.Context) *Checked {
	return &Checked{
		Module:  module,
		File:    file,
		Table:   ctx.Main,
		Context: ctx,
		types:   make(map[parser.Expression]*parser.Type),
		idents:  make(map[*parser.Identifier]*symbol.Entry),
		decls:   make(map[parser.Statement]*symbol.Entry),
		calls:   make(map[*parser.CallExpr]*Call),
		members: make(map[*parser.MemberExpr]*Member),

		unreachable: make(map[parser.Statement]bool),
	}
}

// TypeOf 表达式的类型
func (c *Checked) TypeOf(e parser.Expression) *parser.Type {
	return c.types[e]
}

// EntryOf 标识符引用的符号，self 返回 nil
func (c *Checked) EntryOf(id *parser.Identifier) *symbol.Entry {
	return c.idents[id]
}

// DeclOf 声明语句登记的符号
func (c *Checked) DeclOf(s parser.Statement) *symbol.Entry {
	return c.decls[s]
}

// CallOf 调用表达式的解析结果
func (c *Checked) CallOf(call *parser.CallExpr) *Call {
	return c.calls[call]
}

// Unreachable 语句是否位于 return 之后，这样的语句没有分析结果
func (c *Checked) Unreachable(s parser.Statement) bool {
	return c.unreachable[s]
}

// MemberOf 成员访问的解析结果
func (c *Checked) MemberOf(m *parser.MemberExpr) *Member {
	return c.members[m]
}

// Interface 序列化本模块的公开接口
func (c *Checked) Interface() []byte {
	return symbol.Serialize(c.Table)
}
