// Package sema 对语法树做名字解析和类型检查，产出代码生成器使用的 Checked。
package sema

import (
	"errors"
	"strings"

	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/lexer"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// Resolver 按模块名返回已编译模块的公开符号表
type Resolver func(module string) (*symbol.Table, bool)

// Options 分析选项
type Options struct {
	Module  string
	Sink    diag.Sink
	Resolve Resolver
	Prelude []*symbol.Table // 不写 import 也可见的模块
}

// funcState 函数体的分析进度
type funcState int

const (
	funcPending funcState = iota
	funcActive
	funcDone
)

// funcDecl 已登记但函数体可能尚未分析的函数
type funcDecl struct {
	decl  *parser.FuncDecl
	entry *symbol.Entry
	state funcState
}

// frame 正在分析的函数体
type frame struct {
	name     string
	declared *parser.Type // 声明的返回类型，未声明为 nil
	first    *parser.Type // 第一个 return 推断出的类型
	returned bool
	ctor     bool
	prev     *frame
}

// Analyzer 语义分析器
type Analyzer struct {
	opts     Options
	sink     diag.Sink
	errors   int
	warnings int

	ctx     *symbol.Context
	out     *Checked
	funcs   map[*symbol.Entry]*funcDecl
	skip    map[parser.Statement]bool // 登记失败的声明，不再分析
	fn      *frame
	pending []func() // 块结束时再分析的函数体
}

// Analyze 分析一个已解析的文件。只有没有报告任何错误时才返回 Checked。
func Analyze(file *parser.File, opts Options) (*Checked, int) {
	a := newAnalyzer(file, opts)
	a.run(file)
	if a.errors > 0 {
		return nil, a.errors
	}
	return a.out, 0
}

func newAnalyzer(file *parser.File, opts Options) *Analyzer {
	if opts.Sink == nil {
		opts.Sink = diag.Discard
	}
	if opts.Resolve == nil {
		opts.Resolve = func(string) (*symbol.Table, bool) { return nil, false }
	}
	ctx := symbol.NewContext(symbol.New(opts.Module))
	return &Analyzer{
		opts:  opts,
		sink:  opts.Sink,
		ctx:   ctx,
		out:   newChecked(opts.Module, file, ctx),
		funcs: make(map[*symbol.Entry]*funcDecl),
		skip:  make(map[parser.Statement]bool),
	}
}

func (a *Analyzer) run(file *parser.File) {
	for _, t := range a.opts.Prelude {
		a.ctx.Import(t)
	}
	for _, stmt := range file.Statements {
		if imp, ok := stmt.(*parser.ImportDecl); ok {
			a.evalImport(imp)
		}
	}
	a.evalBlock(file.Statements)
}

// Warnings 已报告的警告数量
func (a *Analyzer) Warnings() int {
	return a.warnings
}

// errorAt 报告语义错误
func (a *Analyzer) errorAt(n parser.Node, key string, args ...any) {
	r := n.Region()
	a.sink.Report(diag.Errorf(diag.PhaseSemantic, &r, key, args...))
	a.errors++
}

// errorAtToken 报告定位到单个 token 的语义错误
func (a *Analyzer) errorAtToken(tok lexer.Token, key string, args ...any) {
	r := tokenRegion(tok)
	a.sink.Report(diag.Errorf(diag.PhaseSemantic, &r, key, args...))
	a.errors++
}

func (a *Analyzer) warnAt(n parser.Node, key string, args ...any) {
	r := n.Region()
	a.sink.Report(diag.Warnf(diag.PhaseSemantic, &r, key, args...))
	a.warnings++
}

func tokenRegion(tok lexer.Token) diag.Region {
	return diag.Region{
		StartLine: tok.Pos.Line,
		StartCol:  tok.Pos.StartCol,
		EndLine:   tok.Pos.Line,
		EndCol:    tok.Pos.EndCol,
	}
}

// reportLookup 把 FindEntry 的错误转成诊断
func (a *Analyzer) reportLookup(n parser.Node, name string, err error) {
	if errors.Is(err, symbol.ErrAmbiguous) {
		a.errorAt(n, i18n.ErrAmbiguousSymbol, name)
		return
	}
	a.errorAt(n, i18n.ErrUndefinedSymbol, name)
}

// emitted 全局和命名空间中的符号在字节码中的名字，带模块和命名空间前缀，
// 如 "geo::Shapes::area"。所有模块共用一个解释器，前缀让各模块的全局互不覆盖。
// 局部符号保持原名。
func (a *Analyzer) emitted(scope *parser.Scope, name string) string {
	if !scope.IsExportable() {
		return name
	}
	if a.opts.Module == "" {
		return symbol.Qualify(scope, name)
	}
	return a.opts.Module + "::" + symbol.Qualify(scope, name)
}

// declare 把条目加入主表，重名时报告错误
func (a *Analyzer) declare(n parser.Node, e *symbol.Entry) bool {
	if !a.ctx.Main.Add(e) {
		a.errorAt(n, i18n.ErrDuplicateSymbol, e.Name)
		return false
	}
	return true
}

// resolveType 把注解中的占位类型解析为声明的类或接口类型，
// 失败时报告错误并返回 nil
func (a *Analyzer) resolveType(n parser.Node, t *parser.Type, scope *parser.Scope) *parser.Type {
	if t == nil {
		return nil
	}
	if t.GenericParam {
		return t
	}

	params := make([]*parser.Type, len(t.Params))
	changed := false
	for i, p := range t.Params {
		if params[i] = a.resolveType(n, p, scope); params[i] == nil {
			return nil
		}
		changed = changed || params[i] != p
	}

	if !t.Placeholder {
		if !changed {
			return t
		}
		r := t.Clone()
		r.Params = params
		return r
	}

	entry := a.lookupTypeName(t.Name, scope)
	if entry == nil {
		a.errorAt(n, i18n.ErrUndefinedType, t.Name)
		return nil
	}
	r := entry.Type.Clone()
	r.Optional = t.Optional
	r.Throwable = t.Throwable
	if generics := len(entry.Class.Generics); len(params) > 0 {
		if len(params) != generics {
			a.errorAt(n, i18n.ErrGenericArity, t.Name, generics, len(params))
			return nil
		}
		r.Params = params
	}
	return r
}

// lookupTypeName 解析 Name 或 Scope.Name 形式的类型名
func (a *Analyzer) lookupTypeName(name string, scope *parser.Scope) *symbol.Entry {
	parts := strings.Split(name, ".")
	entry, err := a.ctx.FindEntry(parts[0], scope)
	if err != nil {
		return nil
	}
	for _, part := range parts[1:] {
		if entry.Kind != symbol.EntryScope {
			return nil
		}
		if entry, err = a.ctx.FindIn(part, entry.Inner); err != nil {
			return nil
		}
	}
	if entry.Kind != symbol.EntryClass && entry.Kind != symbol.EntryInterface {
		return nil
	}
	return entry
}

// classOf 按实例类型找到类或接口条目
func (a *Analyzer) classOf(t *parser.Type) *symbol.Entry {
	if t == nil {
		return nil
	}
	tables := append([]*symbol.Table{a.ctx.Main}, a.ctx.Imports...)
	for _, tbl := range tables {
		for _, e := range tbl.Entries() {
			if (e.Kind == symbol.EntryClass || e.Kind == symbol.EntryInterface) && e.EmittedName == t.Name {
				return e
			}
		}
	}
	return nil
}

// instanceType 类的实例类型，泛型参数默认为 Any
func instanceType(emitted string, generics []string) *parser.Type {
	t := &parser.Type{Name: emitted}
	for range generics {
		t.Params = append(t.Params, parser.AnyType)
	}
	return t
}
