// Package codegen 把通过语义分析的语法树翻译成字节码流和公开接口。
package codegen

import (
	"fmt"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/sema"
)

// Output 一个模块的编译产物
type Output struct {
	Module    string
	Code      []byte // 以 MODULE_END 结尾的字节码流
	Interface []byte // 公开符号表

	// Regions 语句记录在 Code 中的偏移到源码区间，运行时错误据此定位
	Regions map[int]diag.Region
}

// Error 代码生成阶段的内部错误，说明分析器放过了不该放过的节点
type Error struct {
	Region diag.Region
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("codegen %s: %s", e.Region, e.Detail)
}

// Generator 字节码生成器
type Generator struct {
	checked *sema.Checked
	w       *bytecode.Writer
	regions map[int]diag.Region
}

// Generate 生成整个模块
func Generate(checked *sema.Checked) (*Output, error) {
	g := &Generator{checked: checked, w: bytecode.NewWriter(), regions: make(map[int]diag.Region)}
	if err := g.declarations(checked.File.Statements); err != nil {
		return nil, err
	}
	if err := g.statements(checked.File.Statements); err != nil {
		return nil, err
	}
	g.w.Op(bytecode.OpModuleEnd)
	return &Output{
		Module:    checked.Module,
		Code:      g.w.Bytes(),
		Interface: checked.Interface(),
		Regions:   g.regions,
	}, nil
}

func (g *Generator) fail(n parser.Node, format string, args ...any) error {
	return &Error{Region: n.Region(), Detail: fmt.Sprintf(format, args...)}
}

func (g *Generator) statements(stmts []parser.Statement) error {
	for _, stmt := range stmts {
		if g.checked.Unreachable(stmt) {
			continue
		}
		if err := g.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// declarations 先写出全局和命名空间中的函数与类，
// 使前向引用在运行时同样可用
func (g *Generator) declarations(stmts []parser.Statement) error {
	for _, stmt := range stmts {
		var err error
		switch s := stmt.(type) {
		case *parser.ScopeDecl:
			err = g.declarations(s.Body.Statements)
		case *parser.FuncDecl:
			e := g.checked.DeclOf(s)
			if e == nil {
				return g.fail(s, "function %s was not declared", s.Name)
			}
			g.mark(s)
			err = g.function(e.EmittedName, s.Params, s.Body)
		case *parser.ClassDecl:
			g.mark(s)
			err = g.class(s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// block 写出 BLOCK_BEGIN，回填长度，写出 BLOCK_END
func (g *Generator) block(stmts []parser.Statement) error {
	g.w.Op(bytecode.OpBlockBegin)
	at := g.w.Placeholder()
	if err := g.statements(stmts); err != nil {
		return err
	}
	g.w.Op(bytecode.OpBlockEnd)
	g.w.PatchLength(at)
	return nil
}

// sized 在记录前写入其字节长度，运行时可以不求值而跳过
func (g *Generator) sized(emit func() error) error {
	at := g.w.Placeholder()
	if err := emit(); err != nil {
		return err
	}
	g.w.PatchLength(at)
	return nil
}

// mark 记下即将写出的语句记录对应的源码区间
func (g *Generator) mark(stmt parser.Statement) {
	g.regions[g.w.Len()] = stmt.Region()
}

func (g *Generator) statement(stmt parser.Statement) error {
	switch s := stmt.(type) {
	case *parser.ImportDecl, *parser.InterfaceDecl, *parser.FuncDecl, *parser.ClassDecl:
		return nil
	case *parser.ScopeDecl:
		return g.statements(s.Body.Statements)
	}
	g.mark(stmt)
	switch s := stmt.(type) {
	case *parser.VarDecl:
		return g.varDecl(s)
	case *parser.CondDecl:
		return g.conditional(s)
	case *parser.WhileDecl:
		return g.loop(s.Cond, s.Body)
	case *parser.ForDecl:
		return g.loop(s.Cond, s.Body)
	case *parser.ReturnDecl:
		g.w.Op(bytecode.OpReturn)
		g.w.Bool(s.Value != nil)
		if s.Value != nil {
			return g.expr(s.Value)
		}
		return nil
	case *parser.SecureDecl:
		return g.secure(s)
	case *parser.ExprStmt:
		return g.expr(s.Expr)
	}
	return g.fail(stmt, "unsupported statement %T", stmt)
}

// initializer 写出初始值，没有初始值时写出用于默认值的类型名
func (g *Generator) initializer(value parser.Expression, typ string) error {
	g.w.Bool(value != nil)
	if value == nil {
		g.w.ID(typ)
		return nil
	}
	return g.expr(value)
}

func (g *Generator) varDecl(s *parser.VarDecl) error {
	e := g.checked.DeclOf(s)
	if e == nil || e.Type == nil {
		return g.fail(s, "variable %s has no resolved type", s.Name)
	}
	g.w.Op(bytecode.OpDefineVar)
	g.w.ID(e.EmittedName)
	return g.initializer(s.Value, e.Type.Name)
}

// function DEFINE_FUNC name params bodyOffset block，
// bodyOffset 是函数体 BLOCK_BEGIN 在流中的绝对偏移
func (g *Generator) function(name string, params []*parser.Param, body *parser.BlockStmt) error {
	g.w.Op(bytecode.OpDefineFunc)
	g.w.ID(name)
	g.w.U32(uint32(len(params)))
	for _, p := range params {
		g.w.ID(p.Name)
	}
	at := g.w.Placeholder()
	g.w.Patch(at, uint32(g.w.Len()))
	return g.block(body.Statements)
}

// class DEFINE_CLASS name fields ctors methods。
// 字段初始值带长度前缀，创建对象时才求值。
func (g *Generator) class(s *parser.ClassDecl) error {
	e := g.checked.DeclOf(s)
	if e == nil {
		return g.fail(s, "class %s was not declared", s.Name)
	}
	g.w.Op(bytecode.OpDefineClass)
	g.w.ID(e.EmittedName)

	g.w.U32(uint32(len(s.Fields)))
	for _, f := range s.Fields {
		fe := g.checked.DeclOf(f)
		if fe == nil || fe.Type == nil {
			return g.fail(f, "field %s has no resolved type", f.Name)
		}
		g.w.ID(f.Name)
		g.w.Bool(f.Value != nil)
		if f.Value == nil {
			g.w.ID(fe.Type.Name)
			continue
		}
		if err := g.sized(func() error { return g.expr(f.Value) }); err != nil {
			return err
		}
	}

	g.w.U32(uint32(len(s.Constructors)))
	for _, c := range s.Constructors {
		if err := g.function("new", c.Params, c.Body); err != nil {
			return err
		}
	}
	g.w.U32(uint32(len(s.Methods)))
	for _, m := range s.Methods {
		if err := g.function(m.Name, m.Params, m.Body); err != nil {
			return err
		}
	}
	return nil
}

// conditional CONDITIONAL length count {kind [cond] block} CONDITIONAL_END
func (g *Generator) conditional(s *parser.CondDecl) error {
	g.w.Op(bytecode.OpConditional)
	return g.sized(func() error {
		g.w.U32(uint32(len(s.Branches)))
		for _, b := range s.Branches {
			if b.Cond == nil {
				g.w.U8(bytecode.CondElse)
			} else {
				g.w.U8(bytecode.CondIf)
				if err := g.expr(b.Cond); err != nil {
					return err
				}
			}
			if err := g.block(b.Body.Statements); err != nil {
				return err
			}
		}
		g.w.Op(bytecode.OpConditionalEnd)
		return nil
	})
}

// loop 与条件分支同一种记录，分支种类为 LOOP，运行时反复求值条件
func (g *Generator) loop(cond parser.Expression, body *parser.BlockStmt) error {
	g.w.Op(bytecode.OpConditional)
	return g.sized(func() error {
		g.w.U32(1)
		g.w.U8(bytecode.CondLoop)
		if err := g.expr(cond); err != nil {
			return err
		}
		if err := g.block(body.Statements); err != nil {
			return err
		}
		g.w.Op(bytecode.OpConditionalEnd)
		return nil
	})
}

// secure SECURE name length initializer catchName block，
// 初始值出错时运行时按长度跳过它
func (g *Generator) secure(s *parser.SecureDecl) error {
	e := g.checked.DeclOf(s.Guarded)
	if e == nil {
		return g.fail(s, "guarded variable %s was not declared", s.Guarded.Name)
	}
	g.w.Op(bytecode.OpSecure)
	g.w.ID(e.EmittedName)
	if err := g.sized(func() error { return g.expr(s.Guarded.Value) }); err != nil {
		return err
	}
	g.w.ID(s.CatchName)
	return g.block(s.Catch.Statements)
}
