package codegen

import (
	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/lexer"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/sema"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// operators 语法运算符到字节码运算符的映射
var operators = map[lexer.TokenType]bytecode.Operator{
	lexer.TOKEN_ASSIGN:   bytecode.OpAssign,
	lexer.TOKEN_PLUS:     bytecode.OpAdd,
	lexer.TOKEN_MINUS:    bytecode.OpSub,
	lexer.TOKEN_ASTERISK: bytecode.OpMul,
	lexer.TOKEN_SLASH:    bytecode.OpDiv,
	lexer.TOKEN_PERCENT:  bytecode.OpMod,
	lexer.TOKEN_EQ:       bytecode.OpEq,
	lexer.TOKEN_NOT_EQ:   bytecode.OpNotEq,
	lexer.TOKEN_LT:       bytecode.OpLess,
	lexer.TOKEN_LT_EQ:    bytecode.OpLessEq,
	lexer.TOKEN_GT:       bytecode.OpGreater,
	lexer.TOKEN_GT_EQ:    bytecode.OpGreaterEq,
	lexer.TOKEN_AND:      bytecode.OpAnd,
	lexer.TOKEN_OR:       bytecode.OpOr,
	lexer.TOKEN_BIT_AND:  bytecode.OpBitAnd,
	lexer.TOKEN_BIT_OR:   bytecode.OpBitOr,
}

func (g *Generator) operator(n parser.Node, tok lexer.TokenType) (bytecode.Operator, error) {
	if op, ok := operators[tok]; ok {
		return op, nil
	}
	return 0, g.fail(n, "unsupported operator %s", lexer.TokenTypeName(tok))
}

func (g *Generator) expr(e parser.Expression) error {
	switch e := e.(type) {
	case *parser.Identifier:
		return g.ident(e)
	case *parser.LiteralExpr:
		g.literal(e)
		return nil
	case *parser.RegexLiteral:
		g.w.Op(bytecode.OpRegexLiteral)
		g.w.ID(e.Pattern)
		g.w.ID(e.Flags)
		return nil
	case *parser.ArrayLiteral:
		g.w.Op(bytecode.OpCreateInternal)
		g.w.U8(bytecode.ObjArray)
		return g.list(e.Elements)
	case *parser.DictLiteral:
		g.w.Op(bytecode.OpDictLiteral)
		g.w.U32(uint32(len(e.Keys)))
		for i := range e.Keys {
			if err := g.expr(e.Keys[i]); err != nil {
				return err
			}
			if err := g.expr(e.Values[i]); err != nil {
				return err
			}
		}
		return nil
	case *parser.CallExpr:
		return g.call(e)
	case *parser.MemberExpr:
		return g.member(e)
	case *parser.IndexExpr:
		g.w.Op(bytecode.OpIndexGet)
		if err := g.expr(e.Object); err != nil {
			return err
		}
		return g.expr(e.Index)
	case *parser.UnaryExpr:
		op := bytecode.OpNot
		if e.Op == lexer.TOKEN_MINUS {
			op = bytecode.OpNeg
		}
		g.w.Op(bytecode.OpUnary)
		g.w.U8(byte(op))
		return g.expr(e.Operand)
	case *parser.BinaryExpr:
		return g.binary(e)
	case *parser.AssignExpr:
		return g.assign(e)
	case *parser.IsExpr:
		g.w.Op(bytecode.OpTypeCheck)
		if err := g.expr(e.Value); err != nil {
			return err
		}
		g.w.ID(e.Type.Name)
		return nil
	}
	return g.fail(e, "unsupported expression %T", e)
}

// list 写出个数和每个表达式
func (g *Generator) list(items []parser.Expression) error {
	g.w.U32(uint32(len(items)))
	for _, item := range items {
		if err := g.expr(item); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) literal(e *parser.LiteralExpr) {
	g.w.Op(bytecode.OpCreateInternal)
	switch e.Kind {
	case parser.LitString:
		g.w.U8(bytecode.ObjString)
		g.w.ID(e.Str)
	case parser.LitBool:
		g.w.U8(bytecode.ObjBool)
		g.w.Bool(e.Bool)
	case parser.LitInt:
		g.w.U8(bytecode.ObjNumber)
		g.w.U8(bytecode.NumInt)
		g.w.I64(e.Int)
	default:
		g.w.U8(bytecode.ObjNumber)
		g.w.U8(bytecode.NumFloat)
		g.w.F64(e.Float)
	}
}

func (g *Generator) self() {
	g.w.Op(bytecode.OpVarRef)
	g.w.ID("self")
}

// field 类内部省略 self 的字段引用
func field(e *symbol.Entry) bool {
	return e.Scope.Kind == parser.ScopeClass
}

// ident 局部变量用原名，全局和命名空间变量用输出名，类内部的字段读作 self.x
func (g *Generator) ident(id *parser.Identifier) error {
	if id.Value == "self" {
		g.self()
		return nil
	}
	e := g.checked.EntryOf(id)
	if e == nil {
		return g.fail(id, "identifier %s was not resolved", id.Value)
	}
	if field(e) {
		if e.Kind != symbol.EntryVar {
			return g.fail(id, "method %s used as a value", id.Value)
		}
		g.w.Op(bytecode.OpMemberGet)
		g.self()
		g.w.ID(e.Name)
		return nil
	}
	g.w.Op(bytecode.OpVarRef)
	g.w.ID(e.EmittedName)
	return nil
}

func (g *Generator) member(e *parser.MemberExpr) error {
	m := g.checked.MemberOf(e)
	if m == nil {
		return g.fail(e, "member %s was not resolved", parser.Format(e))
	}
	if m.Kind == sema.MemberNamespace {
		g.w.Op(bytecode.OpVarRef)
		g.w.ID(m.Entry.EmittedName)
		return nil
	}
	g.w.Op(bytecode.OpMemberGet)
	if err := g.expr(e.Object); err != nil {
		return err
	}
	g.w.ID(e.Member.Value)
	return nil
}

func (g *Generator) call(c *parser.CallExpr) error {
	call := g.checked.CallOf(c)
	if call == nil {
		return g.fail(c, "call %s was not resolved", parser.Format(c.Callee))
	}
	switch call.Kind {
	case sema.CallFunction, sema.CallBuiltin:
		g.w.Op(bytecode.OpInvoke)
		g.w.ID(call.Name)
	case sema.CallConstructor:
		g.w.Op(bytecode.OpCreateObject)
		g.w.ID(call.Name)
	case sema.CallMethod:
		m, ok := c.Callee.(*parser.MemberExpr)
		if !ok {
			return g.fail(c, "method call without receiver")
		}
		g.w.Op(bytecode.OpInvokeMethod)
		if err := g.expr(m.Object); err != nil {
			return err
		}
		g.w.ID(call.Name)
	case sema.CallSelfMethod:
		g.w.Op(bytecode.OpInvokeMethod)
		g.self()
		g.w.ID(call.Name)
	default:
		return g.fail(c, "unsupported call kind %d", call.Kind)
	}
	return g.list(c.Args)
}

// binary && 和 || 的右操作数带长度前缀，运行时短路时跳过
func (g *Generator) binary(e *parser.BinaryExpr) error {
	op, err := g.operator(e, e.Op)
	if err != nil {
		return err
	}
	g.w.Op(bytecode.OpBinary)
	g.w.U8(byte(op))
	if err := g.expr(e.Left); err != nil {
		return err
	}
	if op == bytecode.OpAnd || op == bytecode.OpOr {
		return g.sized(func() error { return g.expr(e.Right) })
	}
	return g.expr(e.Right)
}

// assign 按目标形态写出 VAR_SET、MEMBER_SET 或 INDEX_SET，
// 复合赋值只写出运算符，由运行时读出旧值后计算
func (g *Generator) assign(e *parser.AssignExpr) error {
	tok := e.Op
	if tok != lexer.TOKEN_ASSIGN {
		tok = parser.CompoundBase(tok)
	}
	op, err := g.operator(e, tok)
	if err != nil {
		return err
	}

	switch t := e.Target.(type) {
	case *parser.Identifier:
		entry := g.checked.EntryOf(t)
		if entry == nil {
			return g.fail(t, "assignment target %s was not resolved", t.Value)
		}
		if field(entry) {
			g.w.Op(bytecode.OpMemberSet)
			g.self()
			g.w.ID(entry.Name)
		} else {
			g.w.Op(bytecode.OpVarSet)
			g.w.ID(entry.EmittedName)
		}
	case *parser.MemberExpr:
		m := g.checked.MemberOf(t)
		if m == nil {
			return g.fail(t, "assignment target %s was not resolved", parser.Format(t))
		}
		if m.Kind == sema.MemberNamespace {
			g.w.Op(bytecode.OpVarSet)
			g.w.ID(m.Entry.EmittedName)
		} else {
			g.w.Op(bytecode.OpMemberSet)
			if err := g.expr(t.Object); err != nil {
				return err
			}
			g.w.ID(t.Member.Value)
		}
	case *parser.IndexExpr:
		g.w.Op(bytecode.OpIndexSet)
		if err := g.expr(t.Object); err != nil {
			return err
		}
		if err := g.expr(t.Index); err != nil {
			return err
		}
	default:
		return g.fail(e, "cannot assign to %s", parser.Format(e.Target))
	}

	g.w.U8(byte(op))
	return g.expr(e.Value)
}
