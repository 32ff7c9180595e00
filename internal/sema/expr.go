package sema

import (
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/lexer"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// evalExpr 推断表达式类型并记录下来。出错时报告一次并返回 nil，
// 上层遇到 nil 不再重复报告。
func (a *Analyzer) evalExpr(e parser.Expression, scope *parser.Scope) *parser.Type {
	t := a.exprType(e, scope)
	if t != nil {
		a.out.types[e] = t
	}
	return t
}

func (a *Analyzer) exprType(e parser.Expression, scope *parser.Scope) *parser.Type {
	switch e := e.(type) {
	case *parser.Identifier:
		return a.evalIdent(e, scope)
	case *parser.LiteralExpr:
		switch e.Kind {
		case parser.LitString:
			return parser.StringType
		case parser.LitBool:
			return parser.BoolType
		case parser.LitInt:
			return parser.IntType
		}
		return parser.FloatType
	case *parser.RegexLiteral:
		return parser.RegexType
	case *parser.ArrayLiteral:
		return a.evalArray(e, scope)
	case *parser.DictLiteral:
		return a.evalDict(e, scope)
	case *parser.CallExpr:
		return a.evalCall(e, scope)
	case *parser.MemberExpr:
		return a.evalMember(e, scope)
	case *parser.IndexExpr:
		return a.evalIndex(e, scope)
	case *parser.UnaryExpr:
		return a.evalUnary(e, scope)
	case *parser.BinaryExpr:
		l := a.evalExpr(e.Left, scope)
		r := a.evalExpr(e.Right, scope)
		if l == nil || r == nil {
			return nil
		}
		return a.binaryType(e, e.Op, l, r)
	case *parser.AssignExpr:
		return a.evalAssign(e, scope)
	case *parser.IsExpr:
		v := a.evalExpr(e.Value, scope)
		t := a.resolveType(e, e.Type, scope)
		if v == nil || t == nil {
			return nil
		}
		e.Type = t
		return parser.BoolType
	}
	return nil
}

// evalIdent 标识符按作用域链查找；self 只能出现在类中
func (a *Analyzer) evalIdent(id *parser.Identifier, scope *parser.Scope) *parser.Type {
	if id.Value == "self" {
		return a.selfType(id, scope)
	}
	entry, err := a.ctx.FindEntry(id.Value, scope)
	if err != nil {
		a.reportLookup(id, id.Value, err)
		return nil
	}
	a.out.idents[id] = entry
	return a.valueOf(id, entry)
}

// valueOf 条目作为值使用时的类型
func (a *Analyzer) valueOf(n parser.Node, e *symbol.Entry) *parser.Type {
	switch e.Kind {
	case symbol.EntryVar:
		return e.Type
	case symbol.EntryFunction:
		if a.ensureReturn(n, e) == nil {
			return nil
		}
		return e.Func.Type()
	}
	a.errorAt(n, i18n.ErrTypeMismatch, "value", e.Kind.String())
	return nil
}

func (a *Analyzer) selfType(n parser.Node, scope *parser.Scope) *parser.Type {
	cls := scope.EnclosingClass()
	if cls == nil {
		a.errorAt(n, i18n.ErrSelfOutsideClass)
		return nil
	}
	entry, err := a.ctx.FindIn(cls.Name, cls.Parent)
	if err != nil {
		a.reportLookup(n, cls.Name, err)
		return nil
	}
	return entry.Type
}

// evalArray 元素类型取第一个元素，其余元素必须匹配；空数组为 Array<Any>
func (a *Analyzer) evalArray(e *parser.ArrayLiteral, scope *parser.Scope) *parser.Type {
	if len(e.Elements) == 0 {
		return parser.ArrayOf(parser.AnyType)
	}
	var elem *parser.Type
	for _, el := range e.Elements {
		t := a.evalExpr(el, scope)
		if t == nil {
			return nil
		}
		if elem == nil {
			elem = t
		} else if !elem.Match(t) {
			a.errorAt(el, i18n.ErrTypeMismatch, elem.String(), t.String())
			return nil
		}
	}
	return parser.ArrayOf(elem)
}

// hashable 可以作为字典键的类型
func hashable(t *parser.Type) bool {
	for _, k := range []*parser.Type{parser.StringType, parser.IntType, parser.FloatType, parser.BoolType, parser.AnyType} {
		if t.Is(k) {
			return true
		}
	}
	return false
}

func (a *Analyzer) evalDict(e *parser.DictLiteral, scope *parser.Scope) *parser.Type {
	if len(e.Keys) == 0 {
		return parser.DictOf(parser.AnyType, parser.AnyType)
	}
	var key, value *parser.Type
	for i := range e.Keys {
		k := a.evalExpr(e.Keys[i], scope)
		v := a.evalExpr(e.Values[i], scope)
		if k == nil || v == nil {
			return nil
		}
		if !hashable(k) {
			a.errorAt(e.Keys[i], i18n.ErrIndexType, parser.StringType.String(), k.String())
			return nil
		}
		if key == nil {
			key, value = k, v
			continue
		}
		if !key.Match(k) {
			a.errorAt(e.Keys[i], i18n.ErrTypeMismatch, key.String(), k.String())
			return nil
		}
		if !value.Match(v) {
			a.errorAt(e.Values[i], i18n.ErrTypeMismatch, value.String(), v.String())
			return nil
		}
	}
	return parser.DictOf(key, value)
}

// namespaceOf 表达式是否指向一个命名空间，如 Geo 或 Outer.Inner。
// 不报告错误，不是命名空间时由普通求值路径报告。
func (a *Analyzer) namespaceOf(e parser.Expression, scope *parser.Scope) *symbol.Entry {
	switch e := e.(type) {
	case *parser.Identifier:
		entry, err := a.ctx.FindEntry(e.Value, scope)
		if err != nil || entry.Kind != symbol.EntryScope {
			return nil
		}
		a.out.idents[e] = entry
		return entry
	case *parser.MemberExpr:
		outer := a.namespaceOf(e.Object, scope)
		if outer == nil {
			return nil
		}
		entry, err := a.ctx.FindIn(e.Member.Value, outer.Inner)
		if err != nil || entry.Kind != symbol.EntryScope {
			return nil
		}
		a.out.idents[e.Member] = entry
		a.out.members[e] = &Member{Kind: MemberNamespace, Entry: entry}
		return entry
	}
	return nil
}

func (a *Analyzer) evalMember(e *parser.MemberExpr, scope *parser.Scope) *parser.Type {
	name := e.Member.Value
	if ns := a.namespaceOf(e.Object, scope); ns != nil {
		entry, err := a.ctx.FindIn(name, ns.Inner)
		if err != nil {
			a.reportLookup(e, parser.Format(e), err)
			return nil
		}
		a.out.idents[e.Member] = entry
		a.out.members[e] = &Member{Kind: MemberNamespace, Entry: entry}
		return a.valueOf(e, entry)
	}

	obj := a.evalExpr(e.Object, scope)
	if obj == nil {
		return nil
	}
	if name == "length" && (obj.Is(parser.StringType) || obj.Is(parser.ArrayType) || obj.Is(parser.DictType)) {
		a.out.members[e] = &Member{Kind: MemberField}
		return parser.IntType
	}
	if obj.Is(parser.AnyType) {
		a.out.members[e] = &Member{Kind: MemberField}
		return parser.AnyType
	}
	cls := a.classOf(obj)
	if cls == nil {
		a.errorAt(e.Member, i18n.ErrNoMember, obj.String(), name)
		return nil
	}
	field := cls.Class.Field(name)
	if field == nil {
		a.errorAt(e.Member, i18n.ErrNoMember, obj.String(), name)
		return nil
	}
	a.out.members[e] = &Member{Kind: MemberField, Entry: field}
	return field.Type
}

func (a *Analyzer) evalIndex(e *parser.IndexExpr, scope *parser.Scope) *parser.Type {
	obj := a.evalExpr(e.Object, scope)
	idx := a.evalExpr(e.Index, scope)
	if obj == nil || idx == nil {
		return nil
	}
	switch {
	case obj.Is(parser.ArrayType), obj.Is(parser.StringType):
		if !parser.IntType.Match(idx) {
			a.errorAt(e.Index, i18n.ErrIndexType, parser.IntType.String(), idx.String())
			return nil
		}
		if obj.Is(parser.StringType) {
			return parser.StringType
		}
		return obj.Elem()
	case obj.Is(parser.DictType):
		if key := obj.Key(); !key.Match(idx) {
			a.errorAt(e.Index, i18n.ErrIndexType, key.String(), idx.String())
			return nil
		}
		return obj.Elem()
	case obj.Is(parser.AnyType):
		return parser.AnyType
	}
	a.errorAt(e.Object, i18n.ErrNotIndexable, obj.String())
	return nil
}

func numeric(t *parser.Type) bool {
	return t.Is(parser.IntType) || t.Is(parser.FloatType)
}

func (a *Analyzer) evalUnary(e *parser.UnaryExpr, scope *parser.Scope) *parser.Type {
	t := a.evalExpr(e.Operand, scope)
	if t == nil {
		return nil
	}
	switch {
	case t.Is(parser.AnyType):
		return t
	case e.Op == lexer.TOKEN_NOT && t.Is(parser.BoolType):
		return parser.BoolType
	case e.Op == lexer.TOKEN_MINUS && numeric(t):
		return t
	}
	a.errorAt(e, i18n.ErrOperandType, lexer.TokenTypeName(e.Op), t.String())
	return nil
}

// binaryType 二元运算的结果类型。Int 与 Float 混合运算得到 Float，
// String 只支持 + 和比较。
func (a *Analyzer) binaryType(n parser.Node, op lexer.TokenType, l, r *parser.Type) *parser.Type {
	bad := func(t *parser.Type) *parser.Type {
		a.errorAt(n, i18n.ErrOperandType, lexer.TokenTypeName(op), t.String())
		return nil
	}
	anyOperand := l.Is(parser.AnyType) || r.Is(parser.AnyType)

	switch op {
	case lexer.TOKEN_PLUS, lexer.TOKEN_MINUS, lexer.TOKEN_ASTERISK, lexer.TOKEN_SLASH, lexer.TOKEN_PERCENT:
		switch {
		case anyOperand:
			return parser.AnyType
		case op == lexer.TOKEN_PLUS && l.Is(parser.StringType) && r.Is(parser.StringType):
			return parser.StringType
		case numeric(l) && numeric(r):
			if l.Is(parser.FloatType) || r.Is(parser.FloatType) {
				return parser.FloatType
			}
			return parser.IntType
		case numeric(l) || (op == lexer.TOKEN_PLUS && l.Is(parser.StringType)):
			return bad(r)
		}
		return bad(l)

	case lexer.TOKEN_EQ, lexer.TOKEN_NOT_EQ:
		if anyOperand || l.Match(r) || r.Match(l) || (numeric(l) && numeric(r)) {
			return parser.BoolType
		}
		return bad(r)

	case lexer.TOKEN_LT, lexer.TOKEN_LT_EQ, lexer.TOKEN_GT, lexer.TOKEN_GT_EQ:
		switch {
		case anyOperand, numeric(l) && numeric(r), l.Is(parser.StringType) && r.Is(parser.StringType):
			return parser.BoolType
		case numeric(l) || l.Is(parser.StringType):
			return bad(r)
		}
		return bad(l)

	case lexer.TOKEN_AND, lexer.TOKEN_OR:
		switch {
		case !parser.BoolType.Match(l):
			return bad(l)
		case !parser.BoolType.Match(r):
			return bad(r)
		}
		return parser.BoolType

	case lexer.TOKEN_BIT_AND, lexer.TOKEN_BIT_OR:
		switch {
		case anyOperand:
			return parser.AnyType
		case l.Is(parser.IntType) && r.Is(parser.IntType):
			return parser.IntType
		case l.Is(parser.BoolType) && r.Is(parser.BoolType):
			return parser.BoolType
		case l.Is(parser.IntType) || l.Is(parser.BoolType):
			return bad(r)
		}
		return bad(l)
	}
	return bad(l)
}

// evalAssign 目标必须是可写的变量、字段或元素，值必须匹配目标类型。
// imut 字段只能在构造方法中赋值。
func (a *Analyzer) evalAssign(e *parser.AssignExpr, scope *parser.Scope) *parser.Type {
	target := a.evalTarget(e.Target, scope)
	value := a.evalExpr(e.Value, scope)
	if target == nil || value == nil {
		return nil
	}
	if e.Op != lexer.TOKEN_ASSIGN {
		if value = a.binaryType(e, parser.CompoundBase(e.Op), target, value); value == nil {
			return nil
		}
	}
	if !target.Match(value) {
		a.errorAt(e.Value, i18n.ErrTypeMismatch, target.String(), value.String())
		return nil
	}
	return target
}

func (a *Analyzer) evalTarget(target parser.Expression, scope *parser.Scope) *parser.Type {
	switch t := target.(type) {
	case *parser.Identifier:
		if t.Value == "self" {
			a.errorAt(t, i18n.ErrReadonlyAssign, t.Value)
			return nil
		}
		typ := a.evalExpr(t, scope)
		if entry := a.out.idents[t]; entry != nil && !a.writable(entry) {
			a.errorAt(t, i18n.ErrReadonlyAssign, t.Value)
			return nil
		}
		return typ
	case *parser.MemberExpr:
		typ := a.evalExpr(t, scope)
		m := a.out.members[t]
		if typ == nil || m == nil {
			return typ
		}
		if m.Entry == nil && t.Member.Value == "length" {
			a.errorAt(t.Member, i18n.ErrReadonlyAssign, t.Member.Value)
			return nil
		}
		if m.Entry != nil && !a.writable(m.Entry) {
			a.errorAt(t.Member, i18n.ErrReadonlyAssign, parser.Format(t))
			return nil
		}
		return typ
	case *parser.IndexExpr:
		typ := a.evalExpr(t, scope)
		if obj := a.out.types[t.Object]; obj != nil && obj.Is(parser.StringType) {
			a.errorAt(t, i18n.ErrReadonlyAssign, parser.Format(t))
			return nil
		}
		return typ
	}
	return a.evalExpr(target, scope)
}

// writable 只有变量可写；imut 字段在构造方法中可以赋值
func (a *Analyzer) writable(e *symbol.Entry) bool {
	if e.Kind != symbol.EntryVar {
		return false
	}
	if !e.Readonly {
		return true
	}
	return e.Scope.Kind == parser.ScopeClass && a.fn != nil && a.fn.ctor
}
