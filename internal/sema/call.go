package sema

import (
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// printName 内置输出函数，优先于同名的用户符号
const printName = "print"

// evalCall 解析调用目标：具名函数、类实例化、命名空间成员、方法或函数值
func (a *Analyzer) evalCall(c *parser.CallExpr, scope *parser.Scope) *parser.Type {
	switch callee := c.Callee.(type) {
	case *parser.Identifier:
		if callee.Value == printName && !c.New {
			return a.evalPrint(c, scope)
		}
		if callee.Value == "self" {
			a.errorAt(callee, i18n.ErrNotCallable, callee.Value)
			return nil
		}
		entry, err := a.ctx.FindEntry(callee.Value, scope)
		if err != nil {
			a.reportLookup(callee, callee.Value, err)
			return nil
		}
		a.out.idents[callee] = entry
		return a.callEntry(c, entry, callee.Value, scope)

	case *parser.MemberExpr:
		if ns := a.namespaceOf(callee.Object, scope); ns != nil {
			name := parser.Format(callee)
			entry, err := a.ctx.FindIn(callee.Member.Value, ns.Inner)
			if err != nil {
				a.reportLookup(callee, name, err)
				return nil
			}
			a.out.idents[callee.Member] = entry
			a.out.members[callee] = &Member{Kind: MemberNamespace, Entry: entry}
			return a.callEntry(c, entry, name, scope)
		}
		if c.New {
			a.errorAt(callee, i18n.ErrNotCallable, parser.Format(callee))
			return nil
		}
		obj := a.evalExpr(callee.Object, scope)
		if obj == nil {
			return nil
		}
		return a.callMethod(c, callee, obj, scope)
	}

	a.errorAt(c.Callee, i18n.ErrNotCallable, parser.Format(c.Callee))
	return nil
}

func (a *Analyzer) evalPrint(c *parser.CallExpr, scope *parser.Scope) *parser.Type {
	if len(c.Args) != 1 {
		a.errorAt(c, i18n.ErrArgCount, printName, 1, len(c.Args))
		return nil
	}
	if a.evalExpr(c.Args[0], scope) == nil {
		return nil
	}
	a.out.calls[c] = &Call{Kind: CallBuiltin, Name: printName}
	return parser.VoidType
}

// callEntry 按条目种类检查调用：函数检查参数，类按参数个数选择构造方法，
// 函数类型的变量按其签名检查
func (a *Analyzer) callEntry(c *parser.CallExpr, e *symbol.Entry, name string, scope *parser.Scope) *parser.Type {
	switch e.Kind {
	case symbol.EntryFunction:
		if c.New {
			break
		}
		ret := a.ensureReturn(c, e)
		if ret == nil {
			return nil
		}
		kind := CallFunction
		if e.Scope.Kind == parser.ScopeClass {
			kind = CallSelfMethod
		}
		a.out.calls[c] = &Call{Kind: kind, Name: e.EmittedName, Entry: e}
		bindings, ok := a.checkArgs(c, name, paramTypes(e.Func.Params), scope)
		if !ok {
			return nil
		}
		return subst(ret, bindings)

	case symbol.EntryClass:
		ctor, ok := e.Class.Constructor(len(c.Args))
		if !ok {
			expected := 0
			if len(e.Class.Constructors) > 0 {
				expected = len(e.Class.Constructors[0].Params)
			}
			a.errorAt(c, i18n.ErrArgCount, name, expected, len(c.Args))
			return nil
		}
		a.out.calls[c] = &Call{Kind: CallConstructor, Name: e.EmittedName, Entry: e}
		if _, ok := a.checkArgs(c, name, paramTypes(ctor.Params), scope); !ok {
			return nil
		}
		return e.Type

	case symbol.EntryVar:
		t := e.Type
		if t == nil {
			return nil
		}
		if c.New || !t.IsFunction() || e.Scope.Kind == parser.ScopeClass {
			break
		}
		a.out.calls[c] = &Call{Kind: CallFunction, Name: e.EmittedName, Entry: e}
		n := len(t.Params) - 1
		if _, ok := a.checkArgs(c, name, t.Params[:n], scope); !ok {
			return nil
		}
		return t.Params[n]
	}

	a.errorAt(c.Callee, i18n.ErrNotCallable, name)
	return nil
}

// callMethod obj.method(...)：类方法、数组的 push 以及 Any 上的动态调用
func (a *Analyzer) callMethod(c *parser.CallExpr, m *parser.MemberExpr, obj *parser.Type, scope *parser.Scope) *parser.Type {
	name := m.Member.Value
	switch {
	case obj.Is(parser.ArrayType) && name == "push":
		a.out.calls[c] = &Call{Kind: CallMethod, Name: name}
		if _, ok := a.checkArgs(c, parser.Format(m), []*parser.Type{obj.Elem()}, scope); !ok {
			return nil
		}
		return parser.VoidType
	case obj.Is(parser.AnyType):
		a.out.calls[c] = &Call{Kind: CallMethod, Name: name}
		for _, arg := range c.Args {
			if a.evalExpr(arg, scope) == nil {
				return nil
			}
		}
		return parser.AnyType
	}

	cls := a.classOf(obj)
	if cls == nil {
		a.errorAt(m.Member, i18n.ErrNoMember, obj.String(), name)
		return nil
	}
	method := cls.Class.Method(name)
	if method == nil {
		a.errorAt(m.Member, i18n.ErrNoMember, obj.String(), name)
		return nil
	}
	ret := a.ensureReturn(c, method)
	if ret == nil {
		return nil
	}
	a.out.calls[c] = &Call{Kind: CallMethod, Name: name, Entry: method}
	bindings, ok := a.checkArgs(c, parser.Format(m), paramTypes(method.Func.Params), scope)
	if !ok {
		return nil
	}
	return subst(ret, bindings)
}

// checkArgs 检查参数个数，再逐个匹配参数类型，遇到第一个不匹配即停止。
// 泛型形参由第一次出现的实参类型绑定，如 T[] 遇到 Int[] 时 T 绑定为 Int。
func (a *Analyzer) checkArgs(c *parser.CallExpr, name string, params []*parser.Type, scope *parser.Scope) (map[string]*parser.Type, bool) {
	if len(c.Args) != len(params) {
		a.errorAt(c, i18n.ErrArgCount, name, len(params), len(c.Args))
		return nil, false
	}
	bindings := make(map[string]*parser.Type)
	for i, arg := range c.Args {
		t := a.evalExpr(arg, scope)
		if t == nil {
			return nil, false
		}
		unify(params[i], t, bindings)
		if p := subst(params[i], bindings); !p.Match(t) {
			a.errorAt(arg, i18n.ErrArgType, i+1, name, p.String(), t.String())
			return nil, false
		}
	}
	return bindings, true
}

func paramTypes(params []symbol.Param) []*parser.Type {
	types := make([]*parser.Type, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	return types
}

// unify 把形参类型中尚未绑定的泛型形参绑定到实参的对应部分
func unify(param, arg *parser.Type, bindings map[string]*parser.Type) {
	if param.GenericParam {
		if _, ok := bindings[param.Name]; !ok {
			bindings[param.Name] = arg
		}
		return
	}
	if param.Name != arg.Name || len(param.Params) != len(arg.Params) {
		return
	}
	for i := range param.Params {
		unify(param.Params[i], arg.Params[i], bindings)
	}
}

// subst 用绑定替换类型中的泛型形参
func subst(t *parser.Type, bindings map[string]*parser.Type) *parser.Type {
	if t == nil || len(bindings) == 0 {
		return t
	}
	if t.GenericParam {
		if b, ok := bindings[t.Name]; ok {
			return b
		}
		return t
	}
	if len(t.Params) == 0 {
		return t
	}
	r := t.Clone()
	for i, p := range r.Params {
		r.Params[i] = subst(p, bindings)
	}
	return r
}
