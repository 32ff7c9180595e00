package sema

import (
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// hoist 先登记块中的命名空间、类、接口和函数，使它们可以先使用后声明。
// 第一遍登记类型名，第二遍解析签名，签名中才能引用同一块里后声明的类。
func (a *Analyzer) hoist(stmts []parser.Statement) {
	a.hoistShells(stmts)
	a.hoistSignatures(stmts)
}

func (a *Analyzer) hoistShells(stmts []parser.Statement) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *parser.ScopeDecl:
			if a.declareNamespace(s) {
				a.hoistShells(s.Body.Statements)
			}
		case *parser.ClassDecl:
			a.declareType(s, symbol.EntryClass, s.Name, s.Generics, s.Inner)
		case *parser.InterfaceDecl:
			a.declareType(s, symbol.EntryInterface, s.Name, s.Generics, s.Inner)
		}
	}
}

func (a *Analyzer) hoistSignatures(stmts []parser.Statement) {
	for _, stmt := range stmts {
		if a.skip[stmt] {
			continue
		}
		switch s := stmt.(type) {
		case *parser.ScopeDecl:
			a.hoistSignatures(s.Body.Statements)
		case *parser.FuncDecl:
			a.declareFunc(s)
		case *parser.ClassDecl:
			a.declareMembers(a.out.decls[s], s.Fields, s.Methods)
			a.declareConstructors(s)
		case *parser.InterfaceDecl:
			a.declareMembers(a.out.decls[s], s.Fields, s.Methods)
		}
	}
}

// allowed 类型、命名空间和函数只能声明在全局或命名空间中
func (a *Analyzer) allowed(stmt parser.Statement, kind string) bool {
	scope := stmt.Base().Scope
	if scope.IsExportable() {
		return true
	}
	a.errorAt(stmt, i18n.ErrDeclNotAllowed, kind, scope.String())
	a.skip[stmt] = true
	return false
}

func (a *Analyzer) declareNamespace(s *parser.ScopeDecl) bool {
	if !a.allowed(s, "scope") {
		return false
	}
	// 同一模块中可以重复打开命名空间
	for _, e := range a.ctx.Main.Lookup(s.Name, s.Scope) {
		if e.Kind == symbol.EntryScope {
			a.out.decls[s] = e
			return true
		}
	}
	e := &symbol.Entry{
		Name:        s.Name,
		EmittedName: symbol.Qualify(s.Scope, s.Name),
		Kind:        symbol.EntryScope,
		Scope:       s.Scope,
		Public:      !s.HasAttribute("private"),
		Inner:       s.Inner,
	}
	if !a.declare(s, e) {
		a.skip[s] = true
		return false
	}
	a.out.decls[s] = e
	return true
}

func (a *Analyzer) declareType(s parser.Statement, kind symbol.EntryKind, name string, generics []string, inner *parser.Scope) {
	if !a.allowed(s, kind.String()) {
		return
	}
	base := s.Base()
	emitted := a.emitted(base.Scope, name)
	e := &symbol.Entry{
		Name:        name,
		EmittedName: emitted,
		Kind:        kind,
		Scope:       base.Scope,
		Public:      !base.HasAttribute("private"),
		Type:        instanceType(emitted, generics),
		Class:       &symbol.ClassInfo{Generics: generics},
		Inner:       inner,
	}
	if !a.declare(s, e) {
		a.skip[s] = true
		return
	}
	a.out.decls[s] = e
}

// signature 解析参数和返回类型，无法解析的类型以 Any 代替，避免连锁报错
func (a *Analyzer) signature(n parser.Node, generics []string, params []*parser.Param, ret *parser.Type, scope *parser.Scope) *symbol.FuncInfo {
	info := &symbol.FuncInfo{Generics: generics}
	for _, p := range params {
		t := a.resolveType(n, p.Type, scope)
		if t == nil {
			t = parser.AnyType
		}
		info.Params = append(info.Params, symbol.Param{Name: p.Name, Type: t})
	}
	if ret != nil {
		if info.Return = a.resolveType(n, ret, scope); info.Return == nil {
			info.Return = parser.AnyType
		}
	}
	return info
}

func (a *Analyzer) declareFunc(s *parser.FuncDecl) {
	if !a.allowed(s, "func") {
		return
	}
	e := &symbol.Entry{
		Name:        s.Name,
		EmittedName: a.emitted(s.Scope, s.Name),
		Kind:        symbol.EntryFunction,
		Scope:       s.Scope,
		Public:      !s.HasAttribute("private"),
		Func:        a.signature(s, s.Generics, s.Params, s.Return, s.Inner),
	}
	if !a.declare(s, e) {
		a.skip[s] = true
		return
	}
	a.out.decls[s] = e
	a.funcs[e] = &funcDecl{decl: s, entry: e}
}

// declareMembers 登记类或接口的字段和方法。
// 没有注解的字段类型在分析类声明时由初始值推断。
func (a *Analyzer) declareMembers(class *symbol.Entry, fields []*parser.VarDecl, methods []*parser.FuncDecl) {
	for _, f := range fields {
		e := &symbol.Entry{
			Name:        f.Name,
			EmittedName: f.Name,
			Kind:        symbol.EntryVar,
			Scope:       class.Inner,
			Public:      !f.HasAttribute("private"),
			Readonly:    f.Readonly,
		}
		if f.Type != nil {
			if e.Type = a.resolveType(f, f.Type, class.Inner); e.Type == nil {
				e.Type = parser.AnyType
			}
		}
		if !a.ctx.Main.Add(e) {
			a.errorAtToken(f.NameToken, i18n.ErrDuplicateSymbol, f.Name)
			a.skip[f] = true
			continue
		}
		a.out.decls[f] = e
		class.Class.Fields = append(class.Class.Fields, e)
	}

	for _, m := range methods {
		info := a.signature(m, m.Generics, m.Params, m.Return, m.Inner)
		if m.Body == nil && info.Return == nil {
			info.Return = parser.VoidType
		}
		e := &symbol.Entry{
			Name:        m.Name,
			EmittedName: m.Name,
			Kind:        symbol.EntryFunction,
			Scope:       class.Inner,
			Public:      !m.HasAttribute("private"),
			Func:        info,
		}
		if !a.declare(m, e) {
			a.skip[m] = true
			continue
		}
		a.out.decls[m] = e
		class.Class.Methods = append(class.Class.Methods, e)
		if m.Body != nil {
			a.funcs[e] = &funcDecl{decl: m, entry: e}
		}
	}
}

func (a *Analyzer) declareConstructors(s *parser.ClassDecl) {
	class := a.out.decls[s]
	for _, c := range s.Constructors {
		info := a.signature(c, nil, c.Params, parser.VoidType, c.Inner)
		if _, dup := class.Class.Constructor(len(info.Params)); dup && len(class.Class.Constructors) > 0 {
			a.errorAt(c, i18n.ErrDuplicateSymbol, "new")
			a.skip[c] = true
			continue
		}
		class.Class.Constructors = append(class.Class.Constructors, info)
	}
}

// evalImport 把导入模块的公开符号表加入查找上下文
func (a *Analyzer) evalImport(s *parser.ImportDecl) {
	if !s.Scope.IsGlobal() {
		a.errorAt(s, i18n.ErrDeclNotAllowed, "import", s.Scope.String())
		return
	}
	tbl, ok := a.opts.Resolve(s.Module)
	if !ok {
		a.errorAt(s, i18n.ErrUnknownModule, s.Module)
		return
	}
	a.ctx.Import(tbl)
}

// evalVarDecl 变量声明：注解和初始值都有时必须匹配，只有初始值时取其类型，
// 两者都没有时无法推断类型。重名在分析初始值之前拒绝。
func (a *Analyzer) evalVarDecl(s *parser.VarDecl) {
	scope := s.Scope
	if len(a.ctx.Main.Lookup(s.Name, scope)) > 0 {
		a.errorAtToken(s.NameToken, i18n.ErrDuplicateSymbol, s.Name)
		return
	}

	var declared, implied *parser.Type
	if s.Type != nil {
		if declared = a.resolveType(s, s.Type, scope); declared == nil {
			declared = parser.AnyType
		}
	}
	if s.Value != nil {
		implied = a.evalExpr(s.Value, scope)
		if implied != nil && implied.Is(parser.VoidType) {
			a.errorAt(s.Value, i18n.ErrCannotDeduceType, s.Name)
			implied = nil
		}
	}

	typ := declared
	switch {
	case declared != nil && implied != nil:
		if !declared.Match(implied) {
			a.errorAt(s.Value, i18n.ErrTypeMismatch, declared.String(), implied.String())
		}
	case declared == nil && implied != nil:
		typ = implied
	case s.Type == nil && s.Value == nil:
		a.errorAtToken(s.NameToken, i18n.ErrCannotDeduceType, s.Name)
	}

	e := &symbol.Entry{
		Name:        s.Name,
		EmittedName: a.emitted(scope, s.Name),
		Kind:        symbol.EntryVar,
		Scope:       scope,
		Public:      !s.HasAttribute("private"),
		Type:        typ,
		Readonly:    s.Readonly,
	}
	a.ctx.Main.Add(e)
	a.out.decls[s] = e
}

// evalClass 推断字段类型，并把方法和构造方法的函数体排入待分析队列
func (a *Analyzer) evalClass(s *parser.ClassDecl) {
	class := a.out.decls[s]
	a.evalFields(class, s.Fields)

	ctors := 0
	for _, c := range s.Constructors {
		if a.skip[c] {
			continue
		}
		c, info := c, class.Class.Constructors[ctors]
		ctors++
		a.pending = append(a.pending, func() { a.analyzeConstructor(c, info) })
	}
	for _, m := range s.Methods {
		if fd := a.funcs[a.out.decls[m]]; fd != nil && !a.skip[m] {
			a.pending = append(a.pending, func() { a.analyzeFunc(fd) })
		}
	}
}

func (a *Analyzer) evalInterface(s *parser.InterfaceDecl) {
	a.evalFields(a.out.decls[s], s.Fields)
}

func (a *Analyzer) evalFields(class *symbol.Entry, fields []*parser.VarDecl) {
	for _, f := range fields {
		e := a.out.decls[f]
		if e == nil {
			continue
		}
		if f.Value == nil {
			if f.Type == nil {
				a.errorAtToken(f.NameToken, i18n.ErrCannotDeduceType, f.Name)
			}
			continue
		}
		t := a.evalExpr(f.Value, class.Inner)
		switch {
		case t == nil:
		case e.Type == nil:
			e.Type = t
		case !e.Type.Match(t):
			a.errorAt(f.Value, i18n.ErrTypeMismatch, e.Type.String(), t.String())
		}
	}
}

// declareParams 把参数登记为函数作用域中的变量
func (a *Analyzer) declareParams(params []*parser.Param, info *symbol.FuncInfo, inner *parser.Scope) {
	for i, p := range params {
		e := &symbol.Entry{
			Name:        p.Name,
			EmittedName: p.Name,
			Kind:        symbol.EntryVar,
			Scope:       inner,
			Type:        info.Params[i].Type,
		}
		if !a.ctx.Main.Add(e) {
			a.errorAtToken(p.Token, i18n.ErrDuplicateSymbol, p.Name)
		}
	}
}

// analyzeFunc 分析函数体并确定返回类型：
// 声明了返回类型时逐个检查 return，否则取第一个 return 的类型，没有 return 为 Void
func (a *Analyzer) analyzeFunc(fd *funcDecl) {
	if fd.state != funcPending {
		return
	}
	fd.state = funcActive
	d := fd.decl
	f := &frame{name: d.Name, prev: a.fn}
	if d.Return != nil {
		f.declared = fd.entry.Func.Return
	}

	a.fn = f
	a.declareParams(d.Params, fd.entry.Func, d.Inner)
	a.evalBlock(d.Body.Statements)
	a.fn = f.prev

	if f.declared == nil {
		fd.entry.Func.Return = parser.VoidType
		if f.first != nil {
			fd.entry.Func.Return = f.first
		}
	} else if !f.returned && !f.declared.Is(parser.VoidType) && !f.declared.Is(parser.AnyType) {
		a.errorAt(d, i18n.ErrReturnMismatch, d.Name, f.declared.String(), parser.VoidType.String())
	}
	fd.state = funcDone
}

func (a *Analyzer) analyzeConstructor(c *parser.ConstructorDecl, info *symbol.FuncInfo) {
	f := &frame{name: "new", declared: parser.VoidType, ctor: true, prev: a.fn}
	a.fn = f
	a.declareParams(c.Params, info, c.Inner)
	a.evalBlock(c.Body.Statements)
	a.fn = f.prev
}

// ensureReturn 返回函数的返回类型，需要推断时先分析其函数体。
// 在自身函数体内调用一个尚未推断出返回类型的函数时无法确定类型。
func (a *Analyzer) ensureReturn(n parser.Node, e *symbol.Entry) *parser.Type {
	if e.Func.Return != nil {
		return e.Func.Return
	}
	fd := a.funcs[e]
	if fd == nil {
		return parser.VoidType
	}
	if fd.state == funcActive {
		a.errorAt(n, i18n.ErrCannotDeduceType, e.Name)
		return nil
	}
	a.analyzeFunc(fd)
	return e.Func.Return
}
