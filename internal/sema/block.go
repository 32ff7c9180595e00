package sema

import (
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// evalBlock 分析一个块：先提升声明，再依次分析语句，
// 最后分析块中排队的函数体。返回块是否无条件 return。
func (a *Analyzer) evalBlock(stmts []parser.Statement) bool {
	a.hoist(stmts)
	start := len(a.pending)
	terminated := a.evalStatements(stmts)
	for len(a.pending) > start {
		next := a.pending[start]
		a.pending = append(a.pending[:start], a.pending[start+1:]...)
		next()
	}
	return terminated
}

// evalStatements return 之后的第一条语句报告一次不可达警告。
// 不可达的语句不再分析，也不生成代码；已提升的声明仍照常分析。
func (a *Analyzer) evalStatements(stmts []parser.Statement) bool {
	terminated := false
	for i, stmt := range stmts {
		if !terminated {
			terminated = a.evalStmt(stmt)
			continue
		}
		if !a.out.unreachable[stmts[i-1]] {
			a.warnAt(stmt, i18n.WarnUnreachableCode)
		}
		a.out.unreachable[stmt] = true
		if isDeclaration(stmt) {
			a.evalStmt(stmt)
		}
	}
	return terminated
}

// isDeclaration 会被提升、可以在前面引用的声明
func isDeclaration(stmt parser.Statement) bool {
	switch stmt.(type) {
	case *parser.FuncDecl, *parser.ClassDecl, *parser.InterfaceDecl:
		return true
	}
	return false
}

// evalStmt 分析一条语句，返回它是否无条件 return
func (a *Analyzer) evalStmt(stmt parser.Statement) bool {
	if a.skip[stmt] {
		return false
	}
	switch s := stmt.(type) {
	case *parser.ImportDecl:
		if !s.Scope.IsGlobal() {
			a.evalImport(s)
		}
	case *parser.ScopeDecl:
		a.evalStatements(s.Body.Statements)
	case *parser.VarDecl:
		a.evalVarDecl(s)
	case *parser.FuncDecl:
		if fd := a.funcs[a.out.decls[s]]; fd != nil && fd.state == funcPending {
			a.pending = append(a.pending, func() { a.analyzeFunc(fd) })
		}
	case *parser.ClassDecl:
		a.evalClass(s)
	case *parser.InterfaceDecl:
		a.evalInterface(s)
	case *parser.CondDecl:
		return a.evalCond(s)
	case *parser.WhileDecl:
		a.evalLoop(s.Scope, s.Cond, s.Body)
	case *parser.ForDecl:
		a.evalLoop(s.Scope, s.Cond, s.Body)
	case *parser.ReturnDecl:
		a.evalReturn(s)
		return true
	case *parser.SecureDecl:
		a.evalSecure(s)
	case *parser.ExprStmt:
		a.evalExprStmt(s)
	case *parser.ConstructorDecl:
		a.errorAt(s, i18n.ErrDeclNotAllowed, "new", s.Scope.String())
	}
	return false
}

// evalCondition 条件必须是 Bool
func (a *Analyzer) evalCondition(cond parser.Expression, scope *parser.Scope) {
	t := a.evalExpr(cond, scope)
	if t != nil && !parser.BoolType.Match(t) {
		a.errorAt(cond, i18n.ErrConditionNotBool, t.String())
	}
}

// evalCond 只有带 else 且每个分支都 return 时整个链才算无条件 return
func (a *Analyzer) evalCond(s *parser.CondDecl) bool {
	all, hasElse := true, false
	for _, b := range s.Branches {
		if b.Cond == nil {
			hasElse = true
		} else {
			a.evalCondition(b.Cond, s.Scope)
		}
		if !a.evalBlock(b.Body.Statements) {
			all = false
		}
	}
	return all && hasElse
}

func (a *Analyzer) evalLoop(scope *parser.Scope, cond parser.Expression, body *parser.BlockStmt) {
	a.evalCondition(cond, scope)
	a.evalBlock(body.Statements)
}

func (a *Analyzer) evalReturn(s *parser.ReturnDecl) {
	if a.fn == nil {
		a.errorAt(s, i18n.ErrReturnOutsideFunc)
		return
	}
	f := a.fn
	f.returned = true

	t := parser.VoidType
	if s.Value != nil {
		if t = a.evalExpr(s.Value, s.Scope); t == nil {
			return
		}
	}
	switch {
	case f.declared != nil:
		if !f.declared.Match(t) {
			a.errorAt(s, i18n.ErrReturnMismatch, f.name, f.declared.String(), t.String())
		}
	case f.first == nil:
		f.first = t
	case !f.first.Match(t) && !t.Match(f.first):
		a.errorAt(s, i18n.ErrInconsistentReturn, f.first.String(), t.String())
	}
}

// evalSecure 受保护的变量声明在当前作用域，catch 变量是 catch 块中的 String
func (a *Analyzer) evalSecure(s *parser.SecureDecl) {
	a.evalVarDecl(s.Guarded)
	if s.Catch == nil {
		return
	}
	if s.CatchName != "" {
		t := parser.StringType
		if s.CatchType != nil {
			if t = a.resolveType(s, s.CatchType, s.Scope); t == nil {
				t = parser.AnyType
			}
		}
		a.declareCatch(s, t)
	}
	a.evalBlock(s.Catch.Statements)
}

func (a *Analyzer) declareCatch(s *parser.SecureDecl, t *parser.Type) {
	e := &symbol.Entry{
		Name:        s.CatchName,
		EmittedName: s.CatchName,
		Kind:        symbol.EntryVar,
		Scope:       s.Catch.Scope,
		Type:        t,
	}
	a.ctx.Main.Add(e)
	a.out.decls[s] = e
}

// evalExprStmt 丢弃非 Void 调用结果时给出警告
func (a *Analyzer) evalExprStmt(s *parser.ExprStmt) {
	t := a.evalExpr(s.Expr, s.Scope)
	call, ok := s.Expr.(*parser.CallExpr)
	if !ok || t == nil || t.Is(parser.VoidType) {
		return
	}
	a.warnAt(s, i18n.WarnResultDiscarded, parser.Format(call.Callee), t.String())
}
