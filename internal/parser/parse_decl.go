package parser

import (
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/lexer"
)

// newDecl 以当前 token 和当前作用域创建声明公共部分
func (p *Parser) newDecl() Decl {
	return Decl{Span: Span{Token: p.curToken}, Scope: p.scope}
}

// parseImportDecl 解析 import Name
func (p *Parser) parseImportDecl() *ImportDecl {
	decl := &ImportDecl{Decl: p.newDecl()}
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	decl.Module = p.curToken.Literal
	decl.End = p.curToken.Pos
	return decl
}

// parseScopeDecl 解析 scope Name { ... }
func (p *Parser) parseScopeDecl() *ScopeDecl {
	decl := &ScopeDecl{Decl: p.newDecl()}
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal
	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	decl.Inner = p.newScope(decl.Name, ScopeNamespace)
	decl.Body = p.parseBlockStmt(decl.Inner)
	if decl.Body == nil {
		return nil
	}
	decl.End = p.curToken.Pos
	return decl
}

// parseVarDecl 解析 decl [imut] name[:Type] [= value]
func (p *Parser) parseVarDecl() *VarDecl {
	decl := &VarDecl{Decl: p.newDecl()}
	if p.peekTokenIs(lexer.TOKEN_IMUT) {
		p.nextToken()
		decl.Readonly = true
	}
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal
	decl.NameToken = p.curToken

	if p.peekTokenIs(lexer.TOKEN_COLON) {
		p.nextToken()
		p.nextToken()
		if decl.Type = p.parseType(); decl.Type == nil {
			return nil
		}
	}
	if p.peekTokenIs(lexer.TOKEN_ASSIGN) {
		p.nextToken()
		p.nextToken()
		if decl.Value = p.parseExpression(LOWEST); decl.Value == nil {
			return nil
		}
	}
	decl.End = p.curToken.Pos
	return decl
}

// parseGenerics 解析可选的 <T, U>
func (p *Parser) parseGenerics() ([]string, bool) {
	if !p.peekTokenIs(lexer.TOKEN_LT) {
		return nil, true
	}
	p.nextToken()
	var names []string
	for {
		if !p.expectPeek(lexer.TOKEN_IDENT) {
			return nil, false
		}
		names = append(names, p.curToken.Literal)
		if p.peekTokenIs(lexer.TOKEN_COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(lexer.TOKEN_GT) {
			return nil, false
		}
		return names, true
	}
}

// parseParams 解析 (name:Type, ...)，curToken 为 (，返回时停在 )
func (p *Parser) parseParams() ([]*Param, bool) {
	params := []*Param{}
	if p.peekTokenIs(lexer.TOKEN_RPAREN) {
		p.nextToken()
		return params, true
	}
	for {
		if !p.expectPeek(lexer.TOKEN_IDENT) {
			return nil, false
		}
		param := &Param{Token: p.curToken, Name: p.curToken.Literal}
		if !p.expectPeek(lexer.TOKEN_COLON) {
			return nil, false
		}
		p.nextToken()
		if param.Type = p.parseType(); param.Type == nil {
			return nil, false
		}
		params = append(params, param)

		if p.peekTokenIs(lexer.TOKEN_COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(lexer.TOKEN_RPAREN) {
			return nil, false
		}
		return params, true
	}
}

// parseFuncDecl 解析函数声明；signature 为 true 时只解析签名（接口方法）
func (p *Parser) parseFuncDecl(signature bool) *FuncDecl {
	decl := &FuncDecl{Decl: p.newDecl()}
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal

	generics, ok := p.parseGenerics()
	if !ok {
		return nil
	}
	decl.Generics = generics
	p.generics = append(p.generics, generics)
	defer func() { p.generics = p.generics[:len(p.generics)-1] }()

	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}
	if decl.Params, ok = p.parseParams(); !ok {
		return nil
	}

	// 返回类型可省略
	if p.peekTokenIs(lexer.TOKEN_IDENT) || p.peekTokenIs(lexer.TOKEN_LPAREN) {
		p.nextToken()
		if decl.Return = p.parseType(); decl.Return == nil {
			return nil
		}
	}

	decl.Inner = p.newScope(decl.Name, ScopeFunction)
	if signature {
		if p.peekTokenIs(lexer.TOKEN_LBRACE) {
			p.errorAt(p.peekToken, i18n.ErrUnexpectedToken, p.peekToken.Describe())
			return nil
		}
		decl.End = p.curToken.Pos
		return decl
	}

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	if decl.Body = p.parseBlockStmt(decl.Inner); decl.Body == nil {
		return nil
	}
	decl.End = p.curToken.Pos
	return decl
}

// parseConstructorDecl 解析类体内的 new(params) { ... }
func (p *Parser) parseConstructorDecl() *ConstructorDecl {
	decl := &ConstructorDecl{Decl: p.newDecl()}
	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}
	var ok bool
	if decl.Params, ok = p.parseParams(); !ok {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	decl.Inner = p.newScope("new", ScopeFunction)
	if decl.Body = p.parseBlockStmt(decl.Inner); decl.Body == nil {
		return nil
	}
	decl.End = p.curToken.Pos
	return decl
}

// parseClassDecl 解析 class Name[<T>] { ... }
func (p *Parser) parseClassDecl() *ClassDecl {
	decl := &ClassDecl{Decl: p.newDecl()}
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal

	generics, ok := p.parseGenerics()
	if !ok {
		return nil
	}
	decl.Generics = generics
	p.generics = append(p.generics, generics)
	defer func() { p.generics = p.generics[:len(p.generics)-1] }()

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	decl.Inner = p.newScope(decl.Name, ScopeClass)
	ok = p.parseMembers(decl.Inner, false, func(member Statement) bool {
		switch m := member.(type) {
		case *VarDecl:
			decl.Fields = append(decl.Fields, m)
		case *FuncDecl:
			decl.Methods = append(decl.Methods, m)
		case *ConstructorDecl:
			decl.Constructors = append(decl.Constructors, m)
		default:
			return false
		}
		return true
	})
	if !ok {
		return nil
	}
	decl.End = p.curToken.Pos
	return decl
}

// parseInterfaceDecl 解析 interface Name { decl ...; func sig(...) Ret }
func (p *Parser) parseInterfaceDecl() *InterfaceDecl {
	decl := &InterfaceDecl{Decl: p.newDecl()}
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal

	generics, ok := p.parseGenerics()
	if !ok {
		return nil
	}
	decl.Generics = generics
	p.generics = append(p.generics, generics)
	defer func() { p.generics = p.generics[:len(p.generics)-1] }()

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	decl.Inner = p.newScope(decl.Name, ScopeClass)
	ok = p.parseMembers(decl.Inner, true, func(member Statement) bool {
		switch m := member.(type) {
		case *VarDecl:
			decl.Fields = append(decl.Fields, m)
		case *FuncDecl:
			if m.Body != nil {
				return false
			}
			decl.Methods = append(decl.Methods, m)
		default:
			return false
		}
		return true
	})
	if !ok {
		return nil
	}
	decl.End = p.curToken.Pos
	return decl
}

// parseMembers 解析类或接口体。curToken 为 {，返回时停在 }。
// add 返回 false 表示该成员不允许出现在此处。
func (p *Parser) parseMembers(inner *Scope, iface bool, add func(Statement) bool) bool {
	open := p.curToken

	saved := p.scope
	p.scope = inner
	defer func() { p.scope = saved }()

	p.nextToken()
	for !p.curTokenIs(lexer.TOKEN_RBRACE) {
		if p.curTokenIs(lexer.TOKEN_EOF) {
			p.errorAt(open, i18n.ErrUnterminatedBlock)
			return false
		}
		if p.curTokenIs(lexer.TOKEN_SEMICOLON) {
			p.nextToken()
			continue
		}

		start := p.curToken
		comments := p.leading[p.pos]
		member := p.parseMember(iface)
		if member == nil {
			p.synchronize()
		} else {
			member.Base().Comments = comments
			if !add(member) {
				p.errorAt(start, i18n.ErrClassMember, start.Describe())
			}
		}
		p.nextToken()
	}
	return true
}

// parseMember 解析一个成员，只接受 decl、func 以及类中的 new
func (p *Parser) parseMember(iface bool) Statement {
	attrs, ok := p.parseAttributes()
	if !ok {
		return nil
	}
	var member Statement
	switch p.curToken.Type {
	case lexer.TOKEN_DECL:
		if d := p.parseVarDecl(); d != nil {
			member = d
		}
	case lexer.TOKEN_FUNC:
		if d := p.parseFuncDecl(iface); d != nil {
			member = d
		}
	case lexer.TOKEN_NEW:
		if iface {
			p.errorAt(p.curToken, i18n.ErrClassMember, p.curToken.Describe())
			return nil
		}
		if d := p.parseConstructorDecl(); d != nil {
			member = d
		}
	default:
		p.errorAt(p.curToken, i18n.ErrClassMember, p.curToken.Describe())
		return nil
	}
	if member != nil {
		member.Base().Attributes = attrs
	}
	return member
}

// parseCondDecl 解析 if (c) {...} elif (c) {...} else {...}
func (p *Parser) parseCondDecl() *CondDecl {
	decl := &CondDecl{Decl: p.newDecl()}

	branch := p.parseCondBranch("if")
	if branch == nil {
		return nil
	}
	decl.Branches = append(decl.Branches, branch)

	for p.peekTokenIs(lexer.TOKEN_ELIF) {
		p.nextToken()
		if branch = p.parseCondBranch("elif"); branch == nil {
			return nil
		}
		decl.Branches = append(decl.Branches, branch)
	}

	if p.peekTokenIs(lexer.TOKEN_ELSE) {
		p.nextToken()
		branch = &CondBranch{Token: p.curToken}
		if !p.expectPeek(lexer.TOKEN_LBRACE) {
			return nil
		}
		if branch.Body = p.parseBlockStmt(p.newScope("else", ScopeNeutral)); branch.Body == nil {
			return nil
		}
		decl.Branches = append(decl.Branches, branch)
	}

	decl.End = p.curToken.Pos
	return decl
}

// parseCondBranch 解析 (cond) { ... }，curToken 为 if 或 elif
func (p *Parser) parseCondBranch(name string) *CondBranch {
	branch := &CondBranch{Token: p.curToken}
	cond, body := p.parseGuardedBlock(name)
	if body == nil {
		return nil
	}
	branch.Cond = cond
	branch.Body = body
	return branch
}

// parseGuardedBlock 解析 (cond) { ... }
func (p *Parser) parseGuardedBlock(name string) (Expression, *BlockStmt) {
	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil, nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil, nil
	}
	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil, nil
	}
	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil, nil
	}
	body := p.parseBlockStmt(p.newScope(name, ScopeNeutral))
	return cond, body
}

// parseLoopDecl 解析 while (c) { ... } 和 for (c) { ... }
func (p *Parser) parseLoopDecl() Statement {
	base := p.newDecl()
	isWhile := p.curTokenIs(lexer.TOKEN_WHILE)
	name := "for"
	if isWhile {
		name = "while"
	}

	cond, body := p.parseGuardedBlock(name)
	if body == nil {
		return nil
	}
	base.End = p.curToken.Pos
	if isWhile {
		return &WhileDecl{Decl: base, Cond: cond, Body: body}
	}
	return &ForDecl{Decl: base, Cond: cond, Body: body}
}

// parseReturnDecl 解析 return [value]，值必须与 return 位于同一行
func (p *Parser) parseReturnDecl() *ReturnDecl {
	decl := &ReturnDecl{Decl: p.newDecl()}
	next := p.peekToken
	if next.Pos.Line == p.curToken.Pos.Line && !isStatementStart(next.Type) {
		switch next.Type {
		case lexer.TOKEN_RBRACE, lexer.TOKEN_SEMICOLON, lexer.TOKEN_EOF:
		default:
			p.nextToken()
			if decl.Value = p.parseExpression(LOWEST); decl.Value == nil {
				return nil
			}
		}
	}
	decl.End = p.curToken.Pos
	return decl
}

// parseSecureDecl 解析 secure (decl x = expr) catch [(e:Type)] { ... }
func (p *Parser) parseSecureDecl() *SecureDecl {
	decl := &SecureDecl{Decl: p.newDecl()}
	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}
	if !p.peekTokenIs(lexer.TOKEN_DECL) {
		p.errorAt(p.peekToken, i18n.ErrSecureNeedsDecl)
		return nil
	}
	p.nextToken()
	decl.Guarded = p.parseVarDecl()
	if decl.Guarded == nil {
		return nil
	}
	if decl.Guarded.Value == nil {
		p.errorAt(decl.Guarded.Token, i18n.ErrSecureNeedsDecl)
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_CATCH) {
		return nil
	}

	if p.peekTokenIs(lexer.TOKEN_LPAREN) {
		p.nextToken()
		if !p.expectPeek(lexer.TOKEN_IDENT) {
			return nil
		}
		decl.CatchName = p.curToken.Literal
		if !p.expectPeek(lexer.TOKEN_COLON) {
			return nil
		}
		p.nextToken()
		if decl.CatchType = p.parseType(); decl.CatchType == nil {
			return nil
		}
		if !p.expectPeek(lexer.TOKEN_RPAREN) {
			return nil
		}
	}

	if !p.expectPeek(lexer.TOKEN_LBRACE) {
		return nil
	}
	if decl.Catch = p.parseBlockStmt(p.newScope("catch", ScopeNeutral)); decl.Catch == nil {
		return nil
	}
	decl.End = p.curToken.Pos
	return decl
}
