package parser

import (
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/lexer"
)

// Parser 语法分析器
type Parser struct {
	tokens  []lexer.Token
	leading map[int][]*Comment // token 下标 -> 紧邻其前的注释
	pos     int

	curToken  lexer.Token
	peekToken lexer.Token

	sink   diag.Sink
	errors int

	global   *Scope
	scope    *Scope     // 当前作用域
	generics [][]string // 正在解析的泛型形参
	scopeSeq int
}

// New 基于 token 列表创建语法分析器，注释 token 会被挂到其后的语句上
func New(tokens []lexer.Token, sink diag.Sink) *Parser {
	if sink == nil {
		sink = diag.Discard
	}
	p := &Parser{leading: make(map[int][]*Comment), sink: sink}
	var pending []*Comment
	for _, tok := range tokens {
		if tok.Type == lexer.TOKEN_COMMENT {
			pending = append(pending, &Comment{Token: tok, Text: tok.Literal})
			continue
		}
		if len(pending) > 0 {
			p.leading[len(p.tokens)] = pending
			pending = nil
		}
		p.tokens = append(p.tokens, tok)
	}
	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Type != lexer.TOKEN_EOF {
		p.tokens = append(p.tokens, lexer.Token{Type: lexer.TOKEN_EOF})
	}

	p.global = NewGlobalScope()
	p.scope = p.global
	p.pos = -1
	p.nextToken()
	return p
}

// ParseSource 词法分析并解析整个源文件
func ParseSource(src string, sink diag.Sink) (*File, int) {
	l := lexer.New(src, sink)
	p := New(l.Tokenize(), sink)
	file := p.ParseFile()
	return file, p.Errors()
}

// Errors 返回语法错误数量
func (p *Parser) Errors() int {
	return p.errors
}

// GlobalScope 返回本次解析的根作用域
func (p *Parser) GlobalScope() *Scope {
	return p.global
}

func (p *Parser) at(i int) lexer.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

// nextToken 前进到下一个 token
func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.at(p.pos)
	p.peekToken = p.at(p.pos + 1)
}

// backup 回退一个 token
func (p *Parser) backup() {
	if p.pos > 0 {
		p.pos--
	}
	p.curToken = p.at(p.pos)
	p.peekToken = p.at(p.pos + 1)
}

// peekN 向前看 n 个 token，peekN(1) 等于 peekToken
func (p *Parser) peekN(n int) lexer.Token {
	return p.at(p.pos + n)
}

// curTokenIs 检查当前 token 类型
func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

// peekTokenIs 检查下一个 token 类型
func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// expectPeek 期望下一个 token 类型并前进
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// peekError 记录期望错误
func (p *Parser) peekError(t lexer.TokenType) {
	key := i18n.ErrExpectedToken
	switch {
	case t == lexer.TOKEN_RBRACE && p.peekTokenIs(lexer.TOKEN_EOF):
		p.errorAt(p.peekToken, i18n.ErrUnterminatedBlock)
		return
	case t == lexer.TOKEN_RPAREN && p.peekTokenIs(lexer.TOKEN_EOF):
		p.errorAt(p.peekToken, i18n.ErrUnterminatedArgs)
		return
	case t == lexer.TOKEN_IDENT:
		p.errorAt(p.peekToken, i18n.ErrExpectedIdent, p.peekToken.Describe())
		return
	}
	p.errorAt(p.peekToken, key, "'"+lexer.TokenTypeName(t)+"'", p.peekToken.Describe())
}

// errorAt 在指定 token 处报告语法错误
func (p *Parser) errorAt(tok lexer.Token, key string, args ...any) {
	p.errors++
	region := diag.Region{
		StartLine: tok.Pos.Line,
		StartCol:  tok.Pos.StartCol,
		EndLine:   tok.Pos.Line,
		EndCol:    tok.Pos.EndCol,
	}
	p.sink.Report(diag.Errorf(diag.PhaseSyntax, &region, key, args...))
}

// newScope 创建当前作用域的子作用域
func (p *Parser) newScope(name string, kind ScopeKind) *Scope {
	p.scopeSeq++
	return NewScope(name, kind, p.scope, p.scopeSeq)
}

// ParseFile 解析整个文件
func (p *Parser) ParseFile() *File {
	file := &File{Global: p.global}
	for {
		stmt := p.NextStatement()
		if stmt == nil {
			break
		}
		file.Statements = append(file.Statements, stmt)
	}
	return file
}

// NextStatement 解析下一条顶层语句，到达文件末尾时返回 nil。
// 解析失败的语句会被跳过，错误已经报告给诊断接收器。
func (p *Parser) NextStatement() Statement {
	for !p.curTokenIs(lexer.TOKEN_EOF) {
		if p.curTokenIs(lexer.TOKEN_SEMICOLON) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(lexer.TOKEN_RBRACE) {
			p.errorAt(p.curToken, i18n.ErrUnexpectedToken, p.curToken.Describe())
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			p.synchronize()
			p.nextToken()
			continue
		}
		p.nextToken()
		return stmt
	}
	return nil
}

// synchronize 出错后跳到语句边界：让 curToken 停在下一条语句之前
func (p *Parser) synchronize() {
	if p.curTokenIs(lexer.TOKEN_RBRACE) {
		// 这个 } 属于外层代码块
		p.backup()
		return
	}
	depth := 0
	for !p.curTokenIs(lexer.TOKEN_EOF) {
		switch p.curToken.Type {
		case lexer.TOKEN_LBRACE:
			depth++
		case lexer.TOKEN_RBRACE:
			if depth > 0 {
				depth--
			}
		case lexer.TOKEN_SEMICOLON:
			if depth == 0 {
				return
			}
		}
		if depth == 0 && (isStatementStart(p.peekToken.Type) ||
			p.peekTokenIs(lexer.TOKEN_RBRACE) || p.peekTokenIs(lexer.TOKEN_EOF)) {
			return
		}
		p.nextToken()
	}
}

func isStatementStart(t lexer.TokenType) bool {
	switch t {
	case lexer.TOKEN_DECL, lexer.TOKEN_IMPORT, lexer.TOKEN_FUNC, lexer.TOKEN_CLASS,
		lexer.TOKEN_INTERFACE, lexer.TOKEN_IF, lexer.TOKEN_WHILE, lexer.TOKEN_FOR,
		lexer.TOKEN_RETURN, lexer.TOKEN_SECURE, lexer.TOKEN_SCOPE, lexer.TOKEN_AT:
		return true
	}
	return false
}

// parseStatement 解析语句，返回时 curToken 停在语句的最后一个 token
func (p *Parser) parseStatement() Statement {
	comments := p.leading[p.pos]
	attrs, ok := p.parseAttributes()
	if !ok {
		return nil
	}

	var stmt Statement
	// 各 parseXxxDecl 失败时返回带类型的 nil，不能直接赋给接口
	switch p.curToken.Type {
	case lexer.TOKEN_IMPORT:
		if d := p.parseImportDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_SCOPE:
		if d := p.parseScopeDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_DECL:
		if d := p.parseVarDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_FUNC:
		if d := p.parseFuncDecl(false); d != nil {
			stmt = d
		}
	case lexer.TOKEN_CLASS:
		if d := p.parseClassDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_INTERFACE:
		if d := p.parseInterfaceDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_IF:
		if d := p.parseCondDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_WHILE, lexer.TOKEN_FOR:
		stmt = p.parseLoopDecl()
	case lexer.TOKEN_RETURN:
		if d := p.parseReturnDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_SECURE:
		if d := p.parseSecureDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_NEW:
		if p.scope.Kind != ScopeClass {
			stmt = p.parseExpressionStatement()
		} else if d := p.parseConstructorDecl(); d != nil {
			stmt = d
		}
	case lexer.TOKEN_TEMPLATE:
		p.errorAt(p.curToken, i18n.ErrTemplateUnsupported)
		return nil
	case lexer.TOKEN_ELIF, lexer.TOKEN_ELSE, lexer.TOKEN_CATCH, lexer.TOKEN_IMUT:
		p.errorAt(p.curToken, i18n.ErrUnexpectedToken, p.curToken.Describe())
		return nil
	default:
		stmt = p.parseExpressionStatement()
	}
	if stmt == nil {
		return nil
	}

	base := stmt.Base()
	base.Comments = comments
	base.Attributes = attrs
	return stmt
}

// parseAttributes 解析声明前的 @name 或 @name(args)
func (p *Parser) parseAttributes() ([]*Attribute, bool) {
	var attrs []*Attribute
	for p.curTokenIs(lexer.TOKEN_AT) {
		attr := &Attribute{Token: p.curToken}
		if !p.expectPeek(lexer.TOKEN_IDENT) {
			return nil, false
		}
		attr.Name = p.curToken.Literal

		if p.peekTokenIs(lexer.TOKEN_LPAREN) {
			p.nextToken()
			if !p.parseAttributeArgs(attr) {
				p.errorAt(p.curToken, i18n.ErrAttributeArgument, attr.Name)
				return nil, false
			}
		}
		attrs = append(attrs, attr)
		p.nextToken()
	}
	return attrs, true
}

// parseAttributeArgs 属性参数只允许字面量和标识符，可带 key=
func (p *Parser) parseAttributeArgs(attr *Attribute) bool {
	p.nextToken()
	for !p.curTokenIs(lexer.TOKEN_RPAREN) {
		arg := &AttributeArg{}
		if p.curTokenIs(lexer.TOKEN_IDENT) && p.peekTokenIs(lexer.TOKEN_ASSIGN) {
			arg.Key = p.curToken.Literal
			p.nextToken()
			p.nextToken()
		}
		switch p.curToken.Type {
		case lexer.TOKEN_STRING, lexer.TOKEN_TRUE, lexer.TOKEN_FALSE,
			lexer.TOKEN_INT, lexer.TOKEN_FLOAT, lexer.TOKEN_IDENT:
			arg.Value = p.parseExpression(PREFIX)
		default:
			return false
		}
		if arg.Value == nil {
			return false
		}
		attr.Args = append(attr.Args, arg)

		p.nextToken()
		if p.curTokenIs(lexer.TOKEN_COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(lexer.TOKEN_RPAREN) {
			return false
		}
	}
	return true
}

// parseBlockStmt 解析 { ... }，curToken 为 {，返回时停在 }
func (p *Parser) parseBlockStmt(scope *Scope) *BlockStmt {
	block := &BlockStmt{Span: Span{Token: p.curToken}, Scope: scope}

	saved := p.scope
	p.scope = scope
	defer func() { p.scope = saved }()

	p.nextToken()
	for !p.curTokenIs(lexer.TOKEN_RBRACE) {
		if p.curTokenIs(lexer.TOKEN_EOF) {
			p.errorAt(block.Token, i18n.ErrUnterminatedBlock)
			return nil
		}
		if p.curTokenIs(lexer.TOKEN_SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.synchronize()
		}
		p.nextToken()
	}
	block.End = p.curToken.Pos
	return block
}

// parseExpressionStatement 解析表达式语句
func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExprStmt{Decl: Decl{Span: Span{Token: p.curToken}, Scope: p.scope}}
	stmt.Expr = p.parseExpression(LOWEST)
	if stmt.Expr == nil {
		return nil
	}
	stmt.End = p.curToken.Pos
	return stmt
}
