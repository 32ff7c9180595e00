package parser

import (
	"strconv"
	"strings"

	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/lexer"
)

// 运算符优先级
const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -=
	OR          // ||
	AND         // &&
	BITOR       // |
	BITAND      // &
	EQUALS      // == !=
	LESSGREATER // > < >= <= is
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -X !X
	CALL        // myFunc(X)
	INDEX       // array[index] obj.member
)

var precedences = map[lexer.TokenType]int{
	lexer.TOKEN_ASSIGN:          ASSIGN,
	lexer.TOKEN_PLUS_ASSIGN:     ASSIGN,
	lexer.TOKEN_MINUS_ASSIGN:    ASSIGN,
	lexer.TOKEN_ASTERISK_ASSIGN: ASSIGN,
	lexer.TOKEN_SLASH_ASSIGN:    ASSIGN,
	lexer.TOKEN_PERCENT_ASSIGN:  ASSIGN,
	lexer.TOKEN_OR:              OR,
	lexer.TOKEN_AND:             AND,
	lexer.TOKEN_BIT_OR:          BITOR,
	lexer.TOKEN_BIT_AND:         BITAND,
	lexer.TOKEN_EQ:              EQUALS,
	lexer.TOKEN_NOT_EQ:          EQUALS,
	lexer.TOKEN_LT:              LESSGREATER,
	lexer.TOKEN_GT:              LESSGREATER,
	lexer.TOKEN_LT_EQ:           LESSGREATER,
	lexer.TOKEN_GT_EQ:           LESSGREATER,
	lexer.TOKEN_IS:              LESSGREATER,
	lexer.TOKEN_PLUS:            SUM,
	lexer.TOKEN_MINUS:           SUM,
	lexer.TOKEN_ASTERISK:        PRODUCT,
	lexer.TOKEN_SLASH:           PRODUCT,
	lexer.TOKEN_PERCENT:         PRODUCT,
	lexer.TOKEN_LPAREN:          CALL,
	lexer.TOKEN_LBRACKET:        INDEX,
	lexer.TOKEN_DOT:             INDEX,
}

// peekPrecedence 获取下一个 token 的优先级
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

// curPrecedence 获取当前 token 的优先级
func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// parseExpression 解析表达式，返回时 curToken 停在表达式的最后一个 token
func (p *Parser) parseExpression(precedence int) Expression {
	var left Expression

	switch p.curToken.Type {
	case lexer.TOKEN_IDENT:
		left = &Identifier{Span: Span{Token: p.curToken, End: p.curToken.Pos}, Value: p.curToken.Literal}
	case lexer.TOKEN_INT, lexer.TOKEN_FLOAT, lexer.TOKEN_STRING, lexer.TOKEN_TRUE, lexer.TOKEN_FALSE:
		left = p.parseLiteral()
	case lexer.TOKEN_REGEX:
		left = p.parseRegexLiteral()
	case lexer.TOKEN_LPAREN:
		left = p.parseGroupedExpression()
	case lexer.TOKEN_LBRACKET:
		left = p.parseArrayLiteral()
	case lexer.TOKEN_LBRACE:
		left = p.parseDictLiteral()
	case lexer.TOKEN_MINUS, lexer.TOKEN_PLUS, lexer.TOKEN_NOT:
		left = p.parsePrefixExpression()
	case lexer.TOKEN_NEW:
		left = p.parseNewExpression()
	case lexer.TOKEN_ILLEGAL:
		// 词法分析已经报告过
		return nil
	default:
		p.errorAt(p.curToken, i18n.ErrExpectedExpr, p.curToken.Describe())
		return nil
	}
	if left == nil {
		return nil
	}

	// 解析中缀表达式
	for !p.peekTokenIs(lexer.TOKEN_SEMICOLON) && precedence < p.peekPrecedence() {
		switch p.peekToken.Type {
		case lexer.TOKEN_PLUS, lexer.TOKEN_MINUS, lexer.TOKEN_ASTERISK, lexer.TOKEN_SLASH,
			lexer.TOKEN_PERCENT, lexer.TOKEN_EQ, lexer.TOKEN_NOT_EQ, lexer.TOKEN_LT,
			lexer.TOKEN_GT, lexer.TOKEN_LT_EQ, lexer.TOKEN_GT_EQ, lexer.TOKEN_AND,
			lexer.TOKEN_OR, lexer.TOKEN_BIT_AND, lexer.TOKEN_BIT_OR:
			p.nextToken()
			left = p.parseInfixExpression(left)
		case lexer.TOKEN_LPAREN:
			// 换行后的 ( 开始新的语句
			if p.peekToken.Pos.Line != p.curToken.Pos.Line {
				return left
			}
			p.nextToken()
			left = p.parseCallExpression(left)
		case lexer.TOKEN_LBRACKET:
			if p.peekToken.Pos.Line != p.curToken.Pos.Line {
				return left
			}
			p.nextToken()
			left = p.parseIndexExpression(left)
		case lexer.TOKEN_DOT:
			p.nextToken()
			left = p.parseMemberExpression(left)
		case lexer.TOKEN_IS:
			p.nextToken()
			left = p.parseIsExpression(left)
		case lexer.TOKEN_ASSIGN, lexer.TOKEN_PLUS_ASSIGN, lexer.TOKEN_MINUS_ASSIGN,
			lexer.TOKEN_ASTERISK_ASSIGN, lexer.TOKEN_SLASH_ASSIGN, lexer.TOKEN_PERCENT_ASSIGN:
			p.nextToken()
			left = p.parseAssignExpression(left)
		default:
			return left
		}
		if left == nil {
			return nil
		}
	}

	return left
}

// startOf 返回表达式的起始 token
func startOf(expr Expression) lexer.Token {
	switch e := expr.(type) {
	case *Identifier:
		return e.Token
	case *LiteralExpr:
		return e.Token
	case *RegexLiteral:
		return e.Token
	case *CallExpr:
		return e.Token
	case *ArrayLiteral:
		return e.Token
	case *DictLiteral:
		return e.Token
	case *MemberExpr:
		return e.Token
	case *IndexExpr:
		return e.Token
	case *UnaryExpr:
		return e.Token
	case *BinaryExpr:
		return e.Token
	case *AssignExpr:
		return e.Token
	case *IsExpr:
		return e.Token
	}
	return lexer.Token{}
}

// parseLiteral 解析字符串、布尔和数字字面量
func (p *Parser) parseLiteral() Expression {
	lit := &LiteralExpr{Span: Span{Token: p.curToken, End: p.curToken.Pos}}
	text := p.curToken.Literal
	switch p.curToken.Type {
	case lexer.TOKEN_STRING:
		lit.Kind = LitString
		lit.Str = text[1 : len(text)-1]
	case lexer.TOKEN_TRUE, lexer.TOKEN_FALSE:
		lit.Kind = LitBool
		lit.Bool = p.curTokenIs(lexer.TOKEN_TRUE)
	case lexer.TOKEN_INT:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			p.errorAt(p.curToken, i18n.ErrUnexpectedToken, p.curToken.Describe())
			return nil
		}
		lit.Kind = LitInt
		lit.Int = v
	case lexer.TOKEN_FLOAT:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.errorAt(p.curToken, i18n.ErrUnexpectedToken, p.curToken.Describe())
			return nil
		}
		lit.Kind = LitFloat
		lit.Float = v
	}
	return lit
}

// parseRegexLiteral 拆分 /pattern/flags
func (p *Parser) parseRegexLiteral() Expression {
	text := p.curToken.Literal
	end := strings.LastIndexByte(text, '/')
	return &RegexLiteral{
		Span:    Span{Token: p.curToken, End: p.curToken.Pos},
		Pattern: text[1:end],
		Flags:   text[end+1:],
	}
}

// parseGroupedExpression 解析括号表达式
func (p *Parser) parseGroupedExpression() Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_RPAREN) {
		return nil
	}
	return expr
}

// parsePrefixExpression 解析前缀表达式
func (p *Parser) parsePrefixExpression() Expression {
	expr := &UnaryExpr{
		Span: Span{Token: p.curToken},
		Op:   p.curToken.Type,
	}
	p.nextToken()
	if expr.Operand = p.parseExpression(PREFIX); expr.Operand == nil {
		return nil
	}
	expr.End = p.curToken.Pos
	return expr
}

// parseInfixExpression 解析中缀表达式
func (p *Parser) parseInfixExpression(left Expression) Expression {
	expr := &BinaryExpr{
		Span: Span{Token: startOf(left)},
		Op:   p.curToken.Type,
		Left: left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	if expr.Right = p.parseExpression(precedence); expr.Right == nil {
		return nil
	}
	expr.End = p.curToken.Pos
	return expr
}

// parseAssignExpression 解析赋值，右结合
func (p *Parser) parseAssignExpression(target Expression) Expression {
	switch target.(type) {
	case *Identifier, *MemberExpr, *IndexExpr:
	default:
		p.errorAt(p.curToken, i18n.ErrNotAssignable)
		return nil
	}
	expr := &AssignExpr{
		Span:   Span{Token: startOf(target)},
		Op:     p.curToken.Type,
		Target: target,
	}
	p.nextToken()
	if expr.Value = p.parseExpression(ASSIGN - 1); expr.Value == nil {
		return nil
	}
	expr.End = p.curToken.Pos
	return expr
}

// parseCallExpression 解析函数调用表达式
func (p *Parser) parseCallExpression(callee Expression) Expression {
	expr := &CallExpr{Span: Span{Token: startOf(callee)}, Callee: callee}
	args, ok := p.parseExpressionList(lexer.TOKEN_RPAREN)
	if !ok {
		return nil
	}
	expr.Args = args
	expr.End = p.curToken.Pos
	return expr
}

// parseExpressionList 解析以 end 结尾、逗号分隔的表达式列表，curToken 为开头的定界符
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]Expression, bool) {
	list := []Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	for {
		p.nextToken()
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
		if !p.peekTokenIs(lexer.TOKEN_COMMA) {
			break
		}
		p.nextToken()
		// 允许结尾多一个逗号
		if p.peekTokenIs(end) {
			break
		}
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

// parseIndexExpression 解析索引表达式
func (p *Parser) parseIndexExpression(object Expression) Expression {
	expr := &IndexExpr{Span: Span{Token: startOf(object)}, Object: object}
	p.nextToken()
	if expr.Index = p.parseExpression(LOWEST); expr.Index == nil {
		return nil
	}
	if !p.expectPeek(lexer.TOKEN_RBRACKET) {
		return nil
	}
	expr.End = p.curToken.Pos
	return expr
}

// parseMemberExpression 解析 object.member
func (p *Parser) parseMemberExpression(object Expression) Expression {
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	member := &Identifier{Span: Span{Token: p.curToken, End: p.curToken.Pos}, Value: p.curToken.Literal}
	return &MemberExpr{
		Span:   Span{Token: startOf(object), End: p.curToken.Pos},
		Object: object,
		Member: member,
	}
}

// parseIsExpression 解析 value is Type
func (p *Parser) parseIsExpression(value Expression) Expression {
	expr := &IsExpr{Span: Span{Token: startOf(value)}, Value: value}
	p.nextToken()
	if expr.Type = p.parseType(); expr.Type == nil {
		return nil
	}
	expr.End = p.curToken.Pos
	return expr
}

// parseArrayLiteral 解析 [a, b, c]
func (p *Parser) parseArrayLiteral() Expression {
	expr := &ArrayLiteral{Span: Span{Token: p.curToken}}
	elems, ok := p.parseExpressionList(lexer.TOKEN_RBRACKET)
	if !ok {
		return nil
	}
	expr.Elements = elems
	expr.End = p.curToken.Pos
	return expr
}

// parseDictLiteral 解析 {key: value, ...}
func (p *Parser) parseDictLiteral() Expression {
	expr := &DictLiteral{Span: Span{Token: p.curToken}}
	for !p.peekTokenIs(lexer.TOKEN_RBRACE) {
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil
		}
		if !p.expectPeek(lexer.TOKEN_COLON) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		expr.Keys = append(expr.Keys, key)
		expr.Values = append(expr.Values, value)

		if !p.peekTokenIs(lexer.TOKEN_COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.TOKEN_RBRACE) {
		return nil
	}
	expr.End = p.curToken.Pos
	return expr
}

// parseNewExpression 解析 new Name(args) 或 new Scope.Name(args)
func (p *Parser) parseNewExpression() Expression {
	start := p.curToken
	if !p.expectPeek(lexer.TOKEN_IDENT) {
		return nil
	}
	var callee Expression = &Identifier{Span: Span{Token: p.curToken, End: p.curToken.Pos}, Value: p.curToken.Literal}
	for p.peekTokenIs(lexer.TOKEN_DOT) {
		p.nextToken()
		if callee = p.parseMemberExpression(callee); callee == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.TOKEN_LPAREN) {
		return nil
	}
	args, ok := p.parseExpressionList(lexer.TOKEN_RPAREN)
	if !ok {
		return nil
	}
	return &CallExpr{
		Span:   Span{Token: start, End: p.curToken.Pos},
		Callee: callee,
		Args:   args,
		New:    true,
	}
}
