package parser

import (
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/lexer"
)

// BuildType 从 token 列表解析一个独立的类型，如 "Array<Int>?"
func BuildType(tokens []lexer.Token) (*Type, bool) {
	p := New(tokens, nil)
	t := p.parseType()
	if t == nil || !p.peekTokenIs(lexer.TOKEN_EOF) {
		return nil, false
	}
	return t, true
}

// parseType 解析类型，curToken 为类型的第一个 token，返回时停在最后一个 token
func (p *Parser) parseType() *Type {
	var t *Type
	switch p.curToken.Type {
	case lexer.TOKEN_LPAREN:
		t = p.parseFunctionType()
	case lexer.TOKEN_IDENT:
		t = p.parseNamedType()
	default:
		p.errorAt(p.curToken, i18n.ErrExpectedType, p.curToken.Describe())
		return nil
	}
	if t == nil {
		return nil
	}
	return p.parseTypeSuffixes(t)
}

// parseNamedType 解析 Name、Scope.Name 和 Name<T1,T2>
func (p *Parser) parseNamedType() *Type {
	name := p.curToken.Literal
	for p.peekTokenIs(lexer.TOKEN_DOT) && p.peekN(2).Type == lexer.TOKEN_IDENT {
		p.nextToken()
		p.nextToken()
		name += "." + p.curToken.Literal
	}

	var params []*Type
	if p.peekTokenIs(lexer.TOKEN_LT) {
		p.nextToken()
		for {
			p.nextToken()
			param := p.parseType()
			if param == nil {
				return nil
			}
			params = append(params, param)
			if p.peekTokenIs(lexer.TOKEN_COMMA) {
				p.nextToken()
				continue
			}
			if !p.expectPeek(lexer.TOKEN_GT) {
				return nil
			}
			break
		}
	}

	if len(params) == 0 {
		if builtin, ok := BuiltinType(name); ok {
			return builtin
		}
		if p.isGenericParam(name) {
			return &Type{Name: name, GenericParam: true}
		}
	}
	return &Type{Name: name, Params: params, Placeholder: !IsBuiltin(name)}
}

// parseFunctionType 解析 (T1,T2) Ret
func (p *Parser) parseFunctionType() *Type {
	var params []*Type
	if p.peekTokenIs(lexer.TOKEN_RPAREN) {
		p.nextToken()
	} else {
		for {
			p.nextToken()
			param := p.parseType()
			if param == nil {
				return nil
			}
			params = append(params, param)
			if p.peekTokenIs(lexer.TOKEN_COMMA) {
				p.nextToken()
				continue
			}
			if !p.expectPeek(lexer.TOKEN_RPAREN) {
				return nil
			}
			break
		}
	}

	ret := VoidType
	if p.peekTokenIs(lexer.TOKEN_IDENT) || p.peekTokenIs(lexer.TOKEN_LPAREN) {
		p.nextToken()
		if ret = p.parseType(); ret == nil {
			return nil
		}
	}
	return FuncOf(params, ret)
}

// parseTypeSuffixes 处理 []、? 和 ! 后缀，每对 [] 再包一层 Array
func (p *Parser) parseTypeSuffixes(t *Type) *Type {
	for {
		switch {
		case p.peekTokenIs(lexer.TOKEN_LBRACKET) && p.peekN(2).Type == lexer.TOKEN_RBRACKET:
			p.nextToken()
			p.nextToken()
			t = ArrayOf(t)
		case p.peekTokenIs(lexer.TOKEN_QUESTION):
			p.nextToken()
			t = t.Clone()
			t.Optional = true
		case p.peekTokenIs(lexer.TOKEN_NOT):
			p.nextToken()
			t = t.Clone()
			t.Throwable = true
		default:
			return t
		}
	}
}

// isGenericParam 名字是否为正在解析的泛型形参
func (p *Parser) isGenericParam(name string) bool {
	for i := len(p.generics) - 1; i >= 0; i-- {
		for _, g := range p.generics[i] {
			if g == name {
				return true
			}
		}
	}
	return false
}
