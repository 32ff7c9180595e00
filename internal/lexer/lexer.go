package lexer

import (
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
)

// Lexer 词法分析器
type Lexer struct {
	input   string
	pos     int  // 当前位置
	readPos int  // 下一个读取位置
	ch      byte // 当前字符
	line    int  // 当前行号
	column  int  // 当前列号
	prev    TokenType
	sink    diag.Sink
}

// New 创建一个新的词法分析器，sink 为 nil 时丢弃诊断
func New(input string, sink diag.Sink) *Lexer {
	if sink == nil {
		sink = diag.Discard
	}
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
		prev:   TOKEN_ILLEGAL,
		sink:   sink,
	}
	l.readChar()
	return l
}

// Source 返回源码副本，供诊断渲染使用
func (l *Lexer) Source() string {
	return l.input
}

// readChar 读取下一个字符
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++
}

// peekChar 查看下一个字符但不移动位置
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// atEOF 当前位置是否已越过输入末尾
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken 获取下一个 token
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	start := l.pos
	pos := Position{Line: l.line, StartCol: l.column}

	if l.atEOF() {
		return Token{Type: TOKEN_EOF, Pos: Position{Line: l.line, StartCol: l.column, EndCol: l.column}}
	}

	var typ TokenType
	switch l.ch {
	case '=':
		typ = l.either('=', TOKEN_EQ, TOKEN_ASSIGN)
	case '+':
		typ = l.either('=', TOKEN_PLUS_ASSIGN, TOKEN_PLUS)
	case '-':
		typ = l.either('=', TOKEN_MINUS_ASSIGN, TOKEN_MINUS)
	case '*':
		typ = l.either('=', TOKEN_ASTERISK_ASSIGN, TOKEN_ASTERISK)
	case '%':
		typ = l.either('=', TOKEN_PERCENT_ASSIGN, TOKEN_PERCENT)
	case '!':
		typ = l.either('=', TOKEN_NOT_EQ, TOKEN_NOT)
	case '<':
		typ = l.either('=', TOKEN_LT_EQ, TOKEN_LT)
	case '>':
		typ = l.either('=', TOKEN_GT_EQ, TOKEN_GT)
	case '&':
		typ = l.either('&', TOKEN_AND, TOKEN_BIT_AND)
	case '|':
		typ = l.either('|', TOKEN_OR, TOKEN_BIT_OR)
	case '@':
		typ = l.either('[', TOKEN_TEMPLATE, TOKEN_AT)
	case '/':
		switch {
		case l.peekChar() == '/':
			l.readLineComment()
			return l.emit(TOKEN_COMMENT, start, pos)
		case l.peekChar() == '*':
			l.readBlockComment(pos)
			return l.emit(TOKEN_COMMENT, start, pos)
		case l.canStartRegex():
			return l.emit(l.readRegex(pos), start, pos)
		default:
			typ = l.either('=', TOKEN_SLASH_ASSIGN, TOKEN_SLASH)
		}
	case '?':
		typ = TOKEN_QUESTION
	case ',':
		typ = TOKEN_COMMA
	case ';':
		typ = TOKEN_SEMICOLON
	case ':':
		typ = TOKEN_COLON
	case '.':
		typ = TOKEN_DOT
	case '(':
		typ = TOKEN_LPAREN
	case ')':
		typ = TOKEN_RPAREN
	case '[':
		typ = TOKEN_LBRACKET
	case ']':
		typ = TOKEN_RBRACKET
	case '{':
		typ = TOKEN_LBRACE
	case '}':
		typ = TOKEN_RBRACE
	case '"':
		return l.emit(l.readString(pos), start, pos)
	default:
		if isWordChar(l.ch) {
			l.readWord()
			return l.finalizeWord(start, pos)
		}
		l.report(pos, i18n.ErrIllegalChar, string(l.ch))
		typ = TOKEN_ILLEGAL
	}

	l.readChar()
	return l.emit(typ, start, pos)
}

// either 下一个字符为 next 时合并为双字符 token
func (l *Lexer) either(next byte, double, single TokenType) TokenType {
	if l.peekChar() == next {
		l.readChar()
		return double
	}
	return single
}

// emit 以 input[start:l.pos] 为字面量生成 token
func (l *Lexer) emit(typ TokenType, start int, pos Position) Token {
	end := l.pos
	if end > len(l.input) {
		end = len(l.input)
	}
	tok := Token{Type: typ, Literal: l.input[start:end], Pos: pos}
	tok.Pos.EndCol = l.endCol(start, end, pos)
	if typ != TOKEN_COMMENT {
		l.prev = typ
	}
	return tok
}

// endCol 计算 token 最后一个字符所在列
func (l *Lexer) endCol(start, end int, pos Position) int {
	col := pos.StartCol
	for i := start; i < end-1; i++ {
		if l.input[i] == '\n' {
			col = 0
		}
		col++
	}
	return col
}

// finalizeWord 单词读取完成后才决定它是关键字、布尔值、数字还是标识符
func (l *Lexer) finalizeWord(start int, pos Position) Token {
	word := l.input[start:l.pos]
	if typ := LookupIdent(word); typ != TOKEN_IDENT {
		return l.emit(typ, start, pos)
	}
	switch word {
	case "true":
		return l.emit(TOKEN_TRUE, start, pos)
	case "false":
		return l.emit(TOKEN_FALSE, start, pos)
	}
	if isDigit(word[0]) {
		typ, ok := classifyNumber(word)
		if !ok {
			l.report(pos, i18n.ErrIllegalChar, word)
			return l.emit(TOKEN_ILLEGAL, start, pos)
		}
		return l.emit(typ, start, pos)
	}
	return l.emit(TOKEN_IDENT, start, pos)
}

// classifyNumber 判断数字字面量是整数还是浮点数
func classifyNumber(word string) (TokenType, bool) {
	dots := 0
	for i := 0; i < len(word); i++ {
		switch {
		case word[i] == '.':
			dots++
		case !isDigit(word[i]):
			return TOKEN_ILLEGAL, false
		}
	}
	switch dots {
	case 0:
		return TOKEN_INT, true
	case 1:
		if word[len(word)-1] == '.' {
			return TOKEN_ILLEGAL, false
		}
		return TOKEN_FLOAT, true
	}
	return TOKEN_ILLEGAL, false
}

// canStartRegex 前一个 token 不能作为操作数结尾时，'/' 开始一个正则字面量
func (l *Lexer) canStartRegex() bool {
	switch l.prev {
	case TOKEN_IDENT, TOKEN_TRUE, TOKEN_FALSE, TOKEN_STRING, TOKEN_REGEX,
		TOKEN_INT, TOKEN_FLOAT, TOKEN_RPAREN, TOKEN_RBRACKET, TOKEN_RBRACE:
		return false
	}
	return true
}

// skipWhitespace 跳过空白字符
func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r') {
		l.readChar()
	}
}

// readWord 读取由字母、数字、下划线组成的单词；以数字开头时允许小数点
func (l *Lexer) readWord() {
	numeric := isDigit(l.ch)
	for !l.atEOF() {
		if isWordChar(l.ch) || (numeric && l.ch == '.' && isDigit(l.peekChar())) {
			l.readChar()
			continue
		}
		break
	}
}

// readString 读取双引号字符串，不处理转义
func (l *Lexer) readString(pos Position) TokenType {
	l.readChar() // 跳过开头的 "
	for !l.atEOF() && l.ch != '"' {
		l.readChar()
	}
	if l.atEOF() {
		l.report(pos, i18n.ErrUnterminatedString)
		return TOKEN_ILLEGAL
	}
	l.readChar() // 跳过结尾的 "
	return TOKEN_STRING
}

// readRegex 读取 /pattern/flags
func (l *Lexer) readRegex(pos Position) TokenType {
	l.readChar() // 跳过开头的 /
	escaped := false
	for !l.atEOF() && l.ch != '\n' {
		if l.ch == '/' && !escaped {
			break
		}
		escaped = l.ch == '\\' && !escaped
		l.readChar()
	}
	if l.atEOF() || l.ch == '\n' {
		l.report(pos, i18n.ErrUnterminatedRegex)
		return TOKEN_ILLEGAL
	}
	l.readChar() // 跳过结尾的 /
	for !l.atEOF() && isLetter(l.ch) {
		l.readChar()
	}
	return TOKEN_REGEX
}

// readLineComment 读取单行注释
func (l *Lexer) readLineComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
}

// readBlockComment 读取块注释
func (l *Lexer) readBlockComment(pos Position) {
	l.readChar() // 跳过 /
	l.readChar() // 跳过 *
	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
	l.report(pos, i18n.ErrUnterminatedComment)
}

func (l *Lexer) report(pos Position, key string, args ...any) {
	region := diag.Region{StartLine: pos.Line, StartCol: pos.StartCol, EndLine: pos.Line, EndCol: pos.StartCol}
	l.sink.Report(diag.Errorf(diag.PhaseLex, &region, key, args...))
}

// isLetter 判断是否为字母
func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

// isDigit 判断是否为数字
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWordChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

// Tokenize 将整个输入转换为 token 列表，末尾总是 EOF
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_EOF {
			break
		}
	}
	return tokens
}

// Tokenize 将输入字符串转换为 token 列表，丢弃诊断
func Tokenize(input string) []Token {
	return New(input, nil).Tokenize()
}
