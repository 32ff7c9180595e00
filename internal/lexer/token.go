package lexer

// TokenType 表示 token 的类型
type TokenType int

const (
	// 特殊 token
	TOKEN_ILLEGAL TokenType = iota
	TOKEN_EOF
	TOKEN_COMMENT

	// 标识符和字面量
	TOKEN_IDENT  // 标识符
	TOKEN_INT    // 整数
	TOKEN_FLOAT  // 浮点数
	TOKEN_STRING // 字符串
	TOKEN_REGEX  // 正则 /pattern/flags
	TOKEN_TRUE   // true
	TOKEN_FALSE  // false

	// 运算符
	TOKEN_ASSIGN   // =
	TOKEN_PLUS     // +
	TOKEN_MINUS    // -
	TOKEN_ASTERISK // *
	TOKEN_SLASH    // /
	TOKEN_PERCENT  // %

	TOKEN_EQ     // ==
	TOKEN_NOT_EQ // !=
	TOKEN_LT     // <
	TOKEN_GT     // >
	TOKEN_LT_EQ  // <=
	TOKEN_GT_EQ  // >=

	TOKEN_AND     // &&
	TOKEN_OR      // ||
	TOKEN_NOT     // !
	TOKEN_BIT_AND // &
	TOKEN_BIT_OR  // |

	TOKEN_PLUS_ASSIGN     // +=
	TOKEN_MINUS_ASSIGN    // -=
	TOKEN_ASTERISK_ASSIGN // *=
	TOKEN_SLASH_ASSIGN    // /=
	TOKEN_PERCENT_ASSIGN  // %=

	TOKEN_QUESTION // ?
	TOKEN_AT       // @
	TOKEN_TEMPLATE // @[

	// 分隔符
	TOKEN_COMMA     // ,
	TOKEN_SEMICOLON // ;
	TOKEN_COLON     // :
	TOKEN_DOT       // .

	TOKEN_LPAREN   // (
	TOKEN_RPAREN   // )
	TOKEN_LBRACKET // [
	TOKEN_RBRACKET // ]
	TOKEN_LBRACE   // {
	TOKEN_RBRACE   // }

	// 关键字
	TOKEN_DECL      // decl
	TOKEN_IMUT      // imut
	TOKEN_IMPORT    // import
	TOKEN_FUNC      // func
	TOKEN_CLASS     // class
	TOKEN_INTERFACE // interface
	TOKEN_IF        // if
	TOKEN_ELIF      // elif
	TOKEN_ELSE      // else
	TOKEN_WHILE     // while
	TOKEN_FOR       // for
	TOKEN_RETURN    // return
	TOKEN_SECURE    // secure
	TOKEN_CATCH     // catch
	TOKEN_NEW       // new
	TOKEN_SCOPE     // scope
	TOKEN_IS        // is
)

// Position token 在源码中的位置，列从 1 开始，EndCol 为最后一个字符所在列
type Position struct {
	Line     int
	StartCol int
	EndCol   int
}

// Token 表示一个词法单元
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

var keywords = map[string]TokenType{
	"decl":      TOKEN_DECL,
	"imut":      TOKEN_IMUT,
	"import":    TOKEN_IMPORT,
	"func":      TOKEN_FUNC,
	"class":     TOKEN_CLASS,
	"interface": TOKEN_INTERFACE,
	"if":        TOKEN_IF,
	"elif":      TOKEN_ELIF,
	"else":      TOKEN_ELSE,
	"while":     TOKEN_WHILE,
	"for":       TOKEN_FOR,
	"return":    TOKEN_RETURN,
	"secure":    TOKEN_SECURE,
	"catch":     TOKEN_CATCH,
	"new":       TOKEN_NEW,
	"scope":     TOKEN_SCOPE,
	"is":        TOKEN_IS,
}

// LookupIdent 查找标识符是否为关键字
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TOKEN_IDENT
}

// IsKeyword 判断 token 类型是否为关键字
func (t TokenType) IsKeyword() bool {
	return t >= TOKEN_DECL && t <= TOKEN_IS
}

var names = map[TokenType]string{
	TOKEN_ILLEGAL:         "ILLEGAL",
	TOKEN_EOF:             "EOF",
	TOKEN_COMMENT:         "COMMENT",
	TOKEN_IDENT:           "IDENT",
	TOKEN_INT:             "INT",
	TOKEN_FLOAT:           "FLOAT",
	TOKEN_STRING:          "STRING",
	TOKEN_REGEX:           "REGEX",
	TOKEN_TRUE:            "true",
	TOKEN_FALSE:           "false",
	TOKEN_ASSIGN:          "=",
	TOKEN_PLUS:            "+",
	TOKEN_MINUS:           "-",
	TOKEN_ASTERISK:        "*",
	TOKEN_SLASH:           "/",
	TOKEN_PERCENT:         "%",
	TOKEN_EQ:              "==",
	TOKEN_NOT_EQ:          "!=",
	TOKEN_LT:              "<",
	TOKEN_GT:              ">",
	TOKEN_LT_EQ:           "<=",
	TOKEN_GT_EQ:           ">=",
	TOKEN_AND:             "&&",
	TOKEN_OR:              "||",
	TOKEN_NOT:             "!",
	TOKEN_BIT_AND:         "&",
	TOKEN_BIT_OR:          "|",
	TOKEN_PLUS_ASSIGN:     "+=",
	TOKEN_MINUS_ASSIGN:    "-=",
	TOKEN_ASTERISK_ASSIGN: "*=",
	TOKEN_SLASH_ASSIGN:    "/=",
	TOKEN_PERCENT_ASSIGN:  "%=",
	TOKEN_QUESTION:        "?",
	TOKEN_AT:              "@",
	TOKEN_TEMPLATE:        "@[",
	TOKEN_COMMA:           ",",
	TOKEN_SEMICOLON:       ";",
	TOKEN_COLON:           ":",
	TOKEN_DOT:             ".",
	TOKEN_LPAREN:          "(",
	TOKEN_RPAREN:          ")",
	TOKEN_LBRACKET:        "[",
	TOKEN_RBRACKET:        "]",
	TOKEN_LBRACE:          "{",
	TOKEN_RBRACE:          "}",
	TOKEN_DECL:            "decl",
	TOKEN_IMUT:            "imut",
	TOKEN_IMPORT:          "import",
	TOKEN_FUNC:            "func",
	TOKEN_CLASS:           "class",
	TOKEN_INTERFACE:       "interface",
	TOKEN_IF:              "if",
	TOKEN_ELIF:            "elif",
	TOKEN_ELSE:            "else",
	TOKEN_WHILE:           "while",
	TOKEN_FOR:             "for",
	TOKEN_RETURN:          "return",
	TOKEN_SECURE:          "secure",
	TOKEN_CATCH:           "catch",
	TOKEN_NEW:             "new",
	TOKEN_SCOPE:           "scope",
	TOKEN_IS:              "is",
}

// TokenTypeName 返回 token 类型的名称
func TokenTypeName(t TokenType) string {
	if name, ok := names[t]; ok {
		return name
	}
	return "UNKNOWN"
}

func (t TokenType) String() string {
	return TokenTypeName(t)
}

// Describe 返回用于错误信息的 token 描述
func (t Token) Describe() string {
	switch t.Type {
	case TOKEN_EOF:
		return "end of file"
	case TOKEN_IDENT, TOKEN_INT, TOKEN_FLOAT, TOKEN_STRING, TOKEN_REGEX, TOKEN_ILLEGAL:
		return TokenTypeName(t.Type) + " " + t.Literal
	}
	return "'" + TokenTypeName(t.Type) + "'"
}
