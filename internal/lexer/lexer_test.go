package lexer

import (
	"strings"
	"testing"

	"github.com/tangzhangming/starbytes/internal/diag"
)

func TestNextToken(t *testing.T) {
	input := `decl imut x:Int = 5
func add(a:Int, b:Int) Int { return a + b }
x += 2.5 == 3 != y <= z >= w && !q || r
@private @[ ? : ; . , [ ] /= %= -= *=`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TOKEN_DECL, "decl"},
		{TOKEN_IMUT, "imut"},
		{TOKEN_IDENT, "x"},
		{TOKEN_COLON, ":"},
		{TOKEN_IDENT, "Int"},
		{TOKEN_ASSIGN, "="},
		{TOKEN_INT, "5"},
		{TOKEN_FUNC, "func"},
		{TOKEN_IDENT, "add"},
		{TOKEN_LPAREN, "("},
		{TOKEN_IDENT, "a"},
		{TOKEN_COLON, ":"},
		{TOKEN_IDENT, "Int"},
		{TOKEN_COMMA, ","},
		{TOKEN_IDENT, "b"},
		{TOKEN_COLON, ":"},
		{TOKEN_IDENT, "Int"},
		{TOKEN_RPAREN, ")"},
		{TOKEN_IDENT, "Int"},
		{TOKEN_LBRACE, "{"},
		{TOKEN_RETURN, "return"},
		{TOKEN_IDENT, "a"},
		{TOKEN_PLUS, "+"},
		{TOKEN_IDENT, "b"},
		{TOKEN_RBRACE, "}"},
		{TOKEN_IDENT, "x"},
		{TOKEN_PLUS_ASSIGN, "+="},
		{TOKEN_FLOAT, "2.5"},
		{TOKEN_EQ, "=="},
		{TOKEN_INT, "3"},
		{TOKEN_NOT_EQ, "!="},
		{TOKEN_IDENT, "y"},
		{TOKEN_LT_EQ, "<="},
		{TOKEN_IDENT, "z"},
		{TOKEN_GT_EQ, ">="},
		{TOKEN_IDENT, "w"},
		{TOKEN_AND, "&&"},
		{TOKEN_NOT, "!"},
		{TOKEN_IDENT, "q"},
		{TOKEN_OR, "||"},
		{TOKEN_IDENT, "r"},
		{TOKEN_AT, "@"},
		{TOKEN_IDENT, "private"},
		{TOKEN_TEMPLATE, "@["},
		{TOKEN_QUESTION, "?"},
		{TOKEN_COLON, ":"},
		{TOKEN_SEMICOLON, ";"},
		{TOKEN_DOT, "."},
		{TOKEN_COMMA, ","},
		{TOKEN_LBRACKET, "["},
		{TOKEN_RBRACKET, "]"},
		{TOKEN_SLASH_ASSIGN, "/="},
		{TOKEN_PERCENT_ASSIGN, "%="},
		{TOKEN_MINUS_ASSIGN, "-="},
		{TOKEN_ASTERISK_ASSIGN, "*="},
		{TOKEN_EOF, ""},
	}

	l := New(input, nil)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%s, got=%s (%q)", i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestClassifyWords(t *testing.T) {
	tests := []struct {
		input string
		want  TokenType
	}{
		{"true", TOKEN_TRUE},
		{"false", TOKEN_FALSE},
		{"secure", TOKEN_SECURE},
		{"elif", TOKEN_ELIF},
		{"is", TOKEN_IS},
		{"declare", TOKEN_IDENT},
		{"_tmp1", TOKEN_IDENT},
		{"42", TOKEN_INT},
		{"3.14", TOKEN_FLOAT},
		{"12ab", TOKEN_ILLEGAL},
	}
	for _, tt := range tests {
		toks := Tokenize(tt.input)
		if toks[0].Type != tt.want {
			t.Errorf("Tokenize(%q)[0] = %s, want %s", tt.input, toks[0].Type, tt.want)
		}
	}
}

func TestRegexOnlyWhereOperandCannotPrecede(t *testing.T) {
	tests := []struct {
		input string
		types []TokenType
	}{
		{`decl r = /ab+c/i`, []TokenType{TOKEN_DECL, TOKEN_IDENT, TOKEN_ASSIGN, TOKEN_REGEX, TOKEN_EOF}},
		{`a / b`, []TokenType{TOKEN_IDENT, TOKEN_SLASH, TOKEN_IDENT, TOKEN_EOF}},
		{`(4) / 2`, []TokenType{TOKEN_LPAREN, TOKEN_INT, TOKEN_RPAREN, TOKEN_SLASH, TOKEN_INT, TOKEN_EOF}},
		{`f(/x\/y/)`, []TokenType{TOKEN_IDENT, TOKEN_LPAREN, TOKEN_REGEX, TOKEN_RPAREN, TOKEN_EOF}},
	}
	for _, tt := range tests {
		toks := Tokenize(tt.input)
		if len(toks) != len(tt.types) {
			t.Fatalf("Tokenize(%q) produced %d tokens, want %d", tt.input, len(toks), len(tt.types))
		}
		for i, typ := range tt.types {
			if toks[i].Type != typ {
				t.Errorf("Tokenize(%q)[%d] = %s, want %s", tt.input, i, toks[i].Type, typ)
			}
		}
	}
}

func TestComments(t *testing.T) {
	toks := Tokenize("// note\ndecl /* inline */ x")
	want := []TokenType{TOKEN_COMMENT, TOKEN_DECL, TOKEN_COMMENT, TOKEN_IDENT, TOKEN_EOF}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Fatalf("token %d = %s, want %s", i, toks[i].Type, typ)
		}
	}
	if toks[0].Literal != "// note" || toks[2].Literal != "/* inline */" {
		t.Errorf("comment literals = %q, %q", toks[0].Literal, toks[2].Literal)
	}
}

func TestPositions(t *testing.T) {
	toks := Tokenize("decl x\n  name = \"hi\"")
	tests := []struct {
		idx  int
		want Position
	}{
		{0, Position{Line: 1, StartCol: 1, EndCol: 4}},
		{1, Position{Line: 1, StartCol: 6, EndCol: 6}},
		{2, Position{Line: 2, StartCol: 3, EndCol: 6}},
		{3, Position{Line: 2, StartCol: 8, EndCol: 8}},
		{4, Position{Line: 2, StartCol: 10, EndCol: 13}},
	}
	for _, tt := range tests {
		if toks[tt.idx].Pos != tt.want {
			t.Errorf("token %d (%q) pos = %+v, want %+v", tt.idx, toks[tt.idx].Literal, toks[tt.idx].Pos, tt.want)
		}
	}
}

func TestErrorsAreReportedAndLexingContinues(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{"decl x = $ 1", "SB1001"},
		{`decl s = "open`, "SB1002"},
		{"decl x /* never closed", "SB1003"},
		{"decl r = /abc", "SB1004"},
	}
	for _, tt := range tests {
		c := diag.NewCollector()
		toks := New(tt.input, c).Tokenize()
		if toks[len(toks)-1].Type != TOKEN_EOF {
			t.Errorf("%q: last token = %s, want EOF", tt.input, toks[len(toks)-1].Type)
		}
		if c.ErrorCount() != 1 {
			t.Fatalf("%q: got %d diagnostics, want 1", tt.input, c.ErrorCount())
		}
		if got := c.Diagnostics()[0].Code; got != tt.code {
			t.Errorf("%q: code = %s, want %s", tt.input, got, tt.code)
		}
	}
}

func TestIllegalTokenDoesNotStopLexing(t *testing.T) {
	toks := Tokenize("a $ b")
	want := []TokenType{TOKEN_IDENT, TOKEN_ILLEGAL, TOKEN_IDENT, TOKEN_EOF}
	for i, typ := range want {
		if toks[i].Type != typ {
			t.Errorf("token %d = %s, want %s", i, toks[i].Type, typ)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		`decl msg:String = "hi"
func greet(m:String) {
	print(m)
}
greet(msg)`,
		`class Point { decl x:Int; new(x:Int) { self.x = x } }`,
		`if (a >= 1) { b += 2 } elif (!c) { d = [1, 2, 3][0] } else { e = {"k": /re/g} }`,
		`scope Util { @private func helper() Int[]? { return [] } }`,
	}
	strip := func(s string) string {
		return strings.Join(strings.Fields(s), "")
	}
	for _, input := range inputs {
		var b strings.Builder
		for _, tok := range Tokenize(input) {
			if tok.Type == TOKEN_EOF {
				continue
			}
			b.WriteString(tok.Literal)
		}
		if strip(b.String()) != strip(input) {
			t.Errorf("round trip mismatch:\n got  %q\n want %q", strip(b.String()), strip(input))
		}
	}
}

func TestSource(t *testing.T) {
	src := "decl x = 1"
	if got := New(src, nil).Source(); got != src {
		t.Errorf("Source() = %q, want %q", got, src)
	}
}
