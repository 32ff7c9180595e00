package parser

import (
	"strconv"
	"strings"

	"github.com/tangzhangming/starbytes/internal/lexer"
)

// Format 把表达式还原为带括号的源码形式，用于诊断信息和测试
func Format(expr Expression) string {
	var b strings.Builder
	writeExpr(&b, expr)
	return b.String()
}

func writeExpr(b *strings.Builder, expr Expression) {
	switch e := expr.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Identifier:
		b.WriteString(e.Value)
	case *LiteralExpr:
		switch e.Kind {
		case LitString:
			b.WriteString(strconv.Quote(e.Str))
		case LitBool:
			b.WriteString(strconv.FormatBool(e.Bool))
		case LitInt:
			b.WriteString(strconv.FormatInt(e.Int, 10))
		case LitFloat:
			b.WriteString(strconv.FormatFloat(e.Float, 'g', -1, 64))
		}
	case *RegexLiteral:
		b.WriteString("/" + e.Pattern + "/" + e.Flags)
	case *CallExpr:
		if e.New {
			b.WriteString("new ")
		}
		writeExpr(b, e.Callee)
		b.WriteByte('(')
		writeList(b, e.Args)
		b.WriteByte(')')
	case *ArrayLiteral:
		b.WriteByte('[')
		writeList(b, e.Elements)
		b.WriteByte(']')
	case *DictLiteral:
		b.WriteByte('{')
		for i := range e.Keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, e.Keys[i])
			b.WriteString(": ")
			writeExpr(b, e.Values[i])
		}
		b.WriteByte('}')
	case *MemberExpr:
		writeExpr(b, e.Object)
		b.WriteByte('.')
		b.WriteString(e.Member.Value)
	case *IndexExpr:
		writeExpr(b, e.Object)
		b.WriteByte('[')
		writeExpr(b, e.Index)
		b.WriteByte(']')
	case *UnaryExpr:
		b.WriteByte('(')
		b.WriteString(lexer.TokenTypeName(e.Op))
		writeExpr(b, e.Operand)
		b.WriteByte(')')
	case *BinaryExpr:
		b.WriteByte('(')
		writeExpr(b, e.Left)
		b.WriteString(" " + lexer.TokenTypeName(e.Op) + " ")
		writeExpr(b, e.Right)
		b.WriteByte(')')
	case *AssignExpr:
		b.WriteByte('(')
		writeExpr(b, e.Target)
		b.WriteString(" " + lexer.TokenTypeName(e.Op) + " ")
		writeExpr(b, e.Value)
		b.WriteByte(')')
	case *IsExpr:
		b.WriteByte('(')
		writeExpr(b, e.Value)
		b.WriteString(" is " + e.Type.String())
		b.WriteByte(')')
	}
}

func writeList(b *strings.Builder, list []Expression) {
	for i, e := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, e)
	}
}
