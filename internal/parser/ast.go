package parser

import (
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/lexer"
)

// Node AST 节点接口
type Node interface {
	Region() diag.Region
}

// Statement 语句接口，所有语句都带有声明公共部分
type Statement interface {
	Node
	Base() *Decl
	statementNode()
}

// Expression 表达式接口
type Expression interface {
	Node
	expressionNode()
}

// Span 节点在源码中的范围：起始 token 到最后一个 token
type Span struct {
	Token lexer.Token
	End   lexer.Position
}

func (s *Span) Region() diag.Region {
	end := s.End
	if end.Line == 0 {
		end = s.Token.Pos
	}
	return diag.Region{
		StartLine: s.Token.Pos.Line,
		StartCol:  s.Token.Pos.StartCol,
		EndLine:   end.Line,
		EndCol:    end.EndCol,
	}
}

// Comment 注释，挂在其后的语句上
type Comment struct {
	Token lexer.Token
	Text  string
}

// Attribute @name(args) 属性
type Attribute struct {
	Token lexer.Token
	Name  string
	Args  []*AttributeArg
}

// AttributeArg 属性参数，Key 为空表示位置参数
type AttributeArg struct {
	Key   string
	Value Expression
}

// Decl 语句公共部分
type Decl struct {
	Span
	Scope      *Scope // 声明所在作用域
	Comments   []*Comment
	Attributes []*Attribute
}

func (d *Decl) Base() *Decl { return d }

// HasAttribute 是否带有指定属性
func (d *Decl) HasAttribute(name string) bool {
	for _, a := range d.Attributes {
		if a.Name == name {
			return true
		}
	}
	return false
}

// File 表示一个源文件
type File struct {
	Statements []Statement
	Global     *Scope
}

// BlockStmt 代码块，拥有一个子作用域
type BlockStmt struct {
	Span
	Scope      *Scope
	Statements []Statement
}

// ImportDecl import Name
type ImportDecl struct {
	Decl
	Module string
}

func (*ImportDecl) statementNode() {}

// ScopeDecl scope Name { ... }
type ScopeDecl struct {
	Decl
	Name  string
	Inner *Scope
	Body  *BlockStmt
}

func (*ScopeDecl) statementNode() {}

// VarDecl decl [imut] name[:Type] [= value]
type VarDecl struct {
	Decl
	Name      string
	NameToken lexer.Token
	Readonly  bool
	Type      *Type // 可选的类型注解
	Value     Expression
}

func (*VarDecl) statementNode() {}

// Param 参数
type Param struct {
	Token lexer.Token
	Name  string
	Type  *Type
}

// FuncDecl 函数声明；接口中的方法签名没有 Body
type FuncDecl struct {
	Decl
	Name     string
	Generics []string
	Params   []*Param
	Return   *Type // 未声明时为 nil，由函数体推断
	Inner    *Scope
	Body     *BlockStmt
}

func (*FuncDecl) statementNode() {}

// ConstructorDecl 类构造方法 new(...) { ... }
type ConstructorDecl struct {
	Decl
	Params []*Param
	Inner  *Scope
	Body   *BlockStmt
}

func (*ConstructorDecl) statementNode() {}

// ClassDecl 类声明
type ClassDecl struct {
	Decl
	Name         string
	Generics     []string
	Inner        *Scope
	Fields       []*VarDecl
	Constructors []*ConstructorDecl
	Methods      []*FuncDecl
}

func (*ClassDecl) statementNode() {}

// InterfaceDecl 接口声明
type InterfaceDecl struct {
	Decl
	Name     string
	Generics []string
	Inner    *Scope
	Fields   []*VarDecl
	Methods  []*FuncDecl
}

func (*InterfaceDecl) statementNode() {}

// CondBranch if/elif/else 的一个分支，else 分支 Cond 为 nil
type CondBranch struct {
	Token lexer.Token
	Cond  Expression
	Body  *BlockStmt
}

// CondDecl if/elif/else 链
type CondDecl struct {
	Decl
	Branches []*CondBranch
}

func (*CondDecl) statementNode() {}

// WhileDecl while (cond) { ... }
type WhileDecl struct {
	Decl
	Cond Expression
	Body *BlockStmt
}

func (*WhileDecl) statementNode() {}

// ForDecl for (cond) { ... }
type ForDecl struct {
	Decl
	Cond Expression
	Body *BlockStmt
}

func (*ForDecl) statementNode() {}

// ReturnDecl return [value]
type ReturnDecl struct {
	Decl
	Value Expression
}

func (*ReturnDecl) statementNode() {}

// SecureDecl secure (decl x = expr) catch [(e:Type)] { ... }
type SecureDecl struct {
	Decl
	Guarded   *VarDecl
	CatchName string // 可选
	CatchType *Type
	Catch     *BlockStmt
}

func (*SecureDecl) statementNode() {}

// ExprStmt 表达式语句
type ExprStmt struct {
	Decl
	Expr Expression
}

func (*ExprStmt) statementNode() {}

// Identifier 标识符
type Identifier struct {
	Span
	Value string
}

func (*Identifier) expressionNode() {}

// LiteralKind 字面量种类
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitBool
	LitInt
	LitFloat
)

// LiteralExpr 字符串、布尔和数字字面量
type LiteralExpr struct {
	Span
	Kind  LiteralKind
	Str   string
	Bool  bool
	Int   int64
	Float float64
}

func (*LiteralExpr) expressionNode() {}

// RegexLiteral /pattern/flags
type RegexLiteral struct {
	Span
	Pattern string
	Flags   string
}

func (*RegexLiteral) expressionNode() {}

// CallExpr 调用；New 为 true 表示 new Class(...)
type CallExpr struct {
	Span
	Callee Expression
	Args   []Expression
	New    bool
}

func (*CallExpr) expressionNode() {}

// ArrayLiteral [a, b, ...]
type ArrayLiteral struct {
	Span
	Elements []Expression
}

func (*ArrayLiteral) expressionNode() {}

// DictLiteral {k: v, ...}
type DictLiteral struct {
	Span
	Keys   []Expression
	Values []Expression
}

func (*DictLiteral) expressionNode() {}

// MemberExpr object.member
type MemberExpr struct {
	Span
	Object Expression
	Member *Identifier
}

func (*MemberExpr) expressionNode() {}

// IndexExpr object[index]
type IndexExpr struct {
	Span
	Object Expression
	Index  Expression
}

func (*IndexExpr) expressionNode() {}

// UnaryExpr 前缀运算
type UnaryExpr struct {
	Span
	Op      lexer.TokenType
	Operand Expression
}

func (*UnaryExpr) expressionNode() {}

// BinaryExpr 二元运算
type BinaryExpr struct {
	Span
	Op    lexer.TokenType
	Left  Expression
	Right Expression
}

func (*BinaryExpr) expressionNode() {}

// AssignExpr 赋值，Op 为 = 或复合赋值运算符
type AssignExpr struct {
	Span
	Op     lexer.TokenType
	Target Expression
	Value  Expression
}

func (*AssignExpr) expressionNode() {}

// IsExpr value is Type
type IsExpr struct {
	Span
	Value Expression
	Type  *Type
}

func (*IsExpr) expressionNode() {}

// CompoundBase 返回复合赋值对应的二元运算符，= 返回 ILLEGAL
func CompoundBase(op lexer.TokenType) lexer.TokenType {
	switch op {
	case lexer.TOKEN_PLUS_ASSIGN:
		return lexer.TOKEN_PLUS
	case lexer.TOKEN_MINUS_ASSIGN:
		return lexer.TOKEN_MINUS
	case lexer.TOKEN_ASTERISK_ASSIGN:
		return lexer.TOKEN_ASTERISK
	case lexer.TOKEN_SLASH_ASSIGN:
		return lexer.TOKEN_SLASH
	case lexer.TOKEN_PERCENT_ASSIGN:
		return lexer.TOKEN_PERCENT
	}
	return lexer.TOKEN_ILLEGAL
}
