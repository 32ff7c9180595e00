package bytecode

import "fmt"

// Opcode 指令码，一个字节，数值已发布不可改动
type Opcode byte

const (
	OpModuleEnd      Opcode = 0x00
	OpDefineVar      Opcode = 0x01
	OpDefineFunc     Opcode = 0x02
	OpDefineClass    Opcode = 0x03
	OpCreateObject   Opcode = 0x04
	OpCreateInternal Opcode = 0x05
	OpInvoke         Opcode = 0x06
	OpReturn         Opcode = 0x07
	OpBlockBegin     Opcode = 0x08
	OpBlockEnd       Opcode = 0x09
	OpVarRef         Opcode = 0x0A
	OpMemberGet      Opcode = 0x0B
	OpConditional    Opcode = 0x0C
	OpConditionalEnd Opcode = 0x0D
	OpUnary          Opcode = 0x0F
	OpBinary         Opcode = 0x10
	OpVarSet         Opcode = 0x11
	OpIndexGet       Opcode = 0x12
	OpIndexSet       Opcode = 0x13
	OpDictLiteral    Opcode = 0x14
	OpTypeCheck      Opcode = 0x15
	OpRegexLiteral   Opcode = 0x16
	OpMemberSet      Opcode = 0x17
	OpInvokeMethod   Opcode = 0x18
	OpSecure         Opcode = 0x19
)

var opcodeNames = map[Opcode]string{
	OpModuleEnd:      "MODULE_END",
	OpDefineVar:      "DEFINE_VAR",
	OpDefineFunc:     "DEFINE_FUNC",
	OpDefineClass:    "DEFINE_CLASS",
	OpCreateObject:   "CREATE_OBJECT",
	OpCreateInternal: "CREATE_INTERNAL",
	OpInvoke:         "INVOKE",
	OpReturn:         "RETURN",
	OpBlockBegin:     "BLOCK_BEGIN",
	OpBlockEnd:       "BLOCK_END",
	OpVarRef:         "VAR_REF",
	OpMemberGet:      "MEMBER_GET",
	OpConditional:    "CONDITIONAL",
	OpConditionalEnd: "CONDITIONAL_END",
	OpUnary:          "UNARY",
	OpBinary:         "BINARY",
	OpVarSet:         "VAR_SET",
	OpIndexGet:       "INDEX_GET",
	OpIndexSet:       "INDEX_SET",
	OpDictLiteral:    "DICT_LITERAL",
	OpTypeCheck:      "TYPE_CHECK",
	OpRegexLiteral:   "REGEX_LITERAL",
	OpMemberSet:      "MEMBER_SET",
	OpInvokeMethod:   "INVOKE_METHOD",
	OpSecure:         "SECURE",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("OP(0x%02X)", byte(op))
}

// Valid 是否为已定义的指令码
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// IsStatement 语句类指令，其余指令都是会产生值的表达式
func (op Opcode) IsStatement() bool {
	switch op {
	case OpDefineVar, OpDefineFunc, OpDefineClass, OpReturn,
		OpBlockBegin, OpConditional, OpSecure:
		return true
	}
	return false
}

// 内部对象子标签，3 保留给字典（字典字面量有独立指令）
const (
	ObjString byte = 1
	ObjArray  byte = 2
	ObjBool   byte = 4
	ObjNumber byte = 5
)

// 数字子标签后的种类字节
const (
	NumInt   byte = 0
	NumFloat byte = 1
)

// 条件分支种类
const (
	CondIf   byte = 0
	CondElse byte = 1
	CondLoop byte = 2
)

// Operator 一元、二元和复合赋值运算符
type Operator byte

const (
	OpAssign Operator = iota // 普通赋值
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpAnd
	OpOr
	OpBitAnd
	OpBitOr
	OpNot
	OpNeg
)

var operatorNames = [...]string{
	OpAssign:    "=",
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpMod:       "%",
	OpEq:        "==",
	OpNotEq:     "!=",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpAnd:       "&&",
	OpOr:        "||",
	OpBitAnd:    "&",
	OpBitOr:     "|",
	OpNot:       "!",
	OpNeg:       "-",
}

func (o Operator) String() string {
	if int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return fmt.Sprintf("operator(%d)", byte(o))
}

// Valid 是否为已定义的运算符
func (o Operator) Valid() bool {
	return int(o) < len(operatorNames)
}
