package diag

import "github.com/tangzhangming/starbytes/internal/i18n"

// codes 消息键到稳定诊断码的映射，已发布的诊断码不能改动
var codes = map[string]string{
	// 词法
	i18n.ErrIllegalChar:         "SB1001",
	i18n.ErrUnterminatedString:  "SB1002",
	i18n.ErrUnterminatedComment: "SB1003",
	i18n.ErrUnterminatedRegex:   "SB1004",

	// 语法
	i18n.ErrExpectedToken:       "SB2001",
	i18n.ErrUnexpectedToken:     "SB2002",
	i18n.ErrExpectedIdent:       "SB2003",
	i18n.ErrExpectedType:        "SB2004",
	i18n.ErrExpectedExpr:        "SB2005",
	i18n.ErrUnterminatedBlock:   "SB2006",
	i18n.ErrUnterminatedArgs:    "SB2007",
	i18n.ErrClassMember:         "SB2008",
	i18n.ErrSecureNeedsDecl:     "SB2009",
	i18n.ErrTemplateUnsupported: "SB2010",
	i18n.ErrAttributeArgument:   "SB2011",
	i18n.ErrNotAssignable:       "SB2012",

	// 语义
	i18n.ErrTypeMismatch:       "SB3001",
	i18n.ErrUndefinedSymbol:    "SB3002",
	i18n.ErrAmbiguousSymbol:    "SB3003",
	i18n.ErrDuplicateSymbol:    "SB3004",
	i18n.ErrCannotDeduceType:   "SB3005",
	i18n.ErrConditionNotBool:   "SB3006",
	i18n.ErrArgCount:           "SB3007",
	i18n.ErrArgType:            "SB3008",
	i18n.ErrReturnMismatch:     "SB3009",
	i18n.ErrInconsistentReturn: "SB3010",
	i18n.ErrReturnOutsideFunc:  "SB3011",
	i18n.ErrNotCallable:        "SB3012",
	i18n.ErrUndefinedType:      "SB3013",
	i18n.ErrUnknownModule:      "SB3014",
	i18n.ErrReadonlyAssign:     "SB3015",
	i18n.ErrNoMember:           "SB3016",
	i18n.ErrNotIndexable:       "SB3017",
	i18n.ErrIndexType:          "SB3018",
	i18n.ErrOperandType:        "SB3019",
	i18n.ErrSelfOutsideClass:   "SB3020",
	i18n.ErrDeclNotAllowed:     "SB3021",
	i18n.ErrGenericArity:       "SB3022",
	i18n.WarnUnreachableCode:   "SB3501",
	i18n.WarnResultDiscarded:   "SB3502",

	// 运行时
	i18n.ErrRuntimeUndefined:   "SB5001",
	i18n.ErrRuntimeArity:       "SB5002",
	i18n.ErrRuntimeMalformed:   "SB5003",
	i18n.ErrRuntimeIndex:       "SB5004",
	i18n.ErrRuntimeType:        "SB5005",
	i18n.ErrRuntimeDivZero:     "SB5006",
	i18n.ErrRuntimeNotCallable: "SB5007",
	i18n.ErrRuntimeRegex:       "SB5008",
	i18n.ErrRuntimeNoMember:    "SB5009",
	i18n.ErrRuntimeMissingKey:  "SB5010",
}

// CodeOf 返回消息键对应的诊断码，未登记的键返回 SB0000
func CodeOf(key string) string {
	if code, ok := codes[key]; ok {
		return code
	}
	return "SB0000"
}
