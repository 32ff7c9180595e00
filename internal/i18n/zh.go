package i18n

// zhMessages 中文文本
var zhMessages = map[string]string{
	// Lexical errors
	ErrIllegalChar:         "无法识别的字符 %q",
	ErrUnterminatedString:  "字符串字面量未结束",
	ErrUnterminatedComment: "块注释未结束",
	ErrUnterminatedRegex:   "正则字面量未结束",

	// Parser errors
	ErrExpectedToken:       "期望 %s, 实际是 %s",
	ErrUnexpectedToken:     "意外的 token %s",
	ErrExpectedIdent:       "期望标识符, 实际是 %s",
	ErrExpectedType:        "期望类型, 实际是 %s",
	ErrExpectedExpr:        "期望表达式, 实际是 %s",
	ErrUnterminatedBlock:   "代码块缺少结尾的 '}'",
	ErrUnterminatedArgs:    "参数列表缺少结尾的 ')'",
	ErrClassMember:         "类体中只允许 decl、func 和 new, 实际是 %s",
	ErrSecureNeedsDecl:     "secure 需要一个带初始值的 decl 声明",
	ErrTemplateUnsupported: "此处不支持模板块",
	ErrAttributeArgument:   "属性 @%s 的参数列表格式错误",
	ErrNotAssignable:       "赋值语句左侧不可赋值",

	// Semantic errors and warnings
	ErrTypeMismatch:       "类型 `%s` 与类型 `%s` 不匹配",
	ErrUndefinedSymbol:    "未定义的符号 `%s`",
	ErrAmbiguousSymbol:    "符号 `%s` 有歧义",
	ErrDuplicateSymbol:    "`%s` 已在当前作用域中声明",
	ErrCannotDeduceType:   "无法推断 `%s` 的类型: 既没有类型也没有初始值",
	ErrConditionNotBool:   "条件必须是 `Bool` 类型, 实际是 `%s`",
	ErrArgCount:           "`%s` 需要 %d 个参数, 实际传入 %d 个",
	ErrArgType:            "`%[2]s` 的第 %[1]d 个参数: 期望 `%[3]s`, 实际是 `%[4]s`",
	ErrReturnMismatch:     "函数 `%s` 声明的返回类型是 `%s`, 但返回了 `%s`",
	ErrInconsistentReturn: "返回类型 `%s` 与之前的返回类型 `%s` 冲突",
	ErrReturnOutsideFunc:  "return 不在函数体内",
	ErrNotCallable:        "`%s` 不可调用",
	ErrUndefinedType:      "未定义的类型 `%s`",
	ErrUnknownModule:      "模块 `%s` 没有已编译的接口",
	ErrReadonlyAssign:     "不能给不可变的 `%s` 赋值",
	ErrNoMember:           "类型 `%s` 没有成员 `%s`",
	ErrNotIndexable:       "类型 `%s` 不能被索引",
	ErrIndexType:          "索引必须是 `%s` 类型, 实际是 `%s`",
	ErrOperandType:        "运算符 `%s` 不能用于 `%s`",
	ErrSelfOutsideClass:   "`self` 只能在类体中使用",
	ErrDeclNotAllowed:     "%s 声明不允许出现在 %s 作用域中",
	ErrGenericArity:       "`%s` 需要 %d 个类型参数, 实际是 %d 个",
	WarnUnreachableCode:   "不可达的代码",
	WarnResultDiscarded:   "`%s` 的结果 (类型 `%s`) 被丢弃",

	// Runtime faults
	ErrRuntimeUndefined:   "运行时未定义的符号 `%s`",
	ErrRuntimeArity:       "`%s` 需要 %d 个参数, 实际传入 %d 个",
	ErrRuntimeMalformed:   "偏移 %d 处的字节码格式错误: %s",
	ErrRuntimeIndex:       "索引 %d 越界 (长度 %d)",
	ErrRuntimeType:        "运算符 `%s` 不能用于 %s",
	ErrRuntimeDivZero:     "除数为零",
	ErrRuntimeNotCallable: "`%s` 不可调用",
	ErrRuntimeRegex:       "无效的正则 /%s/: %v",
	ErrRuntimeNoMember:    "`%s` 没有成员 `%s`",
	ErrRuntimeMissingKey:  "键 %s 不存在",

	// CLI - Usage and help
	MsgUsage:          "用法: starbytes <命令> [参数]",
	MsgCommands:       "命令:",
	MsgCmdRun:         "  run      编译并运行 starbytes 模块",
	MsgCmdBuild:       "  build    将 starbytes 源文件编译为字节码",
	MsgCmdCheck:       "  check    分析源文件并输出诊断信息",
	MsgCmdRepl:        "  repl     启动交互式会话",
	MsgCmdVersion:     "  version  打印版本信息",
	MsgCmdHelp:        "  help     打印帮助信息",
	MsgUseHelp:        "使用 \"starbytes <命令> -h\" 获取命令的更多信息。",
	MsgUnknownCommand: "未知命令: %s",

	// CLI - Run command
	MsgRunUsage:       "用法: starbytes run [选项] <输入>",
	MsgRunDescription: "编译 <输入> 中的模块及其导入的模块并执行。",
	MsgRunArgInput:    "  <输入>    输入 .sb 文件",
	MsgRunOptVerbose:  "详细输出",

	// CLI - Build command
	MsgBuildUsage:       "用法: starbytes build [选项] <输入>",
	MsgBuildDescription: "将 starbytes 源文件编译为字节码 (.sbc) 和公开接口 (.sbi)。",
	MsgBuildArgInput:    "  <输入>    输入文件或目录",
	MsgBuildOptOutput:   "输出目录（覆盖 starbytes.toml）",
	MsgBuildOptVerbose:  "详细输出",
	MsgBuildCompleted:   "构建完成: %s",
	MsgBuildCompletedV:  "构建完成: %d 个模块。输出: %s",

	// CLI - Check command
	MsgCheckUsage:       "用法: starbytes check [选项] <输入>",
	MsgCheckDescription: "只运行词法、语法和语义分析, 不生成代码。",
	MsgCheckOptFormat:   "诊断输出格式: text 或 json（覆盖 starbytes.toml）",
	MsgCheckPassed:      "%d 个模块中没有发现问题",

	// CLI - Repl
	MsgReplBanner:  "starbytes %s REPL\nCtrl+C 取消输入, Ctrl+D 退出。输入 :quit 退出。",
	MsgReplUnknown: "未知命令。输入 :quit 退出。",

	// CLI - Common errors
	ErrInputRequired:     "错误: 需要输入文件或目录",
	ErrCannotAccessInput: "无法访问输入",
	ErrCannotLoadConfig:  "无法加载配置",
	ErrCannotReadFile:    "无法读取文件",
	ErrCompileFailed:     "模块 %s 编译失败, 共 %d 个错误",
	ErrNoSourceFiles:     "在 %s 中未找到 .sb 文件",
	ErrImportCycle:       "模块 %s 存在循环导入",
	ErrCannotCreateDir:   "无法创建输出目录",
	ErrCannotWriteFile:   "无法写入文件",
	ErrRunError:          "运行错误: %v",
	ErrUnknownFormat:     "未知的诊断格式 %q",

	// CLI - Info messages
	MsgUsingConfig: "使用配置: %s (模块: %s)",
	MsgNoConfig:    "未找到 starbytes.toml，使用默认模块: %s",
	MsgParsing:     "正在解析: %s",
	MsgCompiling:   "正在编译: %s -> %s",
	MsgRunning:     "正在运行 %s...",
}
