package i18n

// enMessages 英文文本，也是其他语言缺少条目时的回退
var enMessages = map[string]string{
	// Lexical errors
	ErrIllegalChar:         "unrecognized character %q",
	ErrUnterminatedString:  "unterminated string literal",
	ErrUnterminatedComment: "unterminated block comment",
	ErrUnterminatedRegex:   "unterminated regex literal",

	// Parser errors
	ErrExpectedToken:       "expected %s, got %s",
	ErrUnexpectedToken:     "unexpected token %s",
	ErrExpectedIdent:       "expected identifier, got %s",
	ErrExpectedType:        "expected type, got %s",
	ErrExpectedExpr:        "expected expression, got %s",
	ErrUnterminatedBlock:   "block is missing its closing '}'",
	ErrUnterminatedArgs:    "argument list is missing its closing ')'",
	ErrClassMember:         "only decl, func and new are allowed in a class body, got %s",
	ErrSecureNeedsDecl:     "secure expects a single decl with an initializer",
	ErrTemplateUnsupported: "template blocks are not supported here",
	ErrAttributeArgument:   "malformed argument list for attribute @%s",
	ErrNotAssignable:       "left side of assignment is not assignable",

	// Semantic errors and warnings
	ErrTypeMismatch:       "type `%s` does not match type `%s`",
	ErrUndefinedSymbol:    "undefined symbol `%s`",
	ErrAmbiguousSymbol:    "ambiguous symbol `%s`",
	ErrDuplicateSymbol:    "`%s` is already declared in this scope",
	ErrCannotDeduceType:   "cannot deduce the type of `%s`: it has neither a type nor an initializer",
	ErrConditionNotBool:   "condition must be of type `Bool`, got `%s`",
	ErrArgCount:           "`%s` expects %d argument(s), got %d",
	ErrArgType:            "argument %d of `%s`: expected `%s`, got `%s`",
	ErrReturnMismatch:     "function `%s` declares return type `%s` but returns `%s`",
	ErrInconsistentReturn: "return type `%s` conflicts with earlier return type `%s`",
	ErrReturnOutsideFunc:  "return outside of a function body",
	ErrNotCallable:        "`%s` is not callable",
	ErrUndefinedType:      "undefined type `%s`",
	ErrUnknownModule:      "module `%s` has no compiled interface",
	ErrReadonlyAssign:     "cannot assign to immutable `%s`",
	ErrNoMember:           "type `%s` has no member `%s`",
	ErrNotIndexable:       "type `%s` cannot be indexed",
	ErrIndexType:          "index must be of type `%s`, got `%s`",
	ErrOperandType:        "operator `%s` cannot be applied to `%s`",
	ErrSelfOutsideClass:   "`self` used outside of a class body",
	ErrDeclNotAllowed:     "%s declarations are not allowed in %s scope",
	ErrGenericArity:       "`%s` expects %d type argument(s), got %d",
	WarnUnreachableCode:   "unreachable code",
	WarnResultDiscarded:   "result of `%s` (type `%s`) is discarded",

	// Runtime faults
	ErrRuntimeUndefined:   "undefined symbol `%s` at runtime",
	ErrRuntimeArity:       "`%s` expects %d argument(s), got %d",
	ErrRuntimeMalformed:   "malformed bytecode at offset %d: %s",
	ErrRuntimeIndex:       "index %d out of range (length %d)",
	ErrRuntimeType:        "operator `%s` cannot be applied to %s",
	ErrRuntimeDivZero:     "division by zero",
	ErrRuntimeNotCallable: "`%s` is not callable",
	ErrRuntimeRegex:       "invalid regex /%s/: %v",
	ErrRuntimeNoMember:    "`%s` has no member `%s`",
	ErrRuntimeMissingKey:  "key %s not found",

	// CLI - Usage and help
	MsgUsage:          "Usage: starbytes <command> [arguments]",
	MsgCommands:       "Commands:",
	MsgCmdRun:         "  run      Compile and run a starbytes module",
	MsgCmdBuild:       "  build    Compile starbytes sources to bytecode",
	MsgCmdCheck:       "  check    Analyze sources and print diagnostics",
	MsgCmdRepl:        "  repl     Start an interactive session",
	MsgCmdVersion:     "  version  Print version information",
	MsgCmdHelp:        "  help     Print this help message",
	MsgUseHelp:        "Use \"starbytes <command> -h\" for more information about a command.",
	MsgUnknownCommand: "Unknown command: %s",

	// CLI - Run command
	MsgRunUsage:       "Usage: starbytes run [options] <input>",
	MsgRunDescription: "Compile the module in <input> together with the modules it imports and execute it.",
	MsgRunArgInput:    "  <input>    Input .sb file",
	MsgRunOptVerbose:  "Verbose output",

	// CLI - Build command
	MsgBuildUsage:       "Usage: starbytes build [options] <input>",
	MsgBuildDescription: "Compile starbytes sources to bytecode (.sbc) and public interfaces (.sbi).",
	MsgBuildArgInput:    "  <input>    Input file or directory",
	MsgBuildOptOutput:   "Output directory (overrides starbytes.toml)",
	MsgBuildOptVerbose:  "Verbose output",
	MsgBuildCompleted:   "Build completed: %s",
	MsgBuildCompletedV:  "Build completed: %d module(s). Output: %s",

	// CLI - Check command
	MsgCheckUsage:       "Usage: starbytes check [options] <input>",
	MsgCheckDescription: "Run the lexer, parser and semantic analyzer without generating code.",
	MsgCheckOptFormat:   "Diagnostics format: text or json (overrides starbytes.toml)",
	MsgCheckPassed:      "No problems found in %d module(s)",

	// CLI - Repl
	MsgReplBanner:  "starbytes %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.",
	MsgReplUnknown: "unknown command. Type :quit to exit.",

	// CLI - Common errors
	ErrInputRequired:     "Error: input file or directory is required",
	ErrCannotAccessInput: "cannot access input",
	ErrCannotLoadConfig:  "cannot load config",
	ErrCannotReadFile:    "cannot read file",
	ErrCompileFailed:     "module %s failed to compile with %d error(s)",
	ErrNoSourceFiles:     "no .sb files found in %s",
	ErrImportCycle:       "import cycle through module %s",
	ErrCannotCreateDir:   "cannot create output directory",
	ErrCannotWriteFile:   "cannot write file",
	ErrRunError:          "Error running: %v",
	ErrUnknownFormat:     "unknown diagnostics format %q",

	// CLI - Info messages
	MsgUsingConfig: "Using config: %s (module: %s)",
	MsgNoConfig:    "No starbytes.toml found, using default module: %s",
	MsgParsing:     "Parsing: %s",
	MsgCompiling:   "Compiling: %s -> %s",
	MsgRunning:     "Running %s...",
}
