package i18n

// Message keys for lexical errors
const (
	ErrIllegalChar          = "lexer.illegal_char"          // args: char
	ErrUnterminatedString   = "lexer.unterminated_string"   // no args
	ErrUnterminatedComment  = "lexer.unterminated_comment"  // no args
	ErrUnterminatedRegex    = "lexer.unterminated_regex"    // no args
)

// Message keys for parser errors
const (
	ErrExpectedToken        = "parser.expected_token"        // args: expected, got
	ErrUnexpectedToken      = "parser.unexpected_token"      // args: got
	ErrExpectedIdent        = "parser.expected_ident"        // args: got
	ErrExpectedType         = "parser.expected_type"         // args: got
	ErrExpectedExpr         = "parser.expected_expr"         // args: got
	ErrUnterminatedBlock    = "parser.unterminated_block"    // no args
	ErrUnterminatedArgs     = "parser.unterminated_args"     // no args
	ErrClassMember          = "parser.class_member"          // args: got
	ErrSecureNeedsDecl      = "parser.secure_needs_decl"     // no args
	ErrTemplateUnsupported  = "parser.template_unsupported"  // no args
	ErrAttributeArgument    = "parser.attribute_argument"    // args: attribute
	ErrNotAssignable        = "parser.not_assignable"        // no args
)

// Message keys for semantic errors and warnings
const (
	ErrTypeMismatch         = "sema.type_mismatch"           // args: expected, got
	ErrUndefinedSymbol      = "sema.undefined_symbol"        // args: name
	ErrAmbiguousSymbol      = "sema.ambiguous_symbol"        // args: name
	ErrDuplicateSymbol      = "sema.duplicate_symbol"        // args: name
	ErrCannotDeduceType     = "sema.cannot_deduce_type"      // args: name
	ErrConditionNotBool     = "sema.condition_not_bool"      // args: got
	ErrArgCount             = "sema.arg_count"               // args: name, expected, got
	ErrArgType              = "sema.arg_type"                // args: index, name, expected, got
	ErrReturnMismatch       = "sema.return_mismatch"         // args: name, declared, implied
	ErrInconsistentReturn   = "sema.inconsistent_return"     // args: first, got
	ErrReturnOutsideFunc    = "sema.return_outside_func"     // no args
	ErrNotCallable          = "sema.not_callable"            // args: name
	ErrUndefinedType        = "sema.undefined_type"          // args: name
	ErrUnknownModule        = "sema.unknown_module"          // args: module
	ErrReadonlyAssign       = "sema.readonly_assign"         // args: name
	ErrNoMember             = "sema.no_member"               // args: type, member
	ErrNotIndexable         = "sema.not_indexable"           // args: type
	ErrIndexType            = "sema.index_type"              // args: expected, got
	ErrOperandType          = "sema.operand_type"            // args: operator, type
	ErrSelfOutsideClass     = "sema.self_outside_class"      // no args
	ErrDeclNotAllowed       = "sema.decl_not_allowed"        // args: kind, scope
	ErrGenericArity         = "sema.generic_arity"           // args: name, expected, got
	WarnUnreachableCode     = "sema.unreachable_code"        // no args
	WarnResultDiscarded     = "sema.result_discarded"        // args: name, type
)

// Message keys for runtime faults
const (
	ErrRuntimeUndefined     = "runtime.undefined_symbol"     // args: name
	ErrRuntimeArity         = "runtime.arity"                // args: name, expected, got
	ErrRuntimeMalformed     = "runtime.malformed"            // args: offset, detail
	ErrRuntimeIndex         = "runtime.index_out_of_range"   // args: index, length
	ErrRuntimeType          = "runtime.type"                 // args: operator, type
	ErrRuntimeDivZero       = "runtime.div_zero"             // no args
	ErrRuntimeNotCallable   = "runtime.not_callable"         // args: name
	ErrRuntimeRegex         = "runtime.regex"                // args: pattern, error
	ErrRuntimeNoMember      = "runtime.no_member"            // args: class, member
	ErrRuntimeMissingKey    = "runtime.missing_key"          // args: key
)

// Message keys for CLI
const (
	// Usage and help
	MsgUsage            = "cli.usage"
	MsgCommands         = "cli.commands"
	MsgCmdRun           = "cli.cmd_run"
	MsgCmdBuild         = "cli.cmd_build"
	MsgCmdCheck         = "cli.cmd_check"
	MsgCmdRepl          = "cli.cmd_repl"
	MsgCmdVersion       = "cli.cmd_version"
	MsgCmdHelp          = "cli.cmd_help"
	MsgUseHelp          = "cli.use_help"
	MsgUnknownCommand   = "cli.unknown_command"          // args: command

	// Run command
	MsgRunUsage         = "cli.run_usage"
	MsgRunDescription   = "cli.run_description"
	MsgRunArgInput      = "cli.run_arg_input"
	MsgRunOptVerbose    = "cli.run_opt_verbose"

	// Build command
	MsgBuildUsage       = "cli.build_usage"
	MsgBuildDescription = "cli.build_description"
	MsgBuildArgInput    = "cli.build_arg_input"
	MsgBuildOptOutput   = "cli.build_opt_output"
	MsgBuildOptVerbose  = "cli.build_opt_verbose"
	MsgBuildCompleted   = "cli.build_completed"          // args: outputDir
	MsgBuildCompletedV  = "cli.build_completed_verbose"  // args: count, outputDir

	// Check command
	MsgCheckUsage       = "cli.check_usage"
	MsgCheckDescription = "cli.check_description"
	MsgCheckOptFormat   = "cli.check_opt_format"
	MsgCheckPassed      = "cli.check_passed"             // args: count

	// Repl command
	MsgReplBanner       = "cli.repl_banner"              // args: version
	MsgReplUnknown      = "cli.repl_unknown"

	// Common errors
	ErrInputRequired     = "cli.input_required"
	ErrCannotAccessInput = "cli.cannot_access_input"
	ErrCannotLoadConfig  = "cli.cannot_load_config"
	ErrCannotReadFile    = "cli.cannot_read_file"
	ErrCompileFailed     = "cli.compile_failed"         // args: module, count
	ErrNoSourceFiles     = "cli.no_source_files"        // args: dir
	ErrImportCycle       = "cli.import_cycle"           // args: module
	ErrCannotCreateDir   = "cli.cannot_create_dir"
	ErrCannotWriteFile   = "cli.cannot_write_file"
	ErrRunError          = "cli.run_error"              // args: error
	ErrUnknownFormat     = "cli.unknown_format"         // args: format

	// Info messages
	MsgUsingConfig      = "cli.using_config"             // args: configPath, module
	MsgNoConfig         = "cli.no_config"                // args: module
	MsgParsing          = "cli.parsing"                  // args: path
	MsgCompiling        = "cli.compiling"                // args: module, output
	MsgRunning          = "cli.running"                  // args: module
)
