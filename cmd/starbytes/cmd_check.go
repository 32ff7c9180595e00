package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tangzhangming/starbytes/internal/compiler"
	"github.com/tangzhangming/starbytes/internal/config"
	"github.com/tangzhangming/starbytes/internal/i18n"
)

// checkCmd 只做分析并输出诊断
func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	format := fs.String("format", "", i18n.T(i18n.MsgCheckOptFormat))

	fs.Usage = func() {
		fmt.Println(i18n.T(i18n.MsgCheckUsage))
		fmt.Println()
		fmt.Println(i18n.T(i18n.MsgCheckDescription))
		fmt.Println()
		fmt.Println("Arguments:")
		fmt.Println(i18n.T(i18n.MsgBuildArgInput))
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		printError(i18n.T(i18n.ErrInputRequired))
		fs.Usage()
		os.Exit(1)
	}

	count, used, err := check(fs.Arg(0), *format)
	if err != nil {
		printError("Error: " + err.Error())
		os.Exit(1)
	}
	if used != config.FormatJSON {
		fmt.Println(i18n.T(i18n.MsgCheckPassed, count))
	}
}

// check 分析输入目录中的全部模块，诊断写到标准输出。
// 返回通过的模块数和实际使用的诊断格式。
func check(input, format string) (int, string, error) {
	p, err := loadProject(input, false)
	if err != nil {
		return 0, "", err
	}
	if format == "" {
		format = p.cfg.Diagnostics.Format
	}
	if err := config.CheckFormat(format); err != nil {
		return 0, "", err
	}

	mods, err := compiler.Build(p.sources, compiler.Options{
		Sink:  p.renderer(format, os.Stdout),
		Check: true,
	})
	if err != nil {
		return 0, format, compileError(err)
	}
	return len(mods), format, nil
}
