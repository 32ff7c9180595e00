package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tangzhangming/starbytes/internal/compiler"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/runtime"
)

// defaultModule 输入为目录时运行的模块
const defaultModule = "main"

// runCmd 编译并运行 starbytes 模块
func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	verbose := fs.Bool("v", false, i18n.T(i18n.MsgRunOptVerbose))

	fs.Usage = func() {
		fmt.Println(i18n.T(i18n.MsgRunUsage))
		fmt.Println()
		fmt.Println(i18n.T(i18n.MsgRunDescription))
		fmt.Println()
		fmt.Println("Arguments:")
		fmt.Println(i18n.T(i18n.MsgRunArgInput))
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

	if err := run(fs.Arg(0), os.Stdout, *verbose); err != nil {
		printError(i18n.T(i18n.ErrRunError, err))
		os.Exit(1)
	}
}

// run 编译输入所在目录的模块，执行目标模块及其依赖。
// 与目标无关的模块编译失败只给出警告。
func run(input string, stdout io.Writer, verbose bool) error {
	p, err := loadProject(input, verbose)
	if err != nil {
		return err
	}
	target := p.target
	if target == "" {
		target = defaultModule
	}

	mods, buildErr := compiler.Build(p.sources, compiler.Options{
		Sink: p.renderer(p.cfg.Diagnostics.Format, os.Stderr),
	})
	needed := compiler.Needed(mods, target)
	if len(needed) == 0 {
		if buildErr != nil {
			return compileError(buildErr)
		}
		return &noFilesError{dir: p.dir}
	}
	if buildErr != nil {
		printWarning(compileError(buildErr).Error())
	}

	if verbose {
		printInfo(i18n.T(i18n.MsgRunning, target))
	}
	in := runtime.New(runtime.Options{Stdout: stdout})
	defer in.Close()
	return compiler.Execute(in, needed...)
}
