package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tangzhangming/starbytes/internal/compiler"
	"github.com/tangzhangming/starbytes/internal/i18n"
)

// 输出文件扩展名
const (
	codeExt      = ".sbc"
	interfaceExt = ".sbi"
)

// buildCmd 把 starbytes 源码编译成字节码
func buildCmd(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	outputDir := fs.String("o", "", i18n.T(i18n.MsgBuildOptOutput))
	verbose := fs.Bool("v", false, i18n.T(i18n.MsgBuildOptVerbose))

	fs.Usage = func() {
		fmt.Println(i18n.T(i18n.MsgBuildUsage))
		fmt.Println()
		fmt.Println(i18n.T(i18n.MsgBuildDescription))
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

	out, count, err := build(fs.Arg(0), *outputDir, *verbose)
	if err != nil {
		printError("Error: " + err.Error())
		os.Exit(1)
	}

	if *verbose {
		fmt.Println(i18n.T(i18n.MsgBuildCompletedV, count, out))
	} else {
		fmt.Println(i18n.T(i18n.MsgBuildCompleted, out))
	}
}

// build 编译输入目录中的全部模块并写出，返回输出目录和模块数
func build(input, outputDir string, verbose bool) (string, int, error) {
	p, err := loadProject(input, verbose)
	if err != nil {
		return "", 0, err
	}
	if outputDir == "" {
		outputDir = p.cfg.OutputDir(p.configPath, p.dir)
	}

	mods, err := compiler.Build(p.sources, compiler.Options{
		Sink: p.renderer(p.cfg.Diagnostics.Format, os.Stderr),
	})
	if err != nil {
		return "", 0, compileError(err)
	}
	if err := writeModules(mods, outputDir, verbose); err != nil {
		return "", 0, err
	}
	return outputDir, len(mods), nil
}

// writeModules 为每个模块写出 <module>.sbc 和 <module>.sbi
func writeModules(mods []*compiler.Module, dir string, verbose bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &createDirError{path: dir, err: err}
	}
	for _, m := range mods {
		codePath := filepath.Join(dir, m.Name+codeExt)
		if verbose {
			printInfo(i18n.T(i18n.MsgCompiling, m.Path, codePath))
		}
		if err := os.WriteFile(codePath, m.Code, 0644); err != nil {
			return &writeFileError{path: codePath, err: err}
		}
		ifacePath := filepath.Join(dir, m.Name+interfaceExt)
		if err := os.WriteFile(ifacePath, m.Interface, 0644); err != nil {
			return &writeFileError{path: ifacePath, err: err}
		}
	}
	return nil
}
