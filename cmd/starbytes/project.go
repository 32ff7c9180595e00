package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tangzhangming/starbytes/internal/compiler"
	"github.com/tangzhangming/starbytes/internal/config"
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
)

// project 一次命令处理的源码目录
type project struct {
	cfg        *config.Config
	configPath string
	dir        string // 源码目录
	target     string // 输入为单个文件时的模块名
	sources    []compiler.Source
}

// loadProject 加载输入文件所在目录（或输入目录）中的全部模块。
// 模块名取自文件名，所以只读取目录本身，不进入子目录。
func loadProject(input string, verbose bool) (*project, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, &accessError{err: err}
	}

	p := &project{dir: input}
	if !info.IsDir() {
		p.dir = filepath.Dir(input)
		p.target = compiler.ModuleName(input)
	}

	// 查找并加载 starbytes.toml 配置
	p.cfg, p.configPath, err = config.FindAndLoad(p.dir)
	if err != nil {
		return nil, &configError{err: err}
	}
	if p.cfg.Language != "" {
		if lang, ok := i18n.ParseLanguage(p.cfg.Language); ok {
			i18n.SetLanguage(lang)
		}
	}

	if verbose {
		if p.configPath != "" {
			printInfo(i18n.T(i18n.MsgUsingConfig, p.configPath, p.cfg.Project.Module))
		} else {
			printInfo(i18n.T(i18n.MsgNoConfig, p.cfg.Project.Module))
		}
	}

	if p.sources, err = readSources(p.dir, verbose); err != nil {
		return nil, err
	}
	return p, nil
}

// readSources 读取目录中的 .sb 文件，按文件名排序
func readSources(dir string, verbose bool) ([]compiler.Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &accessError{err: err}
	}

	var sources []compiler.Source
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), compiler.Extension) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if verbose {
			printInfo(i18n.T(i18n.MsgParsing, path))
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, &readFileError{path: path, err: err}
		}
		sources = append(sources, compiler.Source{
			Module: compiler.ModuleName(path),
			Path:   path,
			Text:   string(text),
		})
	}
	if len(sources) == 0 {
		return nil, &noFilesError{dir: dir}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Module < sources[j].Module })
	return sources, nil
}

// renderer 按格式创建诊断输出
func (p *project) renderer(format string, out io.Writer) diag.Sink {
	if format == config.FormatJSON {
		return diag.NewJSONRenderer(out)
	}
	r := diag.NewTextRenderer(out)
	for _, s := range p.sources {
		r.AddSource(s.Path, s.Text)
	}
	return r
}

// compileError 编译失败的模块逐个列出
func compileError(err error) error {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return err
	}
	var lines []string
	for _, e := range joined.Unwrap() {
		lines = append(lines, e.Error())
	}
	return errors.New(strings.Join(lines, "\n"))
}

// 错误类型定义
type accessError struct {
	err error
}

func (e *accessError) Error() string {
	return fmt.Sprintf("%s: %v", i18n.T(i18n.ErrCannotAccessInput), e.err)
}

func (e *accessError) Unwrap() error { return e.err }

type configError struct {
	err error
}

func (e *configError) Error() string {
	return fmt.Sprintf("%s: %v", i18n.T(i18n.ErrCannotLoadConfig), e.err)
}

func (e *configError) Unwrap() error { return e.err }

type readFileError struct {
	path string
	err  error
}

func (e *readFileError) Error() string {
	return fmt.Sprintf("%s %s: %v", i18n.T(i18n.ErrCannotReadFile), e.path, e.err)
}

type noFilesError struct {
	dir string
}

func (e *noFilesError) Error() string {
	return i18n.T(i18n.ErrNoSourceFiles, e.dir)
}

type createDirError struct {
	path string
	err  error
}

func (e *createDirError) Error() string {
	return fmt.Sprintf("%s %s: %v", i18n.T(i18n.ErrCannotCreateDir), e.path, e.err)
}

type writeFileError struct {
	path string
	err  error
}

func (e *writeFileError) Error() string {
	return fmt.Sprintf("%s %s: %v", i18n.T(i18n.ErrCannotWriteFile), e.path, e.err)
}
