// Package compiler 把词法、语法、语义分析和代码生成串成一次模块编译，
// 并负责按导入顺序编译、执行一组模块。它不处理文件路径和项目配置。
package compiler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tangzhangming/starbytes/internal/codegen"
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/runtime"
	"github.com/tangzhangming/starbytes/internal/sema"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// Extension 源文件扩展名
const Extension = ".sb"

// Module 编译完成的模块
type Module struct {
	Name      string
	Path      string
	Code      []byte
	Interface []byte
	Imports   []string
	Regions   map[int]diag.Region // 运行时错误定位用，从 .sbc 读入的模块没有
}

// Options 编译选项
type Options struct {
	Sink    diag.Sink
	Resolve sema.Resolver // 本次构建之外的模块
	Prelude []*symbol.Table
	Check   bool // 只做分析，不生成字节码
}

// FailedError 模块存在编译错误
type FailedError struct {
	Module string
	Errors int
}

func (e *FailedError) Error() string {
	return i18n.T(i18n.ErrCompileFailed, e.Module, e.Errors)
}

// Context 单个模块的编译上下文：先 ParseSource，再 Finish
type Context struct {
	name  string
	path  string
	opts  Options
	diags *diag.Collector
	file  *parser.File
}

// NewContext 创建模块的编译上下文
func NewContext(name string, opts Options) *Context {
	if opts.Sink == nil {
		opts.Sink = diag.Discard
	}
	return &Context{name: name, opts: opts, diags: diag.NewCollector()}
}

func (c *Context) sink() diag.Sink {
	return diag.WithFile(diag.Tee(c.opts.Sink, c.diags), c.path)
}

// ParseSource 把源码解析进上下文，没有词法和语法错误时返回 true
func (c *Context) ParseSource(path, src string) bool {
	c.path = path
	c.file, _ = parser.ParseSource(src, c.sink())
	return c.diags.ErrorCount() == 0
}

// Finish 分析并生成代码。任何阶段报告过错误都返回 *FailedError。
func (c *Context) Finish() (*Module, error) {
	if c.file == nil {
		return nil, fmt.Errorf("compiler: module %s has no parsed source", c.name)
	}
	if c.diags.ErrorCount() > 0 {
		return nil, c.failed()
	}
	checked, _ := sema.Analyze(c.file, sema.Options{
		Module:  c.name,
		Sink:    c.sink(),
		Resolve: c.opts.Resolve,
		Prelude: c.opts.Prelude,
	})
	if checked == nil {
		return nil, c.failed()
	}
	if c.opts.Check {
		return &Module{
			Name:      c.name,
			Path:      c.path,
			Interface: checked.Interface(),
			Imports:   checked.Table.Dependencies(),
		}, nil
	}
	out, err := codegen.Generate(checked)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	return &Module{
		Name:      c.name,
		Path:      c.path,
		Code:      out.Code,
		Interface: out.Interface,
		Imports:   checked.Table.Dependencies(),
		Regions:   out.Regions,
	}, nil
}

func (c *Context) failed() error {
	return &FailedError{Module: c.name, Errors: c.diags.ErrorCount()}
}

// Diagnostics 本模块报告的全部诊断
func (c *Context) Diagnostics() []*diag.Diagnostic {
	return c.diags.Diagnostics()
}

// Warnings 本模块报告的警告数量
func (c *Context) Warnings() int {
	return c.diags.WarningCount()
}

// Compile 编译单个模块
func Compile(name, path, src string, opts Options) (*Module, error) {
	c := NewContext(name, opts)
	c.ParseSource(path, src)
	return c.Finish()
}

// Execute 依次执行模块的字节码，依赖模块应排在前面。
// 能定位的运行时错误以出错语句的 文件:行:列 开头，否则以模块名开头。
func Execute(in *runtime.Interp, mods ...*Module) error {
	for _, m := range mods {
		err := in.ExecUnit(&runtime.Unit{Code: m.Code, File: m.Path, Regions: m.Regions})
		if err == nil {
			continue
		}
		var f *runtime.Fault
		if errors.As(err, &f) && f.Where() != "" {
			return fmt.Errorf("%s: %w", f.Where(), err)
		}
		return fmt.Errorf("%s: %w", m.Name, err)
	}
	return nil
}

// ModuleName 文件名去掉扩展名即模块名
func ModuleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Extension)
}

// IsFailed 错误是否来自源码中的编译错误，而不是内部错误
func IsFailed(err error) bool {
	var f *FailedError
	return errors.As(err, &f)
}
