package compiler

import (
	"errors"
	"sort"

	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

// Source 一个待编译的源文件
type Source struct {
	Module string
	Path   string
	Text   string
}

// CycleError 模块之间存在循环导入
type CycleError struct {
	Module string
}

func (e *CycleError) Error() string {
	return i18n.T(i18n.ErrImportCycle, e.Module)
}

// Imports 源码中 import 声明的模块名，语法错误留给正式编译报告
func Imports(src string) []string {
	file, _ := parser.ParseSource(src, diag.Discard)
	var names []string
	for _, stmt := range file.Statements {
		if imp, ok := stmt.(*parser.ImportDecl); ok {
			names = append(names, imp.Module)
		}
	}
	return names
}

// Order 按导入关系排序，被导入的模块在前。
// 导入本次构建之外的模块不参与排序，由 Options.Resolve 解析。
func Order(sources []Source) ([]Source, error) {
	byName := make(map[string]Source, len(sources))
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		byName[s.Module] = s
		names = append(names, s.Module)
	}
	sort.Strings(names)

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(sources))
	ordered := make([]Source, 0, len(sources))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return &CycleError{Module: name}
		case visited:
			return nil
		}
		state[name] = visiting
		for _, dep := range Imports(byName[name].Text) {
			if _, ok := byName[dep]; !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = visited
		ordered = append(ordered, byName[name])
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// Build 按导入顺序编译一组模块。已编译模块的公开接口经序列化后
// 再导入给后续模块，与分开编译时的行为一致。
// 某个模块失败时，导入它的模块被跳过，其余模块照常编译。
func Build(sources []Source, opts Options) ([]*Module, error) {
	ordered, err := Order(sources)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]*symbol.Table)
	failed := make(map[string]bool)
	resolve := func(name string) (*symbol.Table, bool) {
		if t, ok := tables[name]; ok {
			return t, true
		}
		if opts.Resolve != nil {
			return opts.Resolve(name)
		}
		return nil, false
	}

	var mods []*Module
	var errs []error
	for _, src := range ordered {
		if blocked(src.Text, failed) {
			failed[src.Module] = true
			continue
		}
		mod, err := Compile(src.Module, src.Path, src.Text, Options{Sink: opts.Sink, Resolve: resolve, Prelude: opts.Prelude, Check: opts.Check})
		if err != nil {
			failed[src.Module] = true
			errs = append(errs, err)
			continue
		}
		t, err := symbol.Import(mod.Name, mod.Interface)
		if err != nil {
			return nil, err
		}
		tables[mod.Name] = t
		mods = append(mods, mod)
	}
	return mods, errors.Join(errs...)
}

func blocked(src string, failed map[string]bool) bool {
	for _, dep := range Imports(src) {
		if failed[dep] {
			return true
		}
	}
	return false
}

// Needed 运行 target 需要的模块，依赖在前。mods 须已按导入顺序排列。
func Needed(mods []*Module, target string) []*Module {
	byName := make(map[string]*Module, len(mods))
	for _, m := range mods {
		byName[m.Name] = m
	}
	need := make(map[string]bool)
	var mark func(name string)
	mark = func(name string) {
		m, ok := byName[name]
		if !ok || need[name] {
			return
		}
		need[name] = true
		for _, dep := range m.Imports {
			mark(dep)
		}
	}
	mark(target)

	var out []*Module
	for _, m := range mods {
		if need[m.Name] {
			out = append(out, m)
		}
	}
	return out
}
