package symbol

import (
	"fmt"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/parser"
)

// 公开接口文件中的标记
const (
	markTableStart byte = 0xA0
	markScope      byte = 0xC0
	markType       byte = 0xE0
	markTableEnd   byte = 0xFF
)

// 类型标志位
const (
	typeOptional byte = 1 << iota
	typeThrowable
	typeGenericParam
	typeAlias
)

// Serialize 把表中导出的条目写成公开接口：
// 依赖列表、表开始标记、去重的作用域声明、条目记录、表结束标记
func Serialize(t *Table) []byte {
	w := bytecode.NewWriter()
	w.U32(uint32(len(t.deps)))
	for _, d := range t.deps {
		w.ID(d)
	}
	w.U8(markTableStart)

	declared := map[string]bool{"": true}
	for _, e := range t.entries {
		if !e.Exported() {
			continue
		}
		writeScopeChain(w, e.Scope, declared)
		writeEntry(w, e)
	}

	w.U8(markTableEnd)
	return w.Bytes()
}

// writeScopeChain 由外向内写出尚未声明过的作用域
func writeScopeChain(w *bytecode.Writer, s *parser.Scope, declared map[string]bool) {
	if s == nil || declared[s.Key()] {
		return
	}
	writeScopeChain(w, s.Parent, declared)
	w.U8(markScope)
	w.ID(s.Name)
	w.U8(byte(s.Kind))
	w.ID(s.Parent.Key())
	declared[s.Key()] = true
}

func writeEntry(w *bytecode.Writer, e *Entry) {
	w.U8(byte(e.Kind))
	w.ID(e.Name)
	w.ID(e.EmittedName)
	w.ID(e.Scope.Key())
	switch e.Kind {
	case EntryVar:
		writeType(w, e.Type)
		w.Bool(e.Readonly)
	case EntryFunction:
		writeFunc(w, e.Func)
	case EntryClass, EntryInterface:
		writeNames(w, e.Class.Generics)
		w.U32(uint32(len(e.Class.Fields)))
		for _, f := range e.Class.Fields {
			w.ID(f.Name)
			writeType(w, f.Type)
			w.Bool(f.Readonly)
		}
		w.U32(uint32(len(e.Class.Methods)))
		for _, m := range e.Class.Methods {
			w.ID(m.Name)
			writeFunc(w, m.Func)
		}
		w.U32(uint32(len(e.Class.Constructors)))
		for _, c := range e.Class.Constructors {
			writeFunc(w, c)
		}
	}
}

func writeFunc(w *bytecode.Writer, f *FuncInfo) {
	writeNames(w, f.Generics)
	w.U32(uint32(len(f.Params)))
	for _, p := range f.Params {
		w.ID(p.Name)
		writeType(w, p.Type)
	}
	ret := f.Return
	if ret == nil {
		ret = parser.VoidType
	}
	writeType(w, ret)
}

func writeNames(w *bytecode.Writer, names []string) {
	w.U32(uint32(len(names)))
	for _, n := range names {
		w.ID(n)
	}
}

func writeType(w *bytecode.Writer, t *parser.Type) {
	w.U8(markType)
	w.ID(t.Name)
	var flags byte
	if t.Optional {
		flags |= typeOptional
	}
	if t.Throwable {
		flags |= typeThrowable
	}
	if t.GenericParam {
		flags |= typeGenericParam
	}
	if t.Alias {
		flags |= typeAlias
	}
	w.U8(flags)
	w.U32(uint32(len(t.Params)))
	for _, p := range t.Params {
		writeType(w, p)
	}
}

// importer 读取公开接口时的状态
type importer struct {
	r      *bytecode.Reader
	table  *Table
	scopes map[string]*parser.Scope
}

// Import 从公开接口重建一个只读符号表。
// 命名空间会同时登记为 Scope 条目，供 Geo.x 形式的访问使用。
func Import(module string, data []byte) (*Table, error) {
	im := &importer{
		r:      bytecode.NewReader(data),
		table:  New(module),
		scopes: map[string]*parser.Scope{"": parser.NewGlobalScope()},
	}
	if err := im.read(); err != nil {
		return nil, fmt.Errorf("import %s: %w", module, err)
	}
	return im.table, nil
}

func (im *importer) read() error {
	n, err := im.r.Count()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		dep, err := im.r.ID()
		if err != nil {
			return err
		}
		im.table.AddDependency(dep)
	}
	if err := im.expect(markTableStart); err != nil {
		return err
	}

	for {
		tag, err := im.r.U8()
		if err != nil {
			return err
		}
		switch {
		case tag == markTableEnd:
			return nil
		case tag == markScope:
			if err := im.readScope(); err != nil {
				return err
			}
		case tag >= byte(EntryVar) && tag <= byte(EntryInterface):
			if err := im.readEntry(EntryKind(tag)); err != nil {
				return err
			}
		default:
			return im.malformed("unknown record tag 0x%02X", tag)
		}
	}
}

func (im *importer) malformed(format string, args ...any) error {
	return &bytecode.MalformedError{Offset: im.r.Pos(), Detail: fmt.Sprintf(format, args...)}
}

func (im *importer) expect(mark byte) error {
	got, err := im.r.U8()
	if err != nil {
		return err
	}
	if got != mark {
		return im.malformed("expected marker 0x%02X, found 0x%02X", mark, got)
	}
	return nil
}

func (im *importer) scope(key string) (*parser.Scope, error) {
	s, ok := im.scopes[key]
	if !ok {
		return nil, im.malformed("scope %q used before its declaration", key)
	}
	return s, nil
}

func (im *importer) readScope() error {
	name, err := im.r.ID()
	if err != nil {
		return err
	}
	kind, err := im.r.U8()
	if err != nil {
		return err
	}
	parentKey, err := im.r.ID()
	if err != nil {
		return err
	}
	parent, err := im.scope(parentKey)
	if err != nil {
		return err
	}
	s := parser.NewScope(name, parser.ScopeKind(kind), parent, 0)
	im.scopes[s.Key()] = s
	if s.Kind == parser.ScopeNamespace {
		im.table.Add(&Entry{
			Name:        name,
			EmittedName: Qualify(parent, name),
			Kind:        EntryScope,
			Scope:       parent,
			Public:      true,
			Module:      im.table.Module,
			Inner:       s,
		})
	}
	return nil
}

func (im *importer) readEntry(kind EntryKind) error {
	name, err := im.r.ID()
	if err != nil {
		return err
	}
	emitted, err := im.r.ID()
	if err != nil {
		return err
	}
	scopeKey, err := im.r.ID()
	if err != nil {
		return err
	}
	scope, err := im.scope(scopeKey)
	if err != nil {
		return err
	}

	e := &Entry{Name: name, EmittedName: emitted, Kind: kind, Scope: scope, Public: true, Module: im.table.Module}
	switch kind {
	case EntryVar:
		if e.Type, err = im.readType(); err != nil {
			return err
		}
		if e.Readonly, err = im.r.Bool(); err != nil {
			return err
		}
	case EntryFunction:
		if e.Func, err = im.readFunc(); err != nil {
			return err
		}
	case EntryClass, EntryInterface:
		e.Inner = parser.NewScope(name, parser.ScopeClass, scope, 0)
		e.Type = &parser.Type{Name: emitted}
		if e.Class, err = im.readClass(e.Inner); err != nil {
			return err
		}
	}
	if !im.table.Add(e) {
		return im.malformed("duplicate entry %q", emitted)
	}
	return nil
}

func (im *importer) readClass(inner *parser.Scope) (*ClassInfo, error) {
	c := &ClassInfo{}
	var err error
	if c.Generics, err = im.readNames(); err != nil {
		return nil, err
	}
	n, err := im.r.Count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		f := &Entry{Kind: EntryVar, Scope: inner, Public: true, Module: im.table.Module}
		if f.Name, err = im.r.ID(); err != nil {
			return nil, err
		}
		f.EmittedName = f.Name
		if f.Type, err = im.readType(); err != nil {
			return nil, err
		}
		if f.Readonly, err = im.r.Bool(); err != nil {
			return nil, err
		}
		c.Fields = append(c.Fields, f)
	}
	if n, err = im.r.Count(); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m := &Entry{Kind: EntryFunction, Scope: inner, Public: true, Module: im.table.Module}
		if m.Name, err = im.r.ID(); err != nil {
			return nil, err
		}
		m.EmittedName = m.Name
		if m.Func, err = im.readFunc(); err != nil {
			return nil, err
		}
		c.Methods = append(c.Methods, m)
	}
	if n, err = im.r.Count(); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		ctor, err := im.readFunc()
		if err != nil {
			return nil, err
		}
		c.Constructors = append(c.Constructors, ctor)
	}
	return c, nil
}

func (im *importer) readFunc() (*FuncInfo, error) {
	f := &FuncInfo{}
	var err error
	if f.Generics, err = im.readNames(); err != nil {
		return nil, err
	}
	n, err := im.r.Count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		var p Param
		if p.Name, err = im.r.ID(); err != nil {
			return nil, err
		}
		if p.Type, err = im.readType(); err != nil {
			return nil, err
		}
		f.Params = append(f.Params, p)
	}
	if f.Return, err = im.readType(); err != nil {
		return nil, err
	}
	return f, nil
}

func (im *importer) readNames() ([]string, error) {
	n, err := im.r.Count()
	if err != nil {
		return nil, err
	}
	var names []string
	for i := 0; i < n; i++ {
		name, err := im.r.ID()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (im *importer) readType() (*parser.Type, error) {
	if err := im.expect(markType); err != nil {
		return nil, err
	}
	name, err := im.r.ID()
	if err != nil {
		return nil, err
	}
	flags, err := im.r.U8()
	if err != nil {
		return nil, err
	}
	n, err := im.r.Count()
	if err != nil {
		return nil, err
	}
	var params []*parser.Type
	for i := 0; i < n; i++ {
		p, err := im.readType()
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}

	if builtin, ok := parser.BuiltinType(name); ok && flags == 0 && n == 0 {
		return builtin, nil
	}
	return &parser.Type{
		Name:         name,
		Params:       params,
		Optional:     flags&typeOptional != 0,
		Throwable:    flags&typeThrowable != 0,
		GenericParam: flags&typeGenericParam != 0,
		Alias:        flags&typeAlias != 0,
	}, nil
}

// Qualify 返回作用域中名字的输出名，命名空间成员为 "Outer::Inner::name"
func Qualify(scope *parser.Scope, name string) string {
	if ns := scope.Namespace(); ns != "" {
		return ns + "::" + name
	}
	return name
}
