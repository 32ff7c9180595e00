package symbol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/parser"
)

func varEntry(name string, scope *parser.Scope, typ *parser.Type) *Entry {
	return &Entry{Name: name, EmittedName: Qualify(scope, name), Kind: EntryVar, Scope: scope, Public: true, Type: typ}
}

func TestAddRejectsDuplicatesInSameScope(t *testing.T) {
	global := parser.NewGlobalScope()
	block := parser.NewScope("block", parser.ScopeNeutral, global, 1)
	tbl := New("main")

	if !tbl.Add(varEntry("x", global, parser.IntType)) {
		t.Fatal("first x rejected")
	}
	if tbl.Add(varEntry("x", global, parser.StringType)) {
		t.Error("second x in the same scope was accepted")
	}
	if !tbl.Add(varEntry("x", block, parser.StringType)) {
		t.Error("x in a child scope should shadow, not collide")
	}
	if n := len(tbl.Entries()); n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
}

func TestFindEntryWalksScopeChain(t *testing.T) {
	global := parser.NewGlobalScope()
	fn := parser.NewScope("f", parser.ScopeFunction, global, 1)
	block := parser.NewScope("block", parser.ScopeNeutral, fn, 2)

	tbl := New("main")
	tbl.Add(varEntry("x", global, parser.IntType))
	tbl.Add(varEntry("x", fn, parser.StringType))
	ctx := NewContext(tbl)

	e, err := ctx.FindEntry("x", block)
	if err != nil {
		t.Fatal(err)
	}
	if e.Type != parser.StringType {
		t.Errorf("nearest x has type %s, want String", e.Type)
	}
	if e, _ := ctx.FindEntry("x", global); e.Type != parser.IntType {
		t.Error("global lookup should not see function locals")
	}
	if _, err := ctx.FindEntry("y", block); !errors.Is(err, ErrUndefined) {
		t.Errorf("err = %v, want ErrUndefined", err)
	}
}

func TestFindEntryAmbiguousAcrossImports(t *testing.T) {
	main := New("main")
	a := New("a")
	a.Add(varEntry("shared", parser.NewGlobalScope(), parser.IntType))
	b := New("b")
	b.Add(varEntry("shared", parser.NewGlobalScope(), parser.IntType))

	ctx := NewContext(main)
	ctx.Import(a)
	ctx.Import(b)
	ctx.Import(a)

	if _, err := ctx.FindEntry("shared", parser.NewGlobalScope()); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("err = %v, want ErrAmbiguous", err)
	}
	if deps := main.Dependencies(); len(deps) != 2 {
		t.Errorf("dependencies = %v, want [a b]", deps)
	}
}

func TestInterfaceRoundTrip(t *testing.T) {
	global := parser.NewGlobalScope()
	tbl := New("math")
	tbl.AddDependency("core")
	tbl.Add(&Entry{
		Name: "f", EmittedName: "f", Kind: EntryFunction, Scope: global, Public: true,
		Func: &FuncInfo{Params: []Param{{Name: "x", Type: parser.IntType}}, Return: parser.IntType},
	})

	data := Serialize(tbl)
	imported, err := Import("math", data)
	if err != nil {
		t.Fatal(err)
	}
	if deps := imported.Dependencies(); len(deps) != 1 || deps[0] != "core" {
		t.Errorf("dependencies = %v", deps)
	}

	e, err := NewContext(New("main"), imported).FindEntry("f", parser.NewGlobalScope())
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind != EntryFunction || len(e.Func.Params) != 1 {
		t.Fatalf("imported entry = %+v", e)
	}
	if p := e.Func.Params[0]; p.Name != "x" || p.Type != parser.IntType {
		t.Errorf("param = %s:%s", p.Name, p.Type)
	}
	if e.Func.Return != parser.IntType {
		t.Errorf("return = %s", e.Func.Return)
	}
	if !bytes.Equal(Serialize(imported), data) {
		t.Error("re-serializing the imported table changed the bytes")
	}
}

func TestInterfaceExportsOnlyPublicNonLocal(t *testing.T) {
	global := parser.NewGlobalScope()
	geo := parser.NewScope("Geo", parser.ScopeNamespace, global, 1)
	fn := parser.NewScope("main", parser.ScopeFunction, global, 2)

	tbl := New("m")
	tbl.Add(&Entry{Name: "Geo", EmittedName: "Geo", Kind: EntryScope, Scope: global, Public: true, Inner: geo})
	tbl.Add(varEntry("pi", geo, parser.FloatType))
	tbl.Add(varEntry("local", fn, parser.IntType))
	hidden := varEntry("secret", global, parser.IntType)
	hidden.Public = false
	tbl.Add(hidden)

	imported, err := Import("m", Serialize(tbl))
	if err != nil {
		t.Fatal(err)
	}
	ctx := NewContext(New("main"), imported)

	ns, err := ctx.FindEntry("Geo", parser.NewGlobalScope())
	if err != nil || ns.Kind != EntryScope {
		t.Fatalf("namespace entry: %v %+v", err, ns)
	}
	pi, err := ctx.FindIn("pi", ns.Inner)
	if err != nil {
		t.Fatal(err)
	}
	if pi.EmittedName != "Geo::pi" || pi.Type != parser.FloatType {
		t.Errorf("pi = %s : %s", pi.EmittedName, pi.Type)
	}
	for _, name := range []string{"local", "secret"} {
		if _, err := ctx.FindEntry(name, parser.NewGlobalScope()); err == nil {
			t.Errorf("%s should not be exported", name)
		}
	}
}

func TestInterfaceClassRecord(t *testing.T) {
	global := parser.NewGlobalScope()
	inner := parser.NewScope("Point", parser.ScopeClass, global, 1)
	class := &Entry{
		Name: "Point", EmittedName: "Point", Kind: EntryClass, Scope: global, Public: true,
		Type: &parser.Type{Name: "Point"}, Inner: inner,
		Class: &ClassInfo{
			Fields: []*Entry{varEntry("x", inner, parser.IntType)},
			Methods: []*Entry{{Name: "norm", EmittedName: "norm", Kind: EntryFunction, Scope: inner,
				Func: &FuncInfo{Return: parser.FloatType}}},
			Constructors: []*FuncInfo{{Params: []Param{{Name: "x", Type: parser.IntType}}, Return: parser.VoidType}},
		},
	}
	tbl := New("shapes")
	tbl.Add(class)

	imported, err := Import("shapes", Serialize(tbl))
	if err != nil {
		t.Fatal(err)
	}
	got := imported.Lookup("Point", parser.NewGlobalScope())
	if len(got) != 1 {
		t.Fatalf("Point entries = %d", len(got))
	}
	c := got[0].Class
	if c.Field("x") == nil || c.Method("norm") == nil {
		t.Fatal("members were lost")
	}
	if _, ok := c.Constructor(1); !ok {
		t.Error("one-argument constructor was lost")
	}
	if _, ok := c.Constructor(0); ok {
		t.Error("a class with constructors should not accept an undeclared arity")
	}
}

func TestImportRejectsMalformedInput(t *testing.T) {
	good := Serialize(New("m"))
	tests := map[string][]byte{
		"empty":            nil,
		"missing start":    {0, 0, 0, 0, 0x11},
		"missing end":      good[:len(good)-1],
		"unknown tag":      {0, 0, 0, 0, 0xA0, 0x42},
		"undeclared scope": append([]byte{0, 0, 0, 0, 0xA0, 0x01, 1, 0, 0, 0, 'x', 1, 0, 0, 0, 'x', 3, 0, 0, 0}, "Geo"...),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Import("m", data)
			var malformed *bytecode.MalformedError
			if !errors.As(err, &malformed) {
				t.Errorf("err = %v, want *bytecode.MalformedError", err)
			}
		})
	}
}
