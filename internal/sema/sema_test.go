package sema

import (
	"testing"

	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

func analyze(t *testing.T, src string, resolve Resolver) (*Checked, *diag.Collector) {
	t.Helper()
	c := diag.NewCollector()
	file, errs := parser.ParseSource(src, c)
	if errs > 0 || c.HasErrors() {
		for _, d := range c.Diagnostics() {
			t.Errorf("syntax: %s", d.Error())
		}
		t.FailNow()
	}
	checked, _ := Analyze(file, Options{Module: "main", Sink: c, Resolve: resolve})
	return checked, c
}

func mustAnalyze(t *testing.T, src string) *Checked {
	t.Helper()
	checked, c := analyze(t, src, nil)
	if checked == nil {
		for _, d := range c.Diagnostics() {
			t.Errorf("unexpected diagnostic: %s", d.Error())
		}
		t.FailNow()
	}
	return checked
}

func globalEntry(t *testing.T, checked *Checked, name string) *symbol.Entry {
	t.Helper()
	found := checked.Table.Lookup(name, checked.File.Global)
	if len(found) != 1 {
		t.Fatalf("%d global entries named %s", len(found), name)
	}
	return found[0]
}

func codes(c *diag.Collector) []string {
	var out []string
	for _, d := range c.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func TestReturnTypeInference(t *testing.T) {
	checked := mustAnalyze(t, `
func five() { return 5 }
func nothing() { print("x") }
func half(n:Float) { return n / 2 }
`)
	tests := map[string]*parser.Type{
		"five":    parser.IntType,
		"nothing": parser.VoidType,
		"half":    parser.FloatType,
	}
	for name, want := range tests {
		if got := globalEntry(t, checked, name).Func.Return; got != want {
			t.Errorf("%s returns %s, want %s", name, got, want)
		}
	}
}

func TestForwardReferenceInfersOnDemand(t *testing.T) {
	checked := mustAnalyze(t, `
decl four = twice(2)
func twice(n:Int) { return n * 2 }
`)
	if typ := globalEntry(t, checked, "four").Type; typ != parser.IntType {
		t.Errorf("four has type %s, want Int", typ)
	}
}

func TestRecursionNeedsDeclaredReturn(t *testing.T) {
	_, c := analyze(t, `func fact(n:Int) { if (n < 2) { return 1 } return n * fact(n - 1) }`, nil)
	if len(c.ByKey("sema.cannot_deduce_type")) != 1 {
		t.Errorf("diagnostics = %v, want one SB3005", codes(c))
	}
	mustAnalyze(t, `func fact(n:Int) Int { if (n < 2) { return 1 } return n * fact(n - 1) }`)
}

func TestDuplicatesAreRejected(t *testing.T) {
	tests := []string{
		"decl x = 1\ndecl x = 2",
		"func f() {}\nfunc f() {}",
		"class A {}\ndecl A = 1",
		"func f(a:Int, a:Int) {}",
		"class A { decl x:Int\n decl x:String }",
		"class A { new(a:Int) {}\n new(b:String) {} }",
	}
	for _, src := range tests {
		checked, c := analyze(t, src, nil)
		if checked != nil {
			t.Errorf("%q: analysis should fail", src)
		}
		if got := codes(c); len(got) != 1 || got[0] != "SB3004" {
			t.Errorf("%q: diagnostics = %v, want [SB3004]", src, got)
		}
	}
}

func TestUndefinedSymbolIsReportedOnce(t *testing.T) {
	checked, c := analyze(t, `
decl y = missing + 1
print(y)
decl z = y * 2
`, nil)
	if checked != nil {
		t.Fatal("analysis should fail")
	}
	if got := codes(c); len(got) != 1 || got[0] != "SB3002" {
		t.Errorf("diagnostics = %v, want exactly one SB3002", got)
	}
}

func TestUnreachableWarningOnce(t *testing.T) {
	checked, c := analyze(t, `
func f() Int {
	return 1
	print("a")
	print("b")
}
`, nil)
	if checked == nil {
		t.Fatalf("warnings must not block analysis: %v", codes(c))
	}
	warnings := c.ByKey("sema.unreachable_code")
	if len(warnings) != 1 {
		t.Fatalf("unreachable warnings = %d, want 1", len(warnings))
	}
	if line := warnings[0].Region.StartLine; line != 4 {
		t.Errorf("warning on line %d, want 4", line)
	}
}

func TestUnreachableStatementsAreNotAnalyzed(t *testing.T) {
	checked, c := analyze(t, "func f() Int {\n\treturn 1\n\tmissingName\n\tdecl s:Int = \"x\"\n}\nprint(f())", nil)
	if checked == nil {
		t.Fatalf("diagnostics = %v, want only a warning", codes(c))
	}
	if got := codes(c); len(got) != 1 || got[0] != "SB3501" {
		t.Errorf("diagnostics = %v, want [SB3501]", got)
	}
	body := checked.File.Statements[0].(*parser.FuncDecl).Body.Statements
	if checked.Unreachable(body[0]) || !checked.Unreachable(body[1]) || !checked.Unreachable(body[2]) {
		t.Error("statements after return are not marked unreachable")
	}
}

func TestDiscardedResultWarning(t *testing.T) {
	_, c := analyze(t, `
func f() Int { return 1 }
f()
print("x")
decl kept = f()
`, nil)
	warnings := c.ByKey("sema.result_discarded")
	if len(warnings) != 1 || warnings[0].Region.StartLine != 3 {
		t.Errorf("discard warnings = %v", codes(c))
	}
}

func TestSemanticErrors(t *testing.T) {
	tests := []struct {
		src  string
		code string
	}{
		{`decl x:Int = "a"`, "SB3001"},
		{`decl x`, "SB3005"},
		{`decl v = print("a")`, "SB3005"},
		{`if (1) { }`, "SB3006"},
		{"func f(a:Int) Int { return a }\ndecl r = f(1, 2)", "SB3007"},
		{"func f(a:Int) Int { return a }\ndecl r = f(\"s\")", "SB3008"},
		{`func f() Int { return "s" }`, "SB3009"},
		{`func f() Int { print("no return") }`, "SB3009"},
		{`func f(b:Bool) { if (b) { return 1 } return "s" }`, "SB3010"},
		{`return 1`, "SB3011"},
		{"decl x = 1\nx()", "SB3012"},
		{`decl p:Point`, "SB3013"},
		{`import nothing`, "SB3014"},
		{"decl imut x = 1\nx = 2", "SB3015"},
		{"decl s = \"a\"\ns.foo", "SB3016"},
		{"decl n = 1\nn[0]", "SB3017"},
		{"decl a = [1]\na[\"x\"]", "SB3018"},
		{`decl b = !1`, "SB3019"},
		{`decl b = "a" - 1`, "SB3019"},
		{`decl s = self`, "SB3020"},
		{`func f() { func g() {} }`, "SB3021"},
		{"class Box<T> { decl v:T }\ndecl b:Box<Int,Int>", "SB3022"},
		{"class P { decl imut x = 1\n func set() { self.x = 2 } }", "SB3015"},
		{`decl mixed = [1, "a"]`, "SB3001"},
		{`while ("yes") { }`, "SB3006"},
	}
	for _, tt := range tests {
		checked, c := analyze(t, tt.src, nil)
		if checked != nil {
			t.Errorf("%q: analysis should fail", tt.src)
			continue
		}
		if got := codes(c); len(got) != 1 || got[0] != tt.code {
			t.Errorf("%q: diagnostics = %v, want [%s]", tt.src, got, tt.code)
		}
	}
}

func TestClassesResolveCalls(t *testing.T) {
	src := `
class Point {
	decl x:Int
	decl imut y:Int = 0
	new(x:Int, y:Int) {
		self.x = x
		self.y = y
	}
	func sum() { return x + self.y }
	func twice() Int { return sum() * 2 }
}
decl p = new Point(1, 2)
decl q = Point(3, 4)
decl total = p.sum() + q.twice()
p.x = 10
`
	checked := mustAnalyze(t, src)
	if typ := globalEntry(t, checked, "total").Type; typ != parser.IntType {
		t.Errorf("total has type %s", typ)
	}
	if typ := globalEntry(t, checked, "p").Type; typ.Name != "main::Point" {
		t.Errorf("p has type %s", typ)
	}

	kinds := map[CallKind]int{}
	for _, call := range checked.calls {
		kinds[call.Kind]++
	}
	if kinds[CallConstructor] != 2 || kinds[CallMethod] != 2 || kinds[CallSelfMethod] != 1 {
		t.Errorf("call kinds = %v", kinds)
	}
}

func TestNamespacesAndQualifiedAccess(t *testing.T) {
	checked := mustAnalyze(t, `
scope Geo {
	decl pi = 3.14
	func area(r:Float) { return pi * r * r }
	class Circle { decl r:Float = 1.0 }
}
decl a = Geo.area(2.0)
decl c:Geo.Circle = Geo.Circle()
print(Geo.pi)
`)
	geo := globalEntry(t, checked, "Geo")
	area, err := checked.Context.FindIn("area", geo.Inner)
	if err != nil {
		t.Fatal(err)
	}
	if area.EmittedName != "main::Geo::area" || area.Func.Return != parser.FloatType {
		t.Errorf("area = %s returning %s", area.EmittedName, area.Func.Return)
	}
	if typ := globalEntry(t, checked, "c").Type; typ.Name != "main::Geo::Circle" {
		t.Errorf("c has type %s", typ)
	}
}

func TestImportedModule(t *testing.T) {
	lib := mustAnalyze(t, `
scope Geo { decl pi = 3.14 }
func area(r:Float) Float { return Geo.pi * r * r }
@private
func helper() {}
`)
	tbl, err := symbol.Import("geo", lib.Interface())
	if err != nil {
		t.Fatal(err)
	}
	resolve := func(name string) (*symbol.Table, bool) { return tbl, name == "geo" }

	checked, c := analyze(t, "import geo\ndecl a = area(2.0)\nprint(Geo.pi)", resolve)
	if checked == nil {
		t.Fatalf("diagnostics: %v", codes(c))
	}
	if deps := checked.Table.Dependencies(); len(deps) != 1 || deps[0] != "geo" {
		t.Errorf("dependencies = %v", deps)
	}

	_, c = analyze(t, "import geo\nhelper()", resolve)
	if got := codes(c); len(got) != 1 || got[0] != "SB3002" {
		t.Errorf("private helper: diagnostics = %v, want [SB3002]", got)
	}
}

func TestPreludeNeedsNoImport(t *testing.T) {
	prev := mustAnalyze(t, `decl count = 1`)
	tbl, err := symbol.Import("entry1", prev.Interface())
	if err != nil {
		t.Fatal(err)
	}
	c := diag.NewCollector()
	file, _ := parser.ParseSource("print(count + 1)", c)
	checked, _ := Analyze(file, Options{Module: "entry2", Sink: c, Prelude: []*symbol.Table{tbl}})
	if checked == nil {
		t.Fatalf("diagnostics: %v", codes(c))
	}
	if deps := checked.Table.Dependencies(); len(deps) != 1 || deps[0] != "entry1" {
		t.Errorf("dependencies = %v", deps)
	}
}

func TestAmbiguousAcrossImports(t *testing.T) {
	a := mustAnalyze(t, `decl shared = 1`)
	b := mustAnalyze(t, `decl shared = 2`)
	ta, _ := symbol.Import("a", a.Interface())
	tb, _ := symbol.Import("b", b.Interface())
	resolve := func(name string) (*symbol.Table, bool) {
		switch name {
		case "a":
			return ta, true
		case "b":
			return tb, true
		}
		return nil, false
	}
	_, c := analyze(t, "import a\nimport b\nprint(shared)", resolve)
	if got := codes(c); len(got) != 1 || got[0] != "SB3003" {
		t.Errorf("diagnostics = %v, want [SB3003]", got)
	}
}

func TestGenericsAndCollections(t *testing.T) {
	checked := mustAnalyze(t, `
func first<T>(items:T[]) T { return items[0] }
decl n = first([1, 2, 3])
decl words:Dict<String,Int> = {"a": 1}
words["b"] = 2
decl size = words.length
decl list = [1]
list.push(2)
decl matched = n is Int
secure (decl risky = list[5]) catch (e:String) { print(e) }
`)
	tests := map[string]*parser.Type{
		"size":    parser.IntType,
		"matched": parser.BoolType,
		"risky":   parser.IntType,
	}
	for name, want := range tests {
		if got := globalEntry(t, checked, name).Type; got != want {
			t.Errorf("%s has type %s, want %s", name, got, want)
		}
	}
}
