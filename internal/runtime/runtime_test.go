package runtime

import (
	"errors"
	"strings"
	"testing"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/codegen"
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/sema"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

func compile(t *testing.T, module, src string, resolve sema.Resolver) *codegen.Output {
	t.Helper()
	c := diag.NewCollector()
	file, _ := parser.ParseSource(src, c)
	if c.HasErrors() {
		t.Fatalf("syntax errors: %v", c.Diagnostics())
	}
	checked, _ := sema.Analyze(file, sema.Options{Module: module, Sink: c, Resolve: resolve})
	if checked == nil {
		t.Fatalf("semantic errors: %v", c.Diagnostics())
	}
	out, err := codegen.Generate(checked)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// run 编译并执行 src，返回标准输出
func run(t *testing.T, src string) (string, *Interp, error) {
	t.Helper()
	i18n.SetLanguage(i18n.LangEnglish)
	out := compile(t, "main", src, nil)
	var stdout strings.Builder
	in := New(Options{Stdout: &stdout})
	err := in.Exec(out.Code)
	return stdout.String(), in, err
}

func TestPrintHello(t *testing.T) {
	got, _, err := run(t, `print("hi")`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hi\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic", `print(1 + 2 * 3)
print(7 / 2)
print(7.0 / 2)
print(7 % 3)
print("a" + "b")
print(2.0)`, "7\n3\n3.5\n1\nab\n2.0\n"},

		{"recursion", `func fact(n:Int) Int {
	if (n < 2) { return 1 }
	return n * fact(n - 1)
}
print(fact(10))`, "3628800\n"},

		{"while loop", `decl i = 0
decl total = 0
while (i < 5) {
	total += i
	i += 1
}
print(total)`, "10\n"},

		{"elif chain", `func grade(n:Int) String {
	if (n > 90) { return "A" } elif (n > 50) { return "B" } else { return "C" }
}
print(grade(95))
print(grade(60))
print(grade(10))`, "A\nB\nC\n"},

		{"forward reference", `print(twice(2))
func twice(n:Int) Int { return n * 2 }`, "4\n"},

		{"classes", `class Point {
	decl x:Int
	decl y:Int = 0
	new(x:Int, y:Int) {
		self.x = x
		self.y = y
	}
	func sum() Int { return x + y }
	func move(dx:Int) { self.x += dx }
}
decl p = new Point(1, 2)
p.move(5)
print(p.x)
print(p.sum())
print(p)`, "6\n8\nPoint{x: 6, y: 2}\n"},

		{"implicit field and method access", `class Counter {
	decl count = 0
	func inc() { count += 1 }
	func twice() { inc()
		inc() }
}
decl c = Counter()
c.twice()
c.inc()
print(c.count)`, "3\n"},

		{"values are copied on assignment", `decl a = [1, 2]
decl b = a
b.push(3)
print(a.length)
print(b)`, "2\n[1, 2, 3]\n"},

		{"namespaces", `scope Geo {
	decl base = 3
	func twice(n:Int) Int { return n * 2 }
}
print(Geo.twice(Geo.base))
Geo.base = 10
print(Geo.base)`, "6\n10\n"},

		{"dictionaries", `decl d = {"a": 1}
d["b"] = 2
d["a"] += 10
print(d)
print(d.length)`, "{\"a\": 11, \"b\": 2}\n2\n"},

		{"nested element mutation", `decl grid = [[1, 2], [3, 4]]
grid[1][0] = 9
print(grid)`, "[[1, 2], [9, 4]]\n"},

		{"secure catches faults", `decl a = [1]
secure (decl v = a[3]) catch (e:String) { print(e) }
print("after")`, "index 3 out of range (length 1)\nafter\n"},

		{"secure without fault skips catch", `secure (decl v = 1 + 1) catch (e:String) { print(e) }
print(v)`, "2\n"},

		{"short circuit", `decl a = [1]
print(a.length > 5 && a[9] == 1)
print(a.length == 1 || a[9] == 1)`, "false\ntrue\n"},

		{"type checks", `decl x = 5
print(x is Int)
print(x is String)`, "true\nfalse\n"},

		{"default values", `decl n:Int
decl s:String
decl f:Float
print(n)
print(s.length)
print(f)`, "0\n0\n0.0\n"},

		{"string indexing", `print("héllo"[1])`, "é\n"},

		{"regex literal", `print(/ab+/i)`, "/ab+/i\n"},

		{"for loop", `decl n = 3
for (n > 0) {
	print(n)
	n -= 1
}`, "3\n2\n1\n"},

		{"function values", `func inc(n:Int) Int { return n + 1 }
decl f = inc
print(f(1))`, "2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := run(t, tt.src)
			if err != nil {
				t.Fatalf("runtime error: %v", err)
			}
			if got != tt.want {
				t.Errorf("output =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestLiveValuesReturnToZero(t *testing.T) {
	_, in, err := run(t, `class Node {
	decl items:Int[] = []
	decl tags = {"k": "v"}
	func add(n:Int) { items.push(n) }
}
func build(n:Int) Node {
	decl node = Node()
	decl i = 0
	while (i < n) {
		node.add(i)
		i += 1
	}
	return node
}
decl nodes = [build(3), build(2)]
nodes[0].add(7)
decl a = [1]
secure (decl v = a[5]) catch (e:String) { print(e) }
print(nodes[0].items.length)`)
	if err != nil {
		t.Fatal(err)
	}
	if in.Heap().Live() == 0 {
		t.Fatal("globals should still be alive before Close")
	}
	in.Close()
	if live := in.Heap().Live(); live != 0 {
		t.Errorf("%d values still alive after Close", live)
	}
}

func TestRuntimeFaults(t *testing.T) {
	tests := []struct {
		name string
		src  string
		key  string
	}{
		{"index", "decl a = [1]\nprint(a[2])", i18n.ErrRuntimeIndex},
		{"division by zero", "decl z = 0\nprint(1 / z)", i18n.ErrRuntimeDivZero},
		{"missing key", "decl d = {\"a\": 1}\nprint(d[\"b\"])", i18n.ErrRuntimeMissingKey},
		{"invalid regex", "decl r = /a(/", i18n.ErrRuntimeRegex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.src)
			var f *Fault
			if !errors.As(err, &f) {
				t.Fatalf("error = %v, want a fault", err)
			}
			if f.Key != tt.key {
				t.Errorf("fault %s, want %s", f.Key, tt.key)
			}
		})
	}
}

func TestUndefinedSymbolFault(t *testing.T) {
	w := bytecode.NewWriter()
	w.Op(bytecode.OpInvoke)
	w.ID("missing")
	w.U32(0)
	w.Op(bytecode.OpModuleEnd)

	err := New(Options{Stdout: &strings.Builder{}}).Exec(w.Bytes())
	var f *Fault
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want a fault", err)
	}
	if f.Symbol != "missing" || f.Code() != "SB5001" {
		t.Errorf("fault = %+v (%s)", f, f.Code())
	}
}

func TestFaultCarriesStatementRegion(t *testing.T) {
	i18n.SetLanguage(i18n.LangEnglish)
	out := compile(t, "main", "decl a = [1, 2]\nfunc at(i:Int) Int {\n\treturn a[i]\n}\nprint(at(0))\nprint(at(9))", nil)
	err := New(Options{Stdout: &strings.Builder{}}).ExecUnit(&Unit{Code: out.Code, File: "main.sb", Regions: out.Regions})
	var f *Fault
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want a fault", err)
	}
	// 最内层的语句是函数体里的 return
	if f.Region == nil || f.Region.StartLine != 3 {
		t.Fatalf("fault region = %v", f.Region)
	}
	if got := f.Where(); got != "main.sb:3:2" {
		t.Errorf("Where = %q", got)
	}
}

func TestFaultWithoutRegions(t *testing.T) {
	_, _, err := run(t, "decl z = 0\nprint(1 / z)")
	var f *Fault
	if !errors.As(err, &f) {
		t.Fatalf("error = %v, want a fault", err)
	}
	if f.Region != nil || f.Where() != "" {
		t.Errorf("fault located at %q without region table", f.Where())
	}
}

func TestDisplayNamesDropModule(t *testing.T) {
	got, _, err := run(t, `class P { decl x:Int = 1 }
func f() {}
print(P())
print(f)`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "P{x: 1}\n<func f>\n" {
		t.Errorf("output = %q", got)
	}
}

func TestArityFault(t *testing.T) {
	w := bytecode.NewWriter()
	w.Op(bytecode.OpDefineFunc)
	w.ID("f")
	w.U32(1)
	w.ID("a")
	at := w.Placeholder()
	w.Patch(at, uint32(w.Len()))
	w.Op(bytecode.OpBlockBegin)
	size := w.Placeholder()
	w.Op(bytecode.OpBlockEnd)
	w.PatchLength(size)
	w.Op(bytecode.OpInvoke)
	w.ID("f")
	w.U32(0)
	w.Op(bytecode.OpModuleEnd)

	err := New(Options{}).Exec(w.Bytes())
	var f *Fault
	if !errors.As(err, &f) || f.Key != i18n.ErrRuntimeArity {
		t.Fatalf("error = %v, want an arity fault", err)
	}
}

func TestMalformedBytecode(t *testing.T) {
	tests := map[string][]byte{
		"unknown opcode": {0xEE},
		"truncated id":   {byte(bytecode.OpDefineVar), 9, 0, 0, 0, 'x'},
		"missing end":    {},
		"bad sub-tag":    {byte(bytecode.OpCreateInternal), 3, byte(bytecode.OpModuleEnd)},
	}
	for name, code := range tests {
		t.Run(name, func(t *testing.T) {
			err := New(Options{}).Exec(code)
			var f *Fault
			if !errors.As(err, &f) || f.Key != i18n.ErrRuntimeMalformed {
				t.Errorf("error = %v, want a malformed bytecode fault", err)
			}
		})
	}
}

func TestRecursionUsesOwnCursor(t *testing.T) {
	got, _, err := run(t, `func fib(n:Int) Int {
	if (n < 2) { return n }
	return fib(n - 1) + fib(n - 2)
}
print(fib(15))`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "610\n" {
		t.Errorf("fib(15) printed %q", got)
	}
}

func TestImportedModuleRunsFirst(t *testing.T) {
	i18n.SetLanguage(i18n.LangEnglish)
	lib := compile(t, "lib", "decl base = 40\nfunc add(n:Int) Int { return base + n }", nil)
	tbl, err := symbol.Import("lib", lib.Interface)
	if err != nil {
		t.Fatal(err)
	}
	resolve := func(name string) (*symbol.Table, bool) { return tbl, name == "lib" }
	main := compile(t, "main", "import lib\nprint(add(2))", resolve)

	var stdout strings.Builder
	in := New(Options{Stdout: &stdout})
	for _, code := range [][]byte{lib.Code, main.Code} {
		if err := in.Exec(code); err != nil {
			t.Fatal(err)
		}
	}
	if stdout.String() != "42\n" {
		t.Errorf("output = %q", stdout.String())
	}
	if v, ok := in.Lookup("lib::base"); !ok || v.Int != 40 {
		t.Errorf("base = %v, %v", v, ok)
	}
}
