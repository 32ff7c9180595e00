package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/runtime"
)

func TestCompileAndExecuteHello(t *testing.T) {
	mod, err := Compile("main", "main.sb", `print("hi")`, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if last := mod.Code[len(mod.Code)-1]; last != byte(bytecode.OpModuleEnd) {
		t.Errorf("stream ends with 0x%02X", last)
	}

	var stdout strings.Builder
	if err := Execute(runtime.New(runtime.Options{Stdout: &stdout}), mod); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "hi\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestCompileFailures(t *testing.T) {
	tests := map[string]string{
		"lexical":  "decl x = 1 $",
		"syntax":   "decl = 1",
		"semantic": "print(missing)",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewContext("main", Options{})
			c.ParseSource("main.sb", src)
			_, err := c.Finish()
			if !IsFailed(err) {
				t.Fatalf("error = %v, want a compile failure", err)
			}
			diags := c.Diagnostics()
			if len(diags) == 0 {
				t.Fatal("no diagnostics reported")
			}
			if diags[0].File != "main.sb" {
				t.Errorf("diagnostic file = %q", diags[0].File)
			}
		})
	}
}

func TestFinishWithoutSource(t *testing.T) {
	if _, err := NewContext("main", Options{}).Finish(); err == nil || IsFailed(err) {
		t.Errorf("error = %v, want an internal error", err)
	}
}

func TestOrderPutsImportsFirst(t *testing.T) {
	sources := []Source{
		{Module: "app", Text: "import util\nimport os"},
		{Module: "util", Text: "import base"},
		{Module: "base", Text: ""},
	}
	ordered, err := Order(sources)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, s := range ordered {
		names = append(names, s.Module)
	}
	if got := strings.Join(names, ","); got != "base,util,app" {
		t.Errorf("order = %s", got)
	}
}

func TestOrderDetectsCycle(t *testing.T) {
	_, err := Order([]Source{
		{Module: "a", Text: "import b"},
		{Module: "b", Text: "import a"},
	})
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("error = %v, want an import cycle", err)
	}
}

func TestBuildAndRunModules(t *testing.T) {
	mods, err := Build([]Source{
		{Module: "app", Path: "app.sb", Text: "import util\nprint(greet(\"bob\"))"},
		{Module: "util", Path: "util.sb", Text: "func greet(name:String) String { return \"hi \" + name }"},
		{Module: "other", Path: "other.sb", Text: "print(\"unrelated\")"},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	run := Needed(mods, "app")
	if len(run) != 2 || run[0].Name != "util" || run[1].Name != "app" {
		t.Fatalf("modules to run: %v", run)
	}
	var stdout strings.Builder
	if err := Execute(runtime.New(runtime.Options{Stdout: &stdout}), run...); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "hi bob\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestBuildSkipsDependentsOfFailedModule(t *testing.T) {
	mods, err := Build([]Source{
		{Module: "broken", Text: "decl x:Int = \"s\""},
		{Module: "user", Text: "import broken\nprint(1)"},
		{Module: "fine", Text: "print(2)"},
	}, Options{})
	if !IsFailed(err) {
		t.Fatalf("error = %v, want a compile failure", err)
	}
	if len(mods) != 1 || mods[0].Name != "fine" {
		t.Errorf("compiled modules: %v", mods)
	}
}

func TestModuleName(t *testing.T) {
	if got := ModuleName("src/geo.sb"); got != "geo" {
		t.Errorf("ModuleName = %q", got)
	}
}

func TestCheckSkipsCodeGeneration(t *testing.T) {
	mods, err := Build([]Source{
		{Module: "lib", Text: "func one() Int { return 1 }"},
		{Module: "app", Text: "import lib\nprint(one())"},
	}, Options{Check: true})
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range mods {
		if m.Code != nil || len(m.Interface) == 0 {
			t.Errorf("%s: code %d bytes, interface %d bytes", m.Name, len(m.Code), len(m.Interface))
		}
	}
}

func TestGreetPrintsOnce(t *testing.T) {
	src := `decl msg:String = "hi"
func greet(m:String) {
	print(m)
}
greet(msg)`
	mod, err := Compile("main", "main.sb", src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if mod.Code[len(mod.Code)-1] != byte(bytecode.OpModuleEnd) {
		t.Error("stream does not end with module-end")
	}
	var stdout strings.Builder
	if err := Execute(runtime.New(runtime.Options{Stdout: &stdout}), mod); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "hi\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestModuleGlobalsDoNotCollide(t *testing.T) {
	mods, err := Build([]Source{
		{Module: "lib", Path: "lib.sb", Text: "decl x:String = \"lib\"\nfunc getX() String { return x }"},
		{Module: "app", Path: "app.sb", Text: "import lib\ndecl x:Int = 42\nprint(getX())"},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var stdout strings.Builder
	if err := Execute(runtime.New(runtime.Options{Stdout: &stdout}), Needed(mods, "app")...); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "lib\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestSameClassNameInTwoModules(t *testing.T) {
	mods, err := Build([]Source{
		{Module: "a", Text: "class Box { decl v = \"a\" }\nfunc makeA() Box { return Box() }"},
		{Module: "b", Text: "import a\nclass Box { decl v = 2 }\nprint(makeA())"},
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var stdout strings.Builder
	if err := Execute(runtime.New(runtime.Options{Stdout: &stdout}), Needed(mods, "b")...); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "Box{v: \"a\"}\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestExecuteReportsFaultLocation(t *testing.T) {
	i18n.SetLanguage(i18n.LangEnglish)
	mod, err := Compile("main", "main.sb", "func f() {\n\tprint(y)\n}\nf()\ndecl y = 1", Options{})
	if err != nil {
		t.Fatal(err)
	}
	err = Execute(runtime.New(runtime.Options{Stdout: &strings.Builder{}}), mod)
	var f *runtime.Fault
	if !errors.As(err, &f) || f.Key != i18n.ErrRuntimeUndefined {
		t.Fatalf("error = %v, want an undefined symbol fault", err)
	}
	if !strings.HasPrefix(err.Error(), "main.sb:2:2: ") {
		t.Errorf("error = %q", err.Error())
	}
	if !strings.Contains(err.Error(), "y") || strings.Contains(err.Error(), "main::y") {
		t.Errorf("message names %q", err.Error())
	}
}
