package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tangzhangming/starbytes/internal/compiler"
	"github.com/tangzhangming/starbytes/internal/i18n"
	"github.com/tangzhangming/starbytes/internal/runtime"
)

// writeProject 在临时目录写入源文件
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRunExecutesTargetWithImports(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"util.sb":   "func twice(n:Int) Int { return n * 2 }",
		"app.sb":    "import util\nprint(twice(21))",
		"broken.sb": "decl x:Int = \"s\"",
	})
	var stdout strings.Builder
	if err := run(filepath.Join(dir, "app.sb"), &stdout, false); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "42\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestRunReportsFaults(t *testing.T) {
	i18n.SetLanguage(i18n.LangEnglish)
	dir := writeProject(t, map[string]string{"main.sb": "decl z = 0\nprint(1 / z)"})
	err := run(dir, &strings.Builder{}, false)
	var f *runtime.Fault
	if !errors.As(err, &f) || f.Key != i18n.ErrRuntimeDivZero {
		t.Fatalf("error = %v, want a division fault", err)
	}
}

func TestRunFailsWhenTargetDoesNotCompile(t *testing.T) {
	dir := writeProject(t, map[string]string{"main.sb": "print(missing)"})
	if err := run(dir, &strings.Builder{}, false); err == nil {
		t.Fatal("expected a compile error")
	}
}

func TestBuildWritesModules(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"lib.sb":  "decl answer = 42",
		"main.sb": "import lib\nprint(answer)",
		"starbytes.toml": `[build]
output = "bin"
`,
	})
	out, count, err := build(dir, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || out != filepath.Join(dir, "bin") {
		t.Errorf("build = %q, %d", out, count)
	}
	for _, name := range []string{"lib.sbc", "lib.sbi", "main.sbc", "main.sbi"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Error(err)
		}
	}

	code, err := os.ReadFile(filepath.Join(out, "main.sbc"))
	if err != nil {
		t.Fatal(err)
	}
	lib, err := os.ReadFile(filepath.Join(out, "lib.sbc"))
	if err != nil {
		t.Fatal(err)
	}
	var stdout strings.Builder
	in := runtime.New(runtime.Options{Stdout: &stdout})
	err = compiler.Execute(in, &compiler.Module{Name: "lib", Code: lib}, &compiler.Module{Name: "main", Code: code})
	if err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "42\n" {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestBuildWithoutSources(t *testing.T) {
	_, _, err := build(t.TempDir(), "", false)
	var nf *noFilesError
	if !errors.As(err, &nf) {
		t.Errorf("error = %v, want noFilesError", err)
	}
}

func TestCheck(t *testing.T) {
	dir := writeProject(t, map[string]string{"a.sb": "decl a = 1", "b.sb": "import a\nprint(a)"})
	count, format, err := check(dir, "")
	if err != nil || count != 2 || format != "text" {
		t.Errorf("check = %d, %q, %v", count, format, err)
	}
	if _, _, err := check(dir, "xml"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestSessionKeepsState(t *testing.T) {
	var stdout, diags strings.Builder
	s := newSession(&stdout, &diags)
	defer s.close()

	for _, src := range []string{
		"decl x = 2",
		"func triple(n:Int) Int { return n * 3 }",
		"print(triple(x))",
	} {
		if err := s.eval(src); err != nil {
			t.Fatalf("%s: %v\n%s", src, err, diags.String())
		}
	}
	if stdout.String() != "6\n" {
		t.Errorf("output = %q", stdout.String())
	}

	if err := s.eval("print(nope)"); err == nil || diags.Len() == 0 {
		t.Errorf("error = %v, diagnostics %q", err, diags.String())
	}
	if err := s.eval("print(x)"); err != nil {
		t.Fatalf("session unusable after an error: %v", err)
	}
}

func TestIncompleteInput(t *testing.T) {
	tests := map[string]bool{
		"print(1)":             false,
		"func f() {":           true,
		"print(1, 2":           true,
		"decl s = \"abc":       true,
		"if (true) { print(1)": true,
	}
	for src, want := range tests {
		if got := incomplete(src); got != want {
			t.Errorf("incomplete(%q) = %v, want %v", src, got, want)
		}
	}
}
