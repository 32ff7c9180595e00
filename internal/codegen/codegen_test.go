package codegen

import (
	"bytes"
	"testing"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/parser"
	"github.com/tangzhangming/starbytes/internal/sema"
	"github.com/tangzhangming/starbytes/internal/symbol"
)

func generate(t *testing.T, src string) (*Output, *sema.Checked) {
	t.Helper()
	c := diag.NewCollector()
	file, _ := parser.ParseSource(src, c)
	if c.HasErrors() {
		t.Fatalf("syntax errors: %v", c.Diagnostics())
	}
	checked, _ := sema.Analyze(file, sema.Options{Module: "main", Sink: c})
	if checked == nil {
		t.Fatalf("semantic errors: %v", c.Diagnostics())
	}
	out, err := Generate(checked)
	if err != nil {
		t.Fatal(err)
	}
	return out, checked
}

func intLiteral(w *bytecode.Writer, v int64) {
	w.Op(bytecode.OpCreateInternal)
	w.U8(bytecode.ObjNumber)
	w.U8(bytecode.NumInt)
	w.I64(v)
}

func boolLiteral(w *bytecode.Writer, v bool) {
	w.Op(bytecode.OpCreateInternal)
	w.U8(bytecode.ObjBool)
	w.Bool(v)
}

func TestEmptyModule(t *testing.T) {
	out, _ := generate(t, "")
	if !bytes.Equal(out.Code, []byte{byte(bytecode.OpModuleEnd)}) {
		t.Errorf("code = % X", out.Code)
	}
	if out.Module != "main" {
		t.Errorf("module = %q", out.Module)
	}
}

func TestVarDeclRecord(t *testing.T) {
	out, _ := generate(t, "decl x = 5\ndecl s:String")

	w := bytecode.NewWriter()
	w.Op(bytecode.OpDefineVar)
	w.ID("main::x")
	w.Bool(true)
	intLiteral(w, 5)
	w.Op(bytecode.OpDefineVar)
	w.ID("main::s")
	w.Bool(false)
	w.ID("String")
	w.Op(bytecode.OpModuleEnd)

	if !bytes.Equal(out.Code, w.Bytes()) {
		t.Errorf("code =\n% X\nwant\n% X", out.Code, w.Bytes())
	}
}

func TestRegionsMapStatementRecords(t *testing.T) {
	out, _ := generate(t, "decl x = 5\n\nprint(x)\nfunc f() {\n\tprint(1)\n}")

	lines := make(map[int]bytecode.Opcode)
	for at, r := range out.Regions {
		if at < len(out.Code) {
			lines[r.StartLine] = bytecode.Opcode(out.Code[at])
		}
	}
	want := map[int]bytecode.Opcode{
		1: bytecode.OpDefineVar,
		3: bytecode.OpInvoke,
		4: bytecode.OpDefineFunc,
		5: bytecode.OpInvoke,
	}
	for line, op := range want {
		if lines[line] != op {
			t.Errorf("line %d: record %s, want %s", line, lines[line], op)
		}
	}
	// 函数提前写出，位于流的开头
	if r := out.Regions[0]; r.StartLine != 4 || r.StartCol != 1 {
		t.Errorf("first record region = %v", r)
	}
}

func TestFunctionsAreHoisted(t *testing.T) {
	out, _ := generate(t, "decl x = f()\nfunc f() Int { return 1 }")
	r := bytecode.NewReader(out.Code)

	if err := r.Expect(bytecode.OpDefineFunc); err != nil {
		t.Fatal(err)
	}
	if name, _ := r.ID(); name != "main::f" {
		t.Fatalf("first definition is %q", name)
	}
	if n, _ := r.U32(); n != 0 {
		t.Fatalf("param count %d", n)
	}
	offset, _ := r.U32()
	if int(offset) != r.Pos() {
		t.Errorf("body offset %d, body starts at %d", offset, r.Pos())
	}
	if err := r.Expect(bytecode.OpBlockBegin); err != nil {
		t.Fatal(err)
	}
	size, _ := r.U32()
	if err := r.Skip(int(size)); err != nil {
		t.Fatal(err)
	}
	if err := r.Expect(bytecode.OpDefineVar); err != nil {
		t.Errorf("variable should follow the function: %v", err)
	}
}

func TestBlockLengthCoversBody(t *testing.T) {
	out, _ := generate(t, "func f() { print(1) }")
	r := bytecode.NewReader(out.Code)
	r.Expect(bytecode.OpDefineFunc)
	r.ID()
	r.U32()
	offset, _ := r.U32()
	body := r.At(int(offset))
	body.Expect(bytecode.OpBlockBegin)
	size, _ := body.U32()
	end := body.Pos() + int(size)
	if out.Code[end-1] != byte(bytecode.OpBlockEnd) {
		t.Errorf("block of %d bytes does not end with BLOCK_END", size)
	}
	if out.Code[end] != byte(bytecode.OpModuleEnd) {
		t.Errorf("module end expected after the function")
	}
}

func TestUnreachableStatementsAreDropped(t *testing.T) {
	out, _ := generate(t, "func f() Int {\n\treturn 1\n\tprint(2)\n}")
	r := bytecode.NewReader(out.Code)
	r.Expect(bytecode.OpDefineFunc)
	r.ID()
	r.U32()
	offset, _ := r.U32()

	w := bytecode.NewWriter()
	w.Op(bytecode.OpBlockBegin)
	at := w.Placeholder()
	w.Op(bytecode.OpReturn)
	w.Bool(true)
	intLiteral(w, 1)
	w.Op(bytecode.OpBlockEnd)
	w.PatchLength(at)

	body := out.Code[offset : len(out.Code)-1]
	if !bytes.Equal(body, w.Bytes()) {
		t.Errorf("body = % X\nwant   % X", body, w.Bytes())
	}
}

func TestNamespaceNamesAreQualified(t *testing.T) {
	out, _ := generate(t, "scope Geo { decl pi = 3 }\nprint(Geo.pi)")

	w := bytecode.NewWriter()
	w.Op(bytecode.OpDefineVar)
	w.ID("main::Geo::pi")
	w.Bool(true)
	intLiteral(w, 3)
	w.Op(bytecode.OpInvoke)
	w.ID("print")
	w.U32(1)
	w.Op(bytecode.OpVarRef)
	w.ID("main::Geo::pi")
	w.Op(bytecode.OpModuleEnd)

	if !bytes.Equal(out.Code, w.Bytes()) {
		t.Errorf("code =\n% X\nwant\n% X", out.Code, w.Bytes())
	}
}

func TestLogicalRightOperandIsSized(t *testing.T) {
	out, _ := generate(t, "decl a = true && false")

	w := bytecode.NewWriter()
	w.Op(bytecode.OpDefineVar)
	w.ID("main::a")
	w.Bool(true)
	w.Op(bytecode.OpBinary)
	w.U8(byte(bytecode.OpAnd))
	boolLiteral(w, true)
	w.U32(3)
	boolLiteral(w, false)
	w.Op(bytecode.OpModuleEnd)

	if !bytes.Equal(out.Code, w.Bytes()) {
		t.Errorf("code =\n% X\nwant\n% X", out.Code, w.Bytes())
	}
}

func TestSnippets(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want func(w *bytecode.Writer)
	}{
		{
			name: "compound assignment carries operator",
			src:  "decl n = 1\nn += 2",
			want: func(w *bytecode.Writer) {
				w.Op(bytecode.OpVarSet)
				w.ID("main::n")
				w.U8(byte(bytecode.OpAdd))
				intLiteral(w, 2)
			},
		},
		{
			name: "implicit field reads through self",
			src:  "class P { decl x = 1\n func get() Int { return x } }",
			want: func(w *bytecode.Writer) {
				w.Op(bytecode.OpReturn)
				w.Bool(true)
				w.Op(bytecode.OpMemberGet)
				w.Op(bytecode.OpVarRef)
				w.ID("self")
				w.ID("x")
			},
		},
		{
			name: "implicit method call goes through self",
			src:  "class P { func a() Int { return 1 }\n func b() Int { return a() } }",
			want: func(w *bytecode.Writer) {
				w.Op(bytecode.OpInvokeMethod)
				w.Op(bytecode.OpVarRef)
				w.ID("self")
				w.ID("a")
				w.U32(0)
			},
		},
		{
			name: "constructor call",
			src:  "class P { new(a:Int) {} }\ndecl p = new P(7)",
			want: func(w *bytecode.Writer) {
				w.Op(bytecode.OpCreateObject)
				w.ID("main::P")
				w.U32(1)
				intLiteral(w, 7)
			},
		},
		{
			name: "index assignment",
			src:  "decl a = [1]\na[0] = 2",
			want: func(w *bytecode.Writer) {
				w.Op(bytecode.OpIndexSet)
				w.Op(bytecode.OpVarRef)
				w.ID("main::a")
				intLiteral(w, 0)
				w.U8(byte(bytecode.OpAssign))
				intLiteral(w, 2)
			},
		},
		{
			name: "type check uses resolved name",
			src:  "scope Geo { class C {} }\ndecl c = Geo.C()\ndecl b = c is Geo.C",
			want: func(w *bytecode.Writer) {
				w.Op(bytecode.OpTypeCheck)
				w.Op(bytecode.OpVarRef)
				w.ID("main::c")
				w.ID("main::Geo::C")
			},
		},
		{
			name: "regex literal",
			src:  "decl r = /a+/i",
			want: func(w *bytecode.Writer) {
				w.Op(bytecode.OpRegexLiteral)
				w.ID("a+")
				w.ID("i")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := generate(t, tt.src)
			w := bytecode.NewWriter()
			tt.want(w)
			if !bytes.Contains(out.Code, w.Bytes()) {
				t.Errorf("code\n% X\ndoes not contain\n% X", out.Code, w.Bytes())
			}
		})
	}
}

func TestConditionalLength(t *testing.T) {
	out, _ := generate(t, "decl b = true\nif (b) { print(1) } else { print(2) }\nprint(3)")
	r := bytecode.NewReader(out.Code)
	for {
		op, err := r.Peek()
		if err != nil {
			t.Fatal(err)
		}
		if op == bytecode.OpConditional {
			break
		}
		r.Skip(1)
	}
	r.Op()
	size, _ := r.U32()
	end := r.Pos() + int(size)
	if out.Code[end-1] != byte(bytecode.OpConditionalEnd) {
		t.Errorf("conditional of %d bytes does not end with CONDITIONAL_END", size)
	}
	if n, _ := r.U32(); n != 2 {
		t.Errorf("branch count %d, want 2", n)
	}
}

func TestInterfaceMatchesTable(t *testing.T) {
	out, checked := generate(t, "func area(r:Float) Float { return r * r }")
	if !bytes.Equal(out.Interface, symbol.Serialize(checked.Table)) {
		t.Error("interface bytes differ from the serialized table")
	}
}
