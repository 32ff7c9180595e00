package bytecode

import (
	"errors"
	"testing"
)

func TestWriterEncodesLittleEndian(t *testing.T) {
	w := NewWriter()
	w.Op(OpVarRef)
	w.ID("ab")
	w.U32(0x01020304)

	want := []byte{0x0A, 2, 0, 0, 0, 'a', 'b', 4, 3, 2, 1}
	got := w.Bytes()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (% x)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x (% x)", i, got[i], want[i], got)
		}
	}
}

func TestPatchLength(t *testing.T) {
	w := NewWriter()
	w.Op(OpBlockBegin)
	at := w.Placeholder()
	w.Op(OpVarRef)
	w.ID("x")
	w.Op(OpBlockEnd)
	w.PatchLength(at)

	r := NewReader(w.Bytes())
	if err := r.Expect(OpBlockBegin); err != nil {
		t.Fatal(err)
	}
	n, err := r.U32()
	if err != nil {
		t.Fatal(err)
	}
	if int(n) != 1+4+1+1 {
		t.Errorf("block length = %d, want 7", n)
	}
	if err := r.Skip(int(n) - 1); err != nil {
		t.Fatal(err)
	}
	if err := r.Expect(OpBlockEnd); err != nil {
		t.Fatal(err)
	}
	if !r.Done() {
		t.Error("reader should be at the end of the stream")
	}
}

func TestReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.U8(7)
	w.Bool(true)
	w.I64(-42)
	w.F64(2.5)
	w.ID("print")

	r := NewReader(w.Bytes())
	if v, _ := r.U8(); v != 7 {
		t.Errorf("U8 = %d", v)
	}
	if v, _ := r.Bool(); !v {
		t.Error("Bool = false")
	}
	if v, _ := r.I64(); v != -42 {
		t.Errorf("I64 = %d", v)
	}
	if v, _ := r.F64(); v != 2.5 {
		t.Errorf("F64 = %v", v)
	}
	if v, _ := r.ID(); v != "print" {
		t.Errorf("ID = %q", v)
	}
}

func TestIndependentCursors(t *testing.T) {
	w := NewWriter()
	w.ID("first")
	second := w.Len()
	w.ID("second")

	outer := NewReader(w.Bytes())
	inner := outer.At(second)
	if v, _ := inner.ID(); v != "second" {
		t.Errorf("inner cursor read %q", v)
	}
	if v, _ := outer.ID(); v != "first" {
		t.Errorf("outer cursor moved: read %q", v)
	}
}

func TestMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(r *Reader) error
	}{
		{"truncated u32", []byte{1, 2}, func(r *Reader) error { _, err := r.U32(); return err }},
		{"truncated id", []byte{9, 0, 0, 0, 'a'}, func(r *Reader) error { _, err := r.ID(); return err }},
		{"unknown opcode", []byte{0x0E}, func(r *Reader) error { _, err := r.Op(); return err }},
		{"empty stream", nil, func(r *Reader) error { _, err := r.Op(); return err }},
		{"huge count", []byte{0xFF, 0xFF, 0, 0}, func(r *Reader) error { _, err := r.Count(); return err }},
		{"seek past end", []byte{0}, func(r *Reader) error { return r.Seek(5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewReader(tt.data))
			var malformed *MalformedError
			if !errors.As(err, &malformed) {
				t.Fatalf("err = %v, want *MalformedError", err)
			}
		})
	}
}

func TestOpcodeClassification(t *testing.T) {
	if !OpDefineFunc.IsStatement() || OpInvoke.IsStatement() {
		t.Error("statement classification is wrong")
	}
	if Opcode(0x0E).Valid() || !OpSecure.Valid() {
		t.Error("0x0E is unassigned and 0x19 is secure")
	}
	if OpBinary.String() != "BINARY" || Opcode(0x42).String() != "OP(0x42)" {
		t.Errorf("names: %s %s", OpBinary, Opcode(0x42))
	}
}
