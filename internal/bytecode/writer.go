package bytecode

import (
	"encoding/binary"
	"math"
)

// Writer 字节码输出缓冲，整数一律小端序
type Writer struct {
	buf []byte
}

// NewWriter 创建空的输出缓冲
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 256)}
}

// Op 写入指令码
func (w *Writer) Op(op Opcode) {
	w.buf = append(w.buf, byte(op))
}

// U8 写入一个字节
func (w *Writer) U8(v byte) {
	w.buf = append(w.buf, v)
}

// Bool 以一个字节写入布尔值
func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// U32 写入 4 字节无符号整数
func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// I64 写入 8 字节有符号整数
func (w *Writer) I64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
}

// F64 写入 8 字节浮点数
func (w *Writer) F64(v float64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, math.Float64bits(v))
}

// ID 写入标识符：u32 长度加原始字节
func (w *Writer) ID(s string) {
	w.U32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// Len 当前已写入的字节数，也是下一个字节的偏移
func (w *Writer) Len() int {
	return len(w.buf)
}

// Placeholder 预留一个 u32 位置，返回其偏移，稍后用 Patch 回填
func (w *Writer) Placeholder() int {
	at := len(w.buf)
	w.U32(0)
	return at
}

// Patch 回填 at 处预留的 u32
func (w *Writer) Patch(at int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[at:at+4], v)
}

// PatchLength 以占位符之后到当前位置的字节数回填
func (w *Writer) PatchLength(at int) {
	w.Patch(at, uint32(len(w.buf)-(at+4)))
}

// Bytes 返回已写入的字节，调用方不应修改
func (w *Writer) Bytes() []byte {
	return w.buf
}
