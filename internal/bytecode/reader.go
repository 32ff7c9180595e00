package bytecode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MalformedError 字节流截断或内容非法
type MalformedError struct {
	Offset int
	Detail string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed bytecode at offset %d: %s", e.Offset, e.Detail)
}

// Reader 字节流上的读游标。多个 Reader 可以共享同一段字节，
// 每次函数调用都应持有自己的游标。
type Reader struct {
	data []byte
	pos  int
}

// NewReader 创建从偏移 0 开始的游标
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// At 在同一段字节上创建一个新的游标
func (r *Reader) At(pos int) *Reader {
	return &Reader{data: r.data, pos: pos}
}

// Pos 当前偏移
func (r *Reader) Pos() int { return r.pos }

// Len 字节流总长度
func (r *Reader) Len() int { return len(r.data) }

// Done 是否已读到末尾
func (r *Reader) Done() bool { return r.pos >= len(r.data) }

// Seek 移动到指定偏移
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return r.malformed("seek to %d outside stream of %d bytes", pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// Skip 跳过 n 个字节
func (r *Reader) Skip(n int) error {
	return r.Seek(r.pos + n)
}

func (r *Reader) malformed(format string, args ...any) error {
	return &MalformedError{Offset: r.pos, Detail: fmt.Sprintf(format, args...)}
}

func (r *Reader) need(n int, what string) error {
	if r.pos+n > len(r.data) {
		return r.malformed("truncated %s", what)
	}
	return nil
}

// Peek 查看下一个指令码但不前进
func (r *Reader) Peek() (Opcode, error) {
	if err := r.need(1, "opcode"); err != nil {
		return 0, err
	}
	return Opcode(r.data[r.pos]), nil
}

// Op 读取指令码并校验其合法性
func (r *Reader) Op() (Opcode, error) {
	op, err := r.Peek()
	if err != nil {
		return 0, err
	}
	if !op.Valid() {
		return 0, r.malformed("unknown opcode 0x%02X", byte(op))
	}
	r.pos++
	return op, nil
}

// Expect 读取指令码，不是期望值时返回错误
func (r *Reader) Expect(want Opcode) error {
	at := r.pos
	op, err := r.Op()
	if err != nil {
		return err
	}
	if op != want {
		return &MalformedError{Offset: at, Detail: fmt.Sprintf("expected %s, found %s", want, op)}
	}
	return nil
}

// U8 读取一个字节
func (r *Reader) U8() (byte, error) {
	if err := r.need(1, "byte"); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// Bool 读取一个字节形式的布尔值
func (r *Reader) Bool() (bool, error) {
	v, err := r.U8()
	return v != 0, err
}

// U32 读取 4 字节无符号整数
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4, "u32"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// Count 读取一个 u32 计数，并用剩余字节数做上限校验
func (r *Reader) Count() (int, error) {
	n, err := r.U32()
	if err != nil {
		return 0, err
	}
	if int(n) > len(r.data)-r.pos {
		return 0, r.malformed("count %d exceeds remaining %d bytes", n, len(r.data)-r.pos)
	}
	return int(n), nil
}

// I64 读取 8 字节有符号整数
func (r *Reader) I64() (int64, error) {
	if err := r.need(8, "i64"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return int64(v), nil
}

// F64 读取 8 字节浮点数
func (r *Reader) F64() (float64, error) {
	if err := r.need(8, "f64"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return math.Float64frombits(v), nil
}

// ID 读取标识符
func (r *Reader) ID() (string, error) {
	n, err := r.U32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n), "identifier"); err != nil {
		return "", err
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}
