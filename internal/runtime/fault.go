package runtime

import (
	"errors"
	"fmt"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/diag"
	"github.com/tangzhangming/starbytes/internal/i18n"
)

// Fault 运行时错误。Symbol 是相关的符号名，没有时为空。
// Region 是出错语句的源码区间，字节码没有附带定位信息时为 nil。
type Fault struct {
	Key    string
	Args   []any
	Symbol string
	File   string
	Region *diag.Region
}

func (f *Fault) Error() string {
	return i18n.T(f.Key, f.Args...)
}

// Where 出错位置，形如 main.sb:3:5；没有位置时为空
func (f *Fault) Where() string {
	if f.Region == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", f.File, f.Region.StartLine, f.Region.StartCol)
}

// Code 稳定的错误码，如 SB5001
func (f *Fault) Code() string {
	return diag.CodeOf(f.Key)
}

func fault(key string, args ...any) *Fault {
	return &Fault{Key: key, Args: args}
}

func undefined(name string) *Fault {
	return &Fault{Key: i18n.ErrRuntimeUndefined, Args: []any{display(name)}, Symbol: name}
}

func typeFault(op string, v *Value) *Fault {
	return fault(i18n.ErrRuntimeType, op, display(v.TypeName()))
}

// asFault 把字节码读取错误转成 Fault，其他错误原样返回
func asFault(err error) error {
	var m *bytecode.MalformedError
	if errors.As(err, &m) {
		return fault(i18n.ErrRuntimeMalformed, m.Offset, m.Detail)
	}
	return err
}

// recoverable secure 能捕获的错误：格式错误的字节码不能
func recoverable(err error) (*Fault, bool) {
	var f *Fault
	if !errors.As(err, &f) {
		return nil, false
	}
	return f, f.Key != i18n.ErrRuntimeMalformed
}
