package runtime

import (
	"cmp"
	"math"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/i18n"
)

func numeric(v *Value) bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func toFloat(v *Value) float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// binary 计算二元运算，不取得操作数的所有权。
// Int 与 Float 混合运算得到 Float。
func (in *Interp) binary(op bytecode.Operator, l, r *Value) (*Value, error) {
	h := in.heap
	switch op {
	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod:
		if op == bytecode.OpAdd && l.Kind == KindString && r.Kind == KindString {
			return h.str(l.Str + r.Str), nil
		}
		if !numeric(l) {
			return nil, typeFault(op.String(), l)
		}
		if !numeric(r) {
			return nil, typeFault(op.String(), r)
		}
		if l.Kind == KindInt && r.Kind == KindInt {
			return in.intArith(op, l.Int, r.Int)
		}
		return in.floatArith(op, toFloat(l), toFloat(r)), nil

	case bytecode.OpEq:
		return h.boolean(equal(l, r)), nil
	case bytecode.OpNotEq:
		return h.boolean(!equal(l, r)), nil

	case bytecode.OpLess, bytecode.OpLessEq, bytecode.OpGreater, bytecode.OpGreaterEq:
		var c int
		switch {
		case numeric(l) && numeric(r):
			c = cmp.Compare(toFloat(l), toFloat(r))
			if l.Kind == KindInt && r.Kind == KindInt {
				c = cmp.Compare(l.Int, r.Int)
			}
		case l.Kind == KindString && r.Kind == KindString:
			c = cmp.Compare(l.Str, r.Str)
		case numeric(l) || l.Kind == KindString:
			return nil, typeFault(op.String(), r)
		default:
			return nil, typeFault(op.String(), l)
		}
		switch op {
		case bytecode.OpLess:
			return h.boolean(c < 0), nil
		case bytecode.OpLessEq:
			return h.boolean(c <= 0), nil
		case bytecode.OpGreater:
			return h.boolean(c > 0), nil
		}
		return h.boolean(c >= 0), nil

	case bytecode.OpBitAnd, bytecode.OpBitOr:
		switch {
		case l.Kind == KindInt && r.Kind == KindInt:
			if op == bytecode.OpBitAnd {
				return h.integer(l.Int & r.Int), nil
			}
			return h.integer(l.Int | r.Int), nil
		case l.Kind == KindBool && r.Kind == KindBool:
			if op == bytecode.OpBitAnd {
				return h.boolean(l.Bool && r.Bool), nil
			}
			return h.boolean(l.Bool || r.Bool), nil
		case l.Kind == KindInt || l.Kind == KindBool:
			return nil, typeFault(op.String(), r)
		}
	}
	return nil, typeFault(op.String(), l)
}

func (in *Interp) intArith(op bytecode.Operator, a, b int64) (*Value, error) {
	switch op {
	case bytecode.OpAdd:
		return in.heap.integer(a + b), nil
	case bytecode.OpSub:
		return in.heap.integer(a - b), nil
	case bytecode.OpMul:
		return in.heap.integer(a * b), nil
	}
	if b == 0 {
		return nil, fault(i18n.ErrRuntimeDivZero)
	}
	if op == bytecode.OpDiv {
		return in.heap.integer(a / b), nil
	}
	return in.heap.integer(a % b), nil
}

func (in *Interp) floatArith(op bytecode.Operator, a, b float64) *Value {
	switch op {
	case bytecode.OpAdd:
		return in.heap.float(a + b)
	case bytecode.OpSub:
		return in.heap.float(a - b)
	case bytecode.OpMul:
		return in.heap.float(a * b)
	case bytecode.OpDiv:
		return in.heap.float(a / b)
	}
	return in.heap.float(math.Mod(a, b))
}

// equal 结构相等；Int 和 Float 按数值比较
func equal(l, r *Value) bool {
	if numeric(l) && numeric(r) {
		if l.Kind == KindInt && r.Kind == KindInt {
			return l.Int == r.Int
		}
		return toFloat(l) == toFloat(r)
	}
	if l.Kind != r.Kind {
		return false
	}
	switch l.Kind {
	case KindNone:
		return true
	case KindString:
		return l.Str == r.Str
	case KindBool:
		return l.Bool == r.Bool
	case KindRegex:
		return l.Str == r.Str && l.Flags == r.Flags
	case KindFunc:
		return l.Func == r.Func
	case KindArray:
		if len(l.Elems) != len(r.Elems) {
			return false
		}
		for i := range l.Elems {
			if !equal(l.Elems[i], r.Elems[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if l.Dict.Len() != r.Dict.Len() {
			return false
		}
		for _, k := range l.Dict.keys {
			rv, ok := r.Dict.Get(k)
			if !ok || !equal(l.Dict.entries[k].value, rv) {
				return false
			}
		}
		return true
	case KindObject:
		if l.Object.Class != r.Object.Class {
			return false
		}
		for name, f := range l.Object.Fields {
			if !equal(f, r.Object.Fields[name]) {
				return false
			}
		}
		return true
	}
	return false
}
