package runtime

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tangzhangming/starbytes/internal/bytecode"
	"github.com/tangzhangming/starbytes/internal/i18n"
)

const printName = "print"

// eval 求值一个表达式记录，结果归调用方所有
func (in *Interp) eval(r *bytecode.Reader, f *frame) (*Value, error) {
	at := r.Pos()
	op, err := r.Op()
	if err != nil {
		return nil, err
	}
	switch op {
	case bytecode.OpCreateInternal:
		return in.internal(r, f)
	case bytecode.OpDictLiteral:
		return in.dict(r, f)
	case bytecode.OpRegexLiteral:
		return in.regex(r)
	case bytecode.OpVarRef:
		name, err := r.ID()
		if err != nil {
			return nil, err
		}
		v, ok := in.lookup(f, name)
		if !ok {
			return nil, undefined(name)
		}
		return in.heap.clone(v), nil
	case bytecode.OpMemberGet, bytecode.OpIndexGet:
		if err := r.Seek(at); err != nil {
			return nil, err
		}
		p, err := in.place(r, f)
		if err != nil {
			return nil, err
		}
		if p.temp == p.slot {
			return p.slot, nil
		}
		v := in.heap.clone(p.slot)
		in.release(p)
		return v, nil
	case bytecode.OpInvoke:
		return in.invoke(r, f)
	case bytecode.OpInvokeMethod:
		return in.invokeMethod(r, f)
	case bytecode.OpCreateObject:
		return in.createObject(r, f)
	case bytecode.OpUnary:
		return in.unary(r, f)
	case bytecode.OpBinary:
		return in.binaryExpr(r, f)
	case bytecode.OpVarSet:
		return in.varSet(r, f)
	case bytecode.OpMemberSet:
		return in.memberSet(r, f)
	case bytecode.OpIndexSet:
		return in.indexSet(r, f)
	case bytecode.OpTypeCheck:
		v, err := in.eval(r, f)
		if err != nil {
			return nil, err
		}
		defer in.heap.drop(v)
		name, err := r.ID()
		if err != nil {
			return nil, err
		}
		return in.heap.boolean(name == "Any" || v.TypeName() == name), nil
	}
	return nil, &bytecode.MalformedError{Offset: at, Detail: fmt.Sprintf("%s is not an expression", op)}
}

func (in *Interp) internal(r *bytecode.Reader, f *frame) (*Value, error) {
	at := r.Pos()
	sub, err := r.U8()
	if err != nil {
		return nil, err
	}
	switch sub {
	case bytecode.ObjString:
		s, err := r.ID()
		if err != nil {
			return nil, err
		}
		return in.heap.str(s), nil
	case bytecode.ObjBool:
		b, err := r.Bool()
		if err != nil {
			return nil, err
		}
		return in.heap.boolean(b), nil
	case bytecode.ObjNumber:
		kind, err := r.U8()
		if err != nil {
			return nil, err
		}
		if kind == bytecode.NumInt {
			i, err := r.I64()
			if err != nil {
				return nil, err
			}
			return in.heap.integer(i), nil
		}
		fl, err := r.F64()
		if err != nil {
			return nil, err
		}
		return in.heap.float(fl), nil
	case bytecode.ObjArray:
		elems, err := in.list(r, f)
		if err != nil {
			return nil, err
		}
		return in.heap.array(elems), nil
	}
	return nil, &bytecode.MalformedError{Offset: at, Detail: fmt.Sprintf("unknown object tag %d", sub)}
}

// list 求值计数加表达式序列，出错时释放已求值的部分
func (in *Interp) list(r *bytecode.Reader, f *frame) ([]*Value, error) {
	n, err := r.Count()
	if err != nil {
		return nil, err
	}
	values := make([]*Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := in.eval(r, f)
		if err != nil {
			in.dropAll(values)
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (in *Interp) dropAll(values []*Value) {
	for _, v := range values {
		in.heap.drop(v)
	}
}

func (in *Interp) dict(r *bytecode.Reader, f *frame) (*Value, error) {
	n, err := r.Count()
	if err != nil {
		return nil, err
	}
	d := in.heap.alloc(Value{Kind: KindDict, Dict: newDict()})
	for i := 0; i < n; i++ {
		k, err := in.eval(r, f)
		if err != nil {
			in.heap.drop(d)
			return nil, err
		}
		v, err := in.eval(r, f)
		if err != nil {
			in.heap.drop(k)
			in.heap.drop(d)
			return nil, err
		}
		hk, ok := hashKey(k)
		if !ok {
			fl := typeFault("[]", k)
			in.dropAll([]*Value{k, v, d})
			return nil, fl
		}
		in.heap.setKey(d.Dict, hk, k, v)
	}
	return d, nil
}

// regex 正则标志 i、m、s、U 转成 Go 的内联标志
func (in *Interp) regex(r *bytecode.Reader) (*Value, error) {
	pattern, err := r.ID()
	if err != nil {
		return nil, err
	}
	flags, err := r.ID()
	if err != nil {
		return nil, err
	}
	expr := pattern
	if inline := strings.Map(func(c rune) rune {
		if strings.ContainsRune("imsU", c) {
			return c
		}
		return -1
	}, flags); inline != "" {
		expr = "(?" + inline + ")" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fault(i18n.ErrRuntimeRegex, pattern, err)
	}
	return in.heap.alloc(Value{Kind: KindRegex, Str: pattern, Flags: flags, Regex: re}), nil
}

// place 可写位置。temp 非空时位置属于一个临时值，用完后由 release 释放。
type place struct {
	slot *Value
	temp *Value
}

func (in *Interp) release(p place) {
	if p.temp != nil {
		in.heap.drop(p.temp)
	}
}

// temporary 把计算出的值包装成临时位置，同时释放外层临时值
func (in *Interp) temporary(outer place, v *Value) place {
	in.release(outer)
	return place{slot: v, temp: v}
}

// place 求值表达式的位置而不复制：变量、字段和元素直接指向其槽位，
// 其他表达式求值为临时值
func (in *Interp) place(r *bytecode.Reader, f *frame) (place, error) {
	op, err := r.Peek()
	if err != nil {
		return place{}, err
	}
	switch op {
	case bytecode.OpVarRef:
		r.Op()
		name, err := r.ID()
		if err != nil {
			return place{}, err
		}
		v, ok := in.lookup(f, name)
		if !ok {
			return place{}, undefined(name)
		}
		return place{slot: v}, nil

	case bytecode.OpMemberGet:
		r.Op()
		obj, err := in.place(r, f)
		if err != nil {
			return place{}, err
		}
		name, err := r.ID()
		if err != nil {
			in.release(obj)
			return place{}, err
		}
		if name == "length" {
			if n, ok := length(obj.slot); ok {
				return in.temporary(obj, in.heap.integer(n)), nil
			}
		}
		slot, err := field(obj.slot, name)
		if err != nil {
			in.release(obj)
			return place{}, err
		}
		return place{slot: slot, temp: obj.temp}, nil

	case bytecode.OpIndexGet:
		r.Op()
		obj, err := in.place(r, f)
		if err != nil {
			return place{}, err
		}
		idx, err := in.eval(r, f)
		if err != nil {
			in.release(obj)
			return place{}, err
		}
		defer in.heap.drop(idx)
		if obj.slot.Kind == KindString {
			s, err := charAt(obj.slot.Str, idx)
			if err != nil {
				in.release(obj)
				return place{}, err
			}
			return in.temporary(obj, in.heap.str(s)), nil
		}
		slot, err := in.element(obj.slot, idx, false)
		if err != nil {
			in.release(obj)
			return place{}, err
		}
		return place{slot: slot, temp: obj.temp}, nil
	}

	v, err := in.eval(r, f)
	if err != nil {
		return place{}, err
	}
	return place{slot: v, temp: v}, nil
}

// length 字符串、数组和字典的内置 length 属性
func length(v *Value) (int64, bool) {
	switch v.Kind {
	case KindString:
		return int64(len([]rune(v.Str))), true
	case KindArray:
		return int64(len(v.Elems)), true
	case KindDict:
		return int64(v.Dict.Len()), true
	}
	return 0, false
}

func field(obj *Value, name string) (*Value, error) {
	if obj.Kind == KindObject {
		if slot, ok := obj.Object.Fields[name]; ok {
			return slot, nil
		}
	}
	return nil, fault(i18n.ErrRuntimeNoMember, display(obj.TypeName()), name)
}

func charAt(s string, idx *Value) (string, error) {
	if idx.Kind != KindInt {
		return "", typeFault("[]", idx)
	}
	runes := []rune(s)
	if idx.Int < 0 || idx.Int >= int64(len(runes)) {
		return "", fault(i18n.ErrRuntimeIndex, idx.Int, len(runes))
	}
	return string(runes[idx.Int]), nil
}

// element 数组元素或字典项的槽位。create 为 true 时字典中缺少的键被创建。
func (in *Interp) element(obj, idx *Value, create bool) (*Value, error) {
	switch obj.Kind {
	case KindArray:
		if idx.Kind != KindInt {
			return nil, typeFault("[]", idx)
		}
		if idx.Int < 0 || idx.Int >= int64(len(obj.Elems)) {
			return nil, fault(i18n.ErrRuntimeIndex, idx.Int, len(obj.Elems))
		}
		return obj.Elems[idx.Int], nil
	case KindDict:
		hk, ok := hashKey(idx)
		if !ok {
			return nil, typeFault("[]", idx)
		}
		if slot, ok := obj.Dict.Get(hk); ok {
			return slot, nil
		}
		if !create {
			return nil, fault(i18n.ErrRuntimeMissingKey, Format(idx))
		}
		slot := in.heap.none()
		in.heap.setKey(obj.Dict, hk, in.heap.clone(idx), slot)
		return slot, nil
	}
	return nil, typeFault("[]", obj)
}

// invoke 调用具名函数；print 在查找用户符号之前处理
func (in *Interp) invoke(r *bytecode.Reader, f *frame) (*Value, error) {
	name, err := r.ID()
	if err != nil {
		return nil, err
	}
	args, err := in.list(r, f)
	if err != nil {
		return nil, err
	}
	if name == printName {
		return in.print(args)
	}
	v, ok := in.lookup(f, name)
	if !ok {
		in.dropAll(args)
		return nil, undefined(name)
	}
	if v.Kind != KindFunc {
		in.dropAll(args)
		return nil, &Fault{Key: i18n.ErrRuntimeNotCallable, Args: []any{display(name)}, Symbol: name}
	}
	return in.call(v.Func, args, nil)
}

func (in *Interp) print(args []*Value) (*Value, error) {
	defer in.dropAll(args)
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Format(a)
	}
	if _, err := fmt.Fprintln(in.opts.Stdout, strings.Join(parts, " ")); err != nil {
		return nil, err
	}
	return in.heap.none(), nil
}

// call 在新的调用帧中执行函数体，参数的所有权转给调用帧
func (in *Interp) call(fn *Function, args []*Value, self *Value) (*Value, error) {
	if len(args) != len(fn.Params) {
		in.dropAll(args)
		return nil, &Fault{Key: i18n.ErrRuntimeArity, Args: []any{display(fn.Name), len(fn.Params), len(args)}, Symbol: fn.Name}
	}
	params := make(map[string]*Value, len(args))
	for i, p := range fn.Params {
		params[p] = args[i]
	}
	cf := &frame{scopes: []map[string]*Value{params}, self: self, unit: fn.unit}
	defer cf.release(in.heap)

	r := bytecode.NewReader(fn.unit.Code)
	if err := r.Seek(fn.offset); err != nil {
		return nil, err
	}
	if _, err := in.block(r, cf); err != nil {
		in.heap.drop(cf.ret)
		return nil, err
	}
	if cf.ret == nil {
		return in.heap.none(), nil
	}
	return cf.ret, nil
}

// invokeMethod 接收者按位置求值，方法中对 self 的修改作用于原对象
func (in *Interp) invokeMethod(r *bytecode.Reader, f *frame) (*Value, error) {
	recv, err := in.place(r, f)
	if err != nil {
		return nil, err
	}
	defer in.release(recv)
	name, err := r.ID()
	if err != nil {
		return nil, err
	}
	args, err := in.list(r, f)
	if err != nil {
		return nil, err
	}

	obj := recv.slot
	switch {
	case obj.Kind == KindObject:
		if m, ok := obj.Object.Class.Methods[name]; ok {
			return in.call(m, args, obj)
		}
	case obj.Kind == KindArray && name == "push" && len(args) == 1:
		obj.Elems = append(obj.Elems, args[0])
		return in.heap.none(), nil
	}
	in.dropAll(args)
	return nil, fault(i18n.ErrRuntimeNoMember, display(obj.TypeName()), name)
}

func (in *Interp) createObject(r *bytecode.Reader, f *frame) (*Value, error) {
	name, err := r.ID()
	if err != nil {
		return nil, err
	}
	args, err := in.list(r, f)
	if err != nil {
		return nil, err
	}
	cls, ok := in.classes[name]
	if !ok {
		in.dropAll(args)
		return nil, undefined(name)
	}
	return in.instantiate(cls, args)
}

// instantiate 先求值字段初始值，再按参数个数选择构造方法
func (in *Interp) instantiate(cls *Class, args []*Value) (*Value, error) {
	ctor, ok := cls.Constructors[len(args)]
	if !ok && (len(args) > 0 || len(cls.Constructors) > 0) {
		in.dropAll(args)
		expected := 0
		for n := range cls.Constructors {
			expected = n
			break
		}
		return nil, &Fault{Key: i18n.ErrRuntimeArity, Args: []any{display(cls.Name), expected, len(args)}, Symbol: cls.Name}
	}

	obj := in.heap.alloc(Value{Kind: KindObject, Object: &Object{Class: cls, Fields: make(map[string]*Value, len(cls.Fields))}})
	for _, fd := range cls.Fields {
		if fd.Init < 0 {
			obj.Object.Fields[fd.Name] = in.zero(fd.Zero)
			continue
		}
		ff := &frame{scopes: []map[string]*Value{{}}, self: obj, unit: cls.unit}
		r := bytecode.NewReader(cls.unit.Code)
		if err := r.Seek(fd.Init); err != nil {
			in.dropAll(append(args, obj))
			return nil, err
		}
		v, err := in.eval(r, ff)
		ff.release(in.heap)
		if err != nil {
			in.dropAll(append(args, obj))
			return nil, err
		}
		obj.Object.Fields[fd.Name] = v
	}

	if ctor == nil {
		return obj, nil
	}
	ret, err := in.call(ctor, args, obj)
	if err != nil {
		in.heap.drop(obj)
		return nil, err
	}
	in.heap.drop(ret)
	return obj, nil
}

func (in *Interp) operator(r *bytecode.Reader) (bytecode.Operator, error) {
	at := r.Pos()
	b, err := r.U8()
	if err != nil {
		return 0, err
	}
	op := bytecode.Operator(b)
	if !op.Valid() {
		return 0, &bytecode.MalformedError{Offset: at, Detail: fmt.Sprintf("unknown operator %d", b)}
	}
	return op, nil
}

func (in *Interp) unary(r *bytecode.Reader, f *frame) (*Value, error) {
	op, err := in.operator(r)
	if err != nil {
		return nil, err
	}
	v, err := in.eval(r, f)
	if err != nil {
		return nil, err
	}
	defer in.heap.drop(v)
	switch {
	case op == bytecode.OpNot && v.Kind == KindBool:
		return in.heap.boolean(!v.Bool), nil
	case op == bytecode.OpNeg && v.Kind == KindInt:
		return in.heap.integer(-v.Int), nil
	case op == bytecode.OpNeg && v.Kind == KindFloat:
		return in.heap.float(-v.Float), nil
	}
	return nil, typeFault(op.String(), v)
}

// binaryExpr && 和 || 短路，右操作数按长度跳过
func (in *Interp) binaryExpr(r *bytecode.Reader, f *frame) (*Value, error) {
	op, err := in.operator(r)
	if err != nil {
		return nil, err
	}
	l, err := in.eval(r, f)
	if err != nil {
		return nil, err
	}

	if op == bytecode.OpAnd || op == bytecode.OpOr {
		if l.Kind != KindBool {
			fl := typeFault(op.String(), l)
			in.heap.drop(l)
			return nil, fl
		}
		size, err := r.U32()
		if err != nil {
			in.heap.drop(l)
			return nil, err
		}
		if l.Bool == (op == bytecode.OpOr) {
			return l, r.Skip(int(size))
		}
		in.heap.drop(l)
		rv, err := in.eval(r, f)
		if err != nil {
			return nil, err
		}
		if rv.Kind != KindBool {
			fl := typeFault(op.String(), rv)
			in.heap.drop(rv)
			return nil, fl
		}
		return rv, nil
	}

	rv, err := in.eval(r, f)
	if err != nil {
		in.heap.drop(l)
		return nil, err
	}
	defer in.dropAll([]*Value{l, rv})
	return in.binary(op, l, rv)
}

// assign 把 value 写入槽位，复合赋值先与旧值运算。返回新值的副本。
func (in *Interp) assign(slot *Value, op bytecode.Operator, value *Value) (*Value, error) {
	if op != bytecode.OpAssign {
		v, err := in.binary(op, slot, value)
		in.heap.drop(value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	in.heap.replace(slot, value)
	return in.heap.clone(slot), nil
}

func (in *Interp) varSet(r *bytecode.Reader, f *frame) (*Value, error) {
	name, err := r.ID()
	if err != nil {
		return nil, err
	}
	op, err := in.operator(r)
	if err != nil {
		return nil, err
	}
	value, err := in.eval(r, f)
	if err != nil {
		return nil, err
	}
	slot, ok := in.lookup(f, name)
	if !ok {
		in.heap.drop(value)
		return nil, undefined(name)
	}
	return in.assign(slot, op, value)
}

func (in *Interp) memberSet(r *bytecode.Reader, f *frame) (*Value, error) {
	obj, err := in.place(r, f)
	if err != nil {
		return nil, err
	}
	defer in.release(obj)
	name, err := r.ID()
	if err != nil {
		return nil, err
	}
	op, err := in.operator(r)
	if err != nil {
		return nil, err
	}
	value, err := in.eval(r, f)
	if err != nil {
		return nil, err
	}
	slot, err := field(obj.slot, name)
	if err != nil {
		in.heap.drop(value)
		return nil, err
	}
	return in.assign(slot, op, value)
}

func (in *Interp) indexSet(r *bytecode.Reader, f *frame) (*Value, error) {
	obj, err := in.place(r, f)
	if err != nil {
		return nil, err
	}
	defer in.release(obj)
	idx, err := in.eval(r, f)
	if err != nil {
		return nil, err
	}
	defer in.heap.drop(idx)
	op, err := in.operator(r)
	if err != nil {
		return nil, err
	}
	value, err := in.eval(r, f)
	if err != nil {
		return nil, err
	}
	slot, err := in.element(obj.slot, idx, op == bytecode.OpAssign)
	if err != nil {
		in.heap.drop(value)
		return nil, err
	}
	return in.assign(slot, op, value)
}
