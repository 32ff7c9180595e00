// Package runtime 解释执行字节码。
//
// 每次函数调用在函数体偏移处新建一个读取游标，递归调用互不干扰。
// 值只属于一个槽位，作用域结束时递归释放，Heap 记录存活值的数量。
package runtime

import (
	"fmt"
	"io"
	"os"

	"github.com/tangzhangming/starbytes/internal/bytecode"
)

// Options 解释器选项
type Options struct {
	Stdout io.Writer
}

// Interp 字节码解释器。全局绑定和类定义在多次 Exec 之间保留，
// 依赖模块先执行，主模块后执行。
type Interp struct {
	opts    Options
	heap    *Heap
	globals map[string]*Value
	classes map[string]*Class
}

// New 创建解释器
func New(opts Options) *Interp {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Interp{
		opts:    opts,
		heap:    &Heap{},
		globals: make(map[string]*Value),
		classes: make(map[string]*Class),
	}
}

// Heap 解释器的值计数
func (in *Interp) Heap() *Heap {
	return in.heap
}

// Lookup 查找全局绑定，返回的值仍归解释器所有
func (in *Interp) Lookup(name string) (*Value, bool) {
	v, ok := in.globals[name]
	return v, ok
}

// Close 释放所有全局绑定
func (in *Interp) Close() {
	for name, v := range in.globals {
		in.heap.drop(v)
		delete(in.globals, name)
	}
}

// flow 语句执行后的控制流
type flow int

const (
	flowNext flow = iota
	flowReturn
)

// frame 一次调用的绑定。scopes[0] 是参数（主模块为全局绑定），
// 之后每个块压入一层。
type frame struct {
	scopes []map[string]*Value
	self   *Value // 方法的接收者槽位
	ret    *Value
	unit   *Unit
	global bool
}

func (f *frame) push() {
	f.scopes = append(f.scopes, make(map[string]*Value))
}

func (f *frame) pop(h *Heap) {
	top := f.scopes[len(f.scopes)-1]
	for _, v := range top {
		h.drop(v)
	}
	f.scopes = f.scopes[:len(f.scopes)-1]
}

// release 释放调用帧的全部绑定
func (f *frame) release(h *Heap) {
	for len(f.scopes) > 0 {
		f.pop(h)
	}
}

// lookup 先查调用帧的各层作用域，再查全局绑定
func (in *Interp) lookup(f *frame, name string) (*Value, bool) {
	if name == "self" && f.self != nil {
		return f.self, true
	}
	for i := len(f.scopes) - 1; i >= 0; i-- {
		if v, ok := f.scopes[i][name]; ok {
			return v, true
		}
	}
	if f.global {
		return nil, false
	}
	v, ok := in.globals[name]
	return v, ok
}

// define 在最内层作用域绑定 v，同名的旧值被释放
func (in *Interp) define(f *frame, name string, v *Value) {
	top := f.scopes[len(f.scopes)-1]
	if old, ok := top[name]; ok {
		in.heap.drop(old)
	}
	top[name] = v
}

// Exec 执行一个模块的字节码流，直到 MODULE_END
func (in *Interp) Exec(code []byte) error {
	return in.ExecUnit(&Unit{Code: code})
}

// ExecUnit 同 Exec，运行时错误带上出错语句的源码位置
func (in *Interp) ExecUnit(u *Unit) error {
	f := &frame{scopes: []map[string]*Value{in.globals}, unit: u, global: true}
	r := bytecode.NewReader(u.Code)
	for {
		op, err := r.Peek()
		if err != nil {
			return asFault(err)
		}
		if op == bytecode.OpModuleEnd {
			return nil
		}
		if _, err := in.stmt(r, f); err != nil {
			return asFault(err)
		}
	}
}

func (in *Interp) stmt(r *bytecode.Reader, f *frame) (flow, error) {
	at := r.Pos()
	fl, err := in.exec(r, f)
	if err != nil {
		return fl, f.unit.locate(err, at)
	}
	return fl, nil
}

func (in *Interp) exec(r *bytecode.Reader, f *frame) (flow, error) {
	op, err := r.Peek()
	if err != nil {
		return flowNext, err
	}
	switch op {
	case bytecode.OpDefineVar:
		r.Op()
		return flowNext, in.defineVar(r, f)
	case bytecode.OpDefineFunc:
		r.Op()
		fn, err := readFunc(r, f.unit)
		if err != nil {
			return flowNext, err
		}
		in.define(f, fn.Name, in.heap.alloc(Value{Kind: KindFunc, Func: fn}))
		return flowNext, nil
	case bytecode.OpDefineClass:
		r.Op()
		cls, err := readClass(r, f.unit)
		if err != nil {
			return flowNext, err
		}
		in.classes[cls.Name] = cls
		return flowNext, nil
	case bytecode.OpConditional:
		r.Op()
		return in.conditional(r, f)
	case bytecode.OpReturn:
		r.Op()
		return in.ret(r, f)
	case bytecode.OpBlockBegin:
		return in.block(r, f)
	case bytecode.OpSecure:
		r.Op()
		return in.secure(r, f)
	}
	v, err := in.eval(r, f)
	if err != nil {
		return flowNext, err
	}
	in.heap.drop(v)
	return flowNext, nil
}

func (in *Interp) defineVar(r *bytecode.Reader, f *frame) error {
	name, err := r.ID()
	if err != nil {
		return err
	}
	v, err := in.initializer(r, f)
	if err != nil {
		return err
	}
	in.define(f, name, v)
	return nil
}

// initializer 读取初始值表达式，或按类型名给出默认值
func (in *Interp) initializer(r *bytecode.Reader, f *frame) (*Value, error) {
	has, err := r.Bool()
	if err != nil {
		return nil, err
	}
	if has {
		return in.eval(r, f)
	}
	typ, err := r.ID()
	if err != nil {
		return nil, err
	}
	return in.zero(typ), nil
}

// zero 带类型注解而没有初始值的变量的默认值
func (in *Interp) zero(typ string) *Value {
	switch typ {
	case "Int":
		return in.heap.integer(0)
	case "Float":
		return in.heap.float(0)
	case "String":
		return in.heap.str("")
	case "Bool":
		return in.heap.boolean(false)
	case "Array":
		return in.heap.array(nil)
	case "Dict":
		return in.heap.alloc(Value{Kind: KindDict, Dict: newDict()})
	}
	return in.heap.none()
}

// readFunc 读取 DEFINE_FUNC 记录的其余部分并跳过函数体
func readFunc(r *bytecode.Reader, u *Unit) (*Function, error) {
	name, err := r.ID()
	if err != nil {
		return nil, err
	}
	n, err := r.Count()
	if err != nil {
		return nil, err
	}
	fn := &Function{Name: name, unit: u}
	for i := 0; i < n; i++ {
		p, err := r.ID()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, p)
	}
	off, err := r.U32()
	if err != nil {
		return nil, err
	}
	if err := r.Seek(int(off)); err != nil {
		return nil, err
	}
	fn.offset = int(off)
	return fn, skipBlock(r)
}

func readClass(r *bytecode.Reader, u *Unit) (*Class, error) {
	name, err := r.ID()
	if err != nil {
		return nil, err
	}
	cls := &Class{
		Name:         name,
		Constructors: make(map[int]*Function),
		Methods:      make(map[string]*Function),
		unit:         u,
	}

	n, err := r.Count()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		fd := &FieldDef{Init: -1}
		if fd.Name, err = r.ID(); err != nil {
			return nil, err
		}
		has, err := r.Bool()
		if err != nil {
			return nil, err
		}
		if has {
			size, err := r.U32()
			if err != nil {
				return nil, err
			}
			fd.Init = r.Pos()
			if err := r.Skip(int(size)); err != nil {
				return nil, err
			}
		} else if fd.Zero, err = r.ID(); err != nil {
			return nil, err
		}
		cls.Fields = append(cls.Fields, fd)
	}

	methods := func(add func(*Function)) error {
		n, err := r.Count()
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := r.Expect(bytecode.OpDefineFunc); err != nil {
				return err
			}
			fn, err := readFunc(r, u)
			if err != nil {
				return err
			}
			add(fn)
		}
		return nil
	}
	if err := methods(func(fn *Function) {
		fn.Name = name
		cls.Constructors[len(fn.Params)] = fn
	}); err != nil {
		return nil, err
	}
	if err := methods(func(fn *Function) {
		cls.Methods[fn.Name] = fn
		fn.Name = name + "." + fn.Name
	}); err != nil {
		return nil, err
	}
	return cls, nil
}

func skipBlock(r *bytecode.Reader) error {
	if err := r.Expect(bytecode.OpBlockBegin); err != nil {
		return err
	}
	size, err := r.U32()
	if err != nil {
		return err
	}
	return r.Skip(int(size))
}

// block 在新的作用域中执行块，遇到 return 立即返回，
// 游标由丢弃它的调用方负责
func (in *Interp) block(r *bytecode.Reader, f *frame) (flow, error) {
	if err := r.Expect(bytecode.OpBlockBegin); err != nil {
		return flowNext, err
	}
	if _, err := r.U32(); err != nil {
		return flowNext, err
	}
	f.push()
	defer f.pop(in.heap)
	for {
		op, err := r.Peek()
		if err != nil {
			return flowNext, err
		}
		if op == bytecode.OpBlockEnd {
			r.Op()
			return flowNext, nil
		}
		fl, err := in.stmt(r, f)
		if err != nil || fl == flowReturn {
			return fl, err
		}
	}
}

// conditional if/elif/else 链或循环
func (in *Interp) conditional(r *bytecode.Reader, f *frame) (flow, error) {
	size, err := r.U32()
	if err != nil {
		return flowNext, err
	}
	end := r.Pos() + int(size)
	n, err := r.Count()
	if err != nil {
		return flowNext, err
	}
	for i := 0; i < n; i++ {
		kind, err := r.U8()
		if err != nil {
			return flowNext, err
		}
		switch kind {
		case bytecode.CondElse:
			return in.branch(r, f, end)
		case bytecode.CondIf:
			ok, err := in.condition(r, f, "if")
			if err != nil {
				return flowNext, err
			}
			if ok {
				return in.branch(r, f, end)
			}
			if err := skipBlock(r); err != nil {
				return flowNext, err
			}
		case bytecode.CondLoop:
			return in.loop(r, f)
		default:
			return flowNext, &bytecode.MalformedError{Offset: r.Pos() - 1, Detail: fmt.Sprintf("unknown branch kind %d", kind)}
		}
	}
	return flowNext, r.Expect(bytecode.OpConditionalEnd)
}

// branch 执行选中的分支，然后跳到 CONDITIONAL_END 之后
func (in *Interp) branch(r *bytecode.Reader, f *frame, end int) (flow, error) {
	fl, err := in.block(r, f)
	if err != nil || fl == flowReturn {
		return fl, err
	}
	if err := r.Seek(end - 1); err != nil {
		return flowNext, err
	}
	return flowNext, r.Expect(bytecode.OpConditionalEnd)
}

func (in *Interp) loop(r *bytecode.Reader, f *frame) (flow, error) {
	start := r.Pos()
	for {
		if err := r.Seek(start); err != nil {
			return flowNext, err
		}
		ok, err := in.condition(r, f, "while")
		if err != nil {
			return flowNext, err
		}
		if !ok {
			if err := skipBlock(r); err != nil {
				return flowNext, err
			}
			return flowNext, r.Expect(bytecode.OpConditionalEnd)
		}
		fl, err := in.block(r, f)
		if err != nil || fl == flowReturn {
			return fl, err
		}
	}
}

func (in *Interp) condition(r *bytecode.Reader, f *frame, op string) (bool, error) {
	v, err := in.eval(r, f)
	if err != nil {
		return false, err
	}
	defer in.heap.drop(v)
	if v.Kind != KindBool {
		return false, typeFault(op, v)
	}
	return v.Bool, nil
}

func (in *Interp) ret(r *bytecode.Reader, f *frame) (flow, error) {
	has, err := r.Bool()
	if err != nil {
		return flowNext, err
	}
	if has {
		v, err := in.eval(r, f)
		if err != nil {
			return flowNext, err
		}
		f.ret = v
	}
	return flowReturn, nil
}

// secure 求值受保护的初始值。出错时变量绑定为 none，
// catch 变量绑定为错误信息，然后执行 catch 块。
func (in *Interp) secure(r *bytecode.Reader, f *frame) (flow, error) {
	name, err := r.ID()
	if err != nil {
		return flowNext, err
	}
	size, err := r.U32()
	if err != nil {
		return flowNext, err
	}
	end := r.Pos() + int(size)

	v, evalErr := in.eval(r, f)
	catchName, err := func() (string, error) {
		if evalErr != nil {
			if err := r.Seek(end); err != nil {
				return "", err
			}
		}
		return r.ID()
	}()
	if err != nil {
		return flowNext, err
	}

	if evalErr == nil {
		in.define(f, name, v)
		return flowNext, skipBlock(r)
	}
	caught, ok := recoverable(evalErr)
	if !ok {
		return flowNext, evalErr
	}
	in.define(f, name, in.heap.none())

	f.push()
	defer f.pop(in.heap)
	if catchName != "" {
		in.define(f, catchName, in.heap.str(caught.Error()))
	}
	return in.block(r, f)
}
