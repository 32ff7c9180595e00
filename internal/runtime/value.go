package runtime

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind 运行时值的种类
type Kind byte

const (
	KindNone Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindArray
	KindDict
	KindRegex
	KindObject
	KindFunc
)

var kindNames = [...]string{
	KindNone:   "None",
	KindString: "String",
	KindBool:   "Bool",
	KindInt:    "Int",
	KindFloat:  "Float",
	KindArray:  "Array",
	KindDict:   "Dict",
	KindRegex:  "Regex",
	KindObject: "Object",
	KindFunc:   "Function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value 运行时值。每个值只属于一个槽位（绑定、元素、字段或参数），
// 槽位消亡时由 Heap 递归释放。
type Value struct {
	Kind   Kind
	Str    string // 字符串，正则的模式
	Bool   bool
	Int    int64
	Float  float64
	Elems  []*Value
	Dict   *Dict
	Regex  *regexp.Regexp
	Flags  string
	Object *Object
	Func   *Function
}

// TypeName 值的类型名，对象为类的输出名
func (v *Value) TypeName() string {
	if v.Kind == KindObject {
		return v.Object.Class.Name
	}
	return v.Kind.String()
}

// display 给用户看的符号名，去掉最前面的模块前缀：
// "geo::Shapes::Circle" 显示为 "Shapes::Circle"
func display(name string) string {
	if i := strings.Index(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

// Dict 保持插入顺序的字典
type Dict struct {
	keys    []string
	entries map[string]*dictEntry
}

type dictEntry struct {
	key   *Value
	value *Value
}

func newDict() *Dict {
	return &Dict{entries: make(map[string]*dictEntry)}
}

// Len 键的数量
func (d *Dict) Len() int {
	return len(d.keys)
}

// Get 按键查找值槽位
func (d *Dict) Get(key string) (*Value, bool) {
	e, ok := d.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// hashKey 可作为字典键的值的规范表示
func hashKey(v *Value) (string, bool) {
	switch v.Kind {
	case KindString:
		return "s:" + v.Str, true
	case KindInt:
		return "i:" + strconv.FormatInt(v.Int, 10), true
	case KindFloat:
		return "f:" + strconv.FormatFloat(v.Float, 'g', -1, 64), true
	case KindBool:
		return "b:" + strconv.FormatBool(v.Bool), true
	}
	return "", false
}

// Object 类的实例
type Object struct {
	Class  *Class
	Fields map[string]*Value
}

// Function 字节码中的函数：所在模块和函数体的偏移
type Function struct {
	Name   string
	Params []string
	unit   *Unit
	offset int
}

// Class 运行时的类定义
type Class struct {
	Name         string
	Fields       []*FieldDef
	Constructors map[int]*Function
	Methods      map[string]*Function
	unit         *Unit
}

// FieldDef 字段定义。Init 为初始值表达式的偏移，没有时为 -1，
// 此时按 Zero 类型取默认值。
type FieldDef struct {
	Name string
	Init int
	Zero string
}

// Heap 统计存活的值
type Heap struct {
	live int
}

// Live 存活的值的数量
func (h *Heap) Live() int {
	return h.live
}

func (h *Heap) alloc(v Value) *Value {
	h.live++
	p := new(Value)
	*p = v
	return p
}

func (h *Heap) none() *Value           { return h.alloc(Value{Kind: KindNone}) }
func (h *Heap) str(s string) *Value     { return h.alloc(Value{Kind: KindString, Str: s}) }
func (h *Heap) boolean(b bool) *Value   { return h.alloc(Value{Kind: KindBool, Bool: b}) }
func (h *Heap) integer(i int64) *Value  { return h.alloc(Value{Kind: KindInt, Int: i}) }
func (h *Heap) float(f float64) *Value  { return h.alloc(Value{Kind: KindFloat, Float: f}) }
func (h *Heap) array(e []*Value) *Value { return h.alloc(Value{Kind: KindArray, Elems: e}) }

// drop 递归释放值及其拥有的所有子值
func (h *Heap) drop(v *Value) {
	if v == nil {
		return
	}
	h.dropChildren(v)
	*v = Value{}
	h.live--
}

func (h *Heap) dropChildren(v *Value) {
	switch v.Kind {
	case KindArray:
		for _, e := range v.Elems {
			h.drop(e)
		}
	case KindDict:
		for _, k := range v.Dict.keys {
			e := v.Dict.entries[k]
			h.drop(e.key)
			h.drop(e.value)
		}
	case KindObject:
		for _, f := range v.Object.Fields {
			h.drop(f)
		}
	}
}

// replace 把 v 的内容移入槽位 slot，释放槽位原有内容和 v 的外壳。
// 槽位指针保持不变。
func (h *Heap) replace(slot, v *Value) {
	h.dropChildren(slot)
	*slot = *v
	*v = Value{}
	h.live--
}

// clone 深拷贝，结果由调用方拥有
func (h *Heap) clone(v *Value) *Value {
	c := *v
	switch v.Kind {
	case KindArray:
		c.Elems = make([]*Value, len(v.Elems))
		for i, e := range v.Elems {
			c.Elems[i] = h.clone(e)
		}
	case KindDict:
		d := newDict()
		for _, k := range v.Dict.keys {
			e := v.Dict.entries[k]
			d.keys = append(d.keys, k)
			d.entries[k] = &dictEntry{key: h.clone(e.key), value: h.clone(e.value)}
		}
		c.Dict = d
	case KindObject:
		o := &Object{Class: v.Object.Class, Fields: make(map[string]*Value, len(v.Object.Fields))}
		for name, f := range v.Object.Fields {
			o.Fields[name] = h.clone(f)
		}
		c.Object = o
	}
	return h.alloc(c)
}

// setKey 设置字典项，key 和 value 的所有权转给字典
func (h *Heap) setKey(d *Dict, hk string, key, value *Value) {
	if e, ok := d.entries[hk]; ok {
		h.drop(key)
		h.drop(e.value)
		e.value = value
		return
	}
	d.keys = append(d.keys, hk)
	d.entries[hk] = &dictEntry{key: key, value: value}
}

// Format 值的文本形式，print 使用
func Format(v *Value) string {
	var b strings.Builder
	format(&b, v, false)
	return b.String()
}

func format(b *strings.Builder, v *Value, nested bool) {
	switch v.Kind {
	case KindNone:
		b.WriteString("none")
	case KindString:
		if nested {
			b.WriteString(strconv.Quote(v.Str))
		} else {
			b.WriteString(v.Str)
		}
	case KindBool:
		b.WriteString(strconv.FormatBool(v.Bool))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case KindFloat:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		b.WriteString(s)
	case KindArray:
		b.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, e, true)
		}
		b.WriteByte(']')
	case KindDict:
		b.WriteByte('{')
		for i, k := range v.Dict.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			e := v.Dict.entries[k]
			format(b, e.key, true)
			b.WriteString(": ")
			format(b, e.value, true)
		}
		b.WriteByte('}')
	case KindRegex:
		b.WriteString("/" + v.Str + "/" + v.Flags)
	case KindObject:
		b.WriteString(display(v.Object.Class.Name))
		b.WriteByte('{')
		for i, f := range v.Object.Class.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name + ": ")
			format(b, v.Object.Fields[f.Name], true)
		}
		b.WriteByte('}')
	case KindFunc:
		b.WriteString("<func " + display(v.Func.Name) + ">")
	}
}
