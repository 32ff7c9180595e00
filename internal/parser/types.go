package parser

import "strings"

// Type 类型值
type Type struct {
	Name         string
	Params       []*Type // 泛型参数；函数类型为参数类型加返回类型
	Optional     bool    // T?
	Throwable    bool    // T!
	Alias        bool
	Placeholder  bool // 出现在注解中的类型引用，尚未解析到声明
	GenericParam bool // 泛型形参，如 func f<T> 中的 T
}

// 内置类型单例
var (
	VoidType     = &Type{Name: "Void"}
	StringType   = &Type{Name: "String"}
	BoolType     = &Type{Name: "Bool"}
	ArrayType    = &Type{Name: "Array"}
	DictType     = &Type{Name: "Dict"}
	IntType      = &Type{Name: "Int"}
	FloatType    = &Type{Name: "Float"}
	RegexType    = &Type{Name: "Regex"}
	AnyType      = &Type{Name: "Any"}
	TaskType     = &Type{Name: "Task"}
	FunctionType = &Type{Name: "Function"}
)

var builtinTypes = map[string]*Type{
	"Void":     VoidType,
	"String":   StringType,
	"Bool":     BoolType,
	"Array":    ArrayType,
	"Dict":     DictType,
	"Int":      IntType,
	"Float":    FloatType,
	"Regex":    RegexType,
	"Any":      AnyType,
	"Task":     TaskType,
	"Function": FunctionType,
}

// BuiltinType 按名字查找内置类型
func BuiltinType(name string) (*Type, bool) {
	t, ok := builtinTypes[name]
	return t, ok
}

// IsBuiltin 是否为内置类型名
func IsBuiltin(name string) bool {
	_, ok := builtinTypes[name]
	return ok
}

// NewType 创建用户类型
func NewType(name string, params ...*Type) *Type {
	return &Type{Name: name, Params: params}
}

// ArrayOf 返回 Array<elem>
func ArrayOf(elem *Type) *Type {
	return &Type{Name: ArrayType.Name, Params: []*Type{elem}}
}

// DictOf 返回 Dict<key,value>
func DictOf(key, value *Type) *Type {
	return &Type{Name: DictType.Name, Params: []*Type{key, value}}
}

// FuncOf 返回函数类型，Params 末尾是返回类型
func FuncOf(params []*Type, ret *Type) *Type {
	all := make([]*Type, 0, len(params)+1)
	all = append(all, params...)
	all = append(all, ret)
	return &Type{Name: FunctionType.Name, Params: all}
}

// Clone 浅拷贝类型，参数列表共享元素
func (t *Type) Clone() *Type {
	c := *t
	if t.Params != nil {
		c.Params = append([]*Type(nil), t.Params...)
	}
	return &c
}

// Is 判断是否为指定名字的类型，忽略修饰符
func (t *Type) Is(other *Type) bool {
	return t != nil && other != nil && t.Name == other.Name
}

// IsFunction 是否为函数类型
func (t *Type) IsFunction() bool {
	return t.Name == FunctionType.Name && len(t.Params) > 0
}

// Elem 返回 Array<T> 的元素类型或 Dict<K,V> 的值类型，未知时为 Any
func (t *Type) Elem() *Type {
	switch {
	case t.Name == ArrayType.Name && len(t.Params) == 1:
		return t.Params[0]
	case t.Name == DictType.Name && len(t.Params) == 2:
		return t.Params[1]
	}
	return AnyType
}

// Key 返回 Dict<K,V> 的键类型，未知时为 Any
func (t *Type) Key() *Type {
	if t.Name == DictType.Name && len(t.Params) == 2 {
		return t.Params[0]
	}
	return AnyType
}

// Match 判断 other 能否用在期望类型 t 的位置上
func (t *Type) Match(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	if t.GenericParam || other.GenericParam {
		return true
	}
	if t.Name == AnyType.Name || other.Name == AnyType.Name {
		return true
	}
	if t.Name != other.Name {
		return false
	}
	if !t.Optional && other.Optional {
		return false
	}
	if !t.Throwable && other.Throwable {
		return false
	}
	if len(t.Params) != len(other.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Match(other.Params[i]) {
			return false
		}
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	if t.IsFunction() {
		b.WriteByte('(')
		for i, p := range t.Params[:len(t.Params)-1] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(p.String())
		}
		b.WriteString(") ")
		b.WriteString(t.Params[len(t.Params)-1].String())
	} else {
		b.WriteString(t.Name)
		if len(t.Params) > 0 {
			b.WriteByte('<')
			for i, p := range t.Params {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(p.String())
			}
			b.WriteByte('>')
		}
	}
	if t.Optional {
		b.WriteByte('?')
	}
	if t.Throwable {
		b.WriteByte('!')
	}
	return b.String()
}
