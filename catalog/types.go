package catalog

import "github.com/donutnomad/godiscover/annotation"

// Kind 类型种类
type Kind int

const (
	KindStruct Kind = iota + 1
	KindInterface
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// AbstractAnnotation 标记类型不可实例化
const AbstractAnnotation = "Abstract"

// TypeInfo 已登记的具名类型
type TypeInfo struct {
	ID          string // <导入路径>.<类型名>
	Name        string
	Package     string // 导入路径
	PackageName string
	File        string
	Line        int
	Kind        Kind
	Generic     bool
	Abstract    bool     // 带 @Abstract 注解
	Embeds      []string // 嵌入类型的标识符
	Annotations []*annotation.Annotation
	Fields      []FieldInfo
	Methods     []MethodInfo // 结构体/其他类型：声明的方法；接口：接口方法
}

// FieldInfo 结构体字段
type FieldInfo struct {
	Name        string
	Type        string
	Tag         string
	Embedded    bool
	Line        int
	Annotations []*annotation.Annotation
}

// MethodInfo 方法
type MethodInfo struct {
	Name            string
	Signature       string // 去掉包限定符的签名，如 (Context,string)(error)
	PointerReceiver bool
	Line            int
	Annotations     []*annotation.Annotation
}

// Instantiable 能否直接构造：非接口、非泛型、未标记 @Abstract
func (t *TypeInfo) Instantiable() bool {
	return t != nil && t.Kind != KindInterface && !t.Generic && !t.Abstract
}

// Method 按名称查找方法
func (t *TypeInfo) Method(name string) (MethodInfo, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodInfo{}, false
}

// MethodID 方法标识符 Type::Method
func MethodID(typeID, method string) string {
	return typeID + "::" + method
}

// PropertyID 字段标识符 Type::$Field
func PropertyID(typeID, field string) string {
	return typeID + "::$" + field
}
