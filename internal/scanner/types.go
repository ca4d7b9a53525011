package scanner

import (
	"github.com/donutnomad/godiscover/annotation"
)

// Kind 表示类型声明的种类
type Kind int

const (
	KindStruct    Kind = iota + 1 // 结构体
	KindInterface                 // 接口
	KindOther                     // 其他具名类型（type X int、type F func() 等）
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

// Ref 引用另一个具名类型
type Ref struct {
	Package string // 导入路径，同包类型为空
	Name    string // 类型名
}

// FieldDecl 结构体字段
type FieldDecl struct {
	Name        string
	Type        string
	Tag         string
	Embedded    bool
	Line        int
	Annotations []*annotation.Annotation
}

// MethodDecl 方法声明（结构体方法或接口方法）
type MethodDecl struct {
	Name            string
	Receiver        string // 接收者类型名（去掉 * 与类型参数），接口方法为接口名
	PointerReceiver bool
	Signature       string // 去掉包限定符后的签名，如 (Context,string)(error)
	Line            int
	Annotations     []*annotation.Annotation
}

// TypeDecl 具名类型声明
type TypeDecl struct {
	Name        string
	Kind        Kind
	Generic     bool
	Alias       bool
	Line        int
	Annotations []*annotation.Annotation
	Embeds      []Ref         // 结构体嵌入字段或接口嵌入
	Methods     []*MethodDecl // 仅接口：声明的方法
	Fields      []*FieldDecl  // 仅结构体
}

// FileResult 单个文件的解析结果
type FileResult struct {
	Path        string
	PackageName string
	Imports     map[string]string // 别名/包名 → 导入路径
	Types       []*TypeDecl
	Methods     []*MethodDecl // 文件中所有带接收者的方法
}

// Result 扫描结果
type Result struct {
	Files []*FileResult
}

// TypeCount 返回扫描到的具名类型数量
func (r *Result) TypeCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, f := range r.Files {
		n += len(f.Types)
	}
	return n
}

// ResolveRef 根据文件导入表补全引用的包路径
// pkgPath 为当前文件所在包的命名空间，同包引用返回 pkgPath
func (f *FileResult) ResolveRef(ref Ref, pkgPath string) Ref {
	if ref.Package == "" {
		return Ref{Package: pkgPath, Name: ref.Name}
	}
	return ref
}
