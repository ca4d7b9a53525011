package catalog

import (
	"context"

	"github.com/donutnomad/godiscover/annotation"
	"github.com/donutnomad/godiscover/internal/scanner"
)

// NamespaceResolver 将文件解析为所在包的导入路径
type NamespaceResolver interface {
	ResolveFromFile(file, pattern string) (string, bool)
}

// Build 扫描源码并登记其中声明的全部类型
func Build(ctx context.Context, sc *scanner.Scanner, resolver NamespaceResolver, patterns ...string) (*Catalog, error) {
	result, err := sc.Scan(ctx, patterns...)
	if err != nil {
		return nil, err
	}
	c := New()
	c.Load(result, resolver)
	return c, nil
}

// Load 用扫描结果替换登记表内容，返回无法解析命名空间而被跳过的文件数
func (c *Catalog) Load(result *scanner.Result, resolver NamespaceResolver) (skipped int) {
	types := make(map[string]*TypeInfo)
	namespaces := make(map[string]string, len(result.Files))

	for _, file := range result.Files {
		ns, ok := resolver.ResolveFromFile(file.Path, "")
		if !ok {
			skipped++
			continue
		}
		namespaces[file.Path] = ns

		for _, decl := range file.Types {
			info := fromDecl(file, ns, decl)
			types[info.ID] = info
		}
	}

	// 方法可能声明在同包的其他文件中
	for _, file := range result.Files {
		ns, ok := namespaces[file.Path]
		if !ok {
			continue
		}
		for _, m := range file.Methods {
			info, ok := types[ns+"."+m.Receiver]
			if !ok || info.Kind == KindInterface {
				continue
			}
			info.Methods = append(info.Methods, methodInfo(m))
		}
	}

	c.mu.Lock()
	c.types = types
	c.mu.Unlock()
	return skipped
}

func fromDecl(file *scanner.FileResult, ns string, decl *scanner.TypeDecl) *TypeInfo {
	info := &TypeInfo{
		ID:          ns + "." + decl.Name,
		Name:        decl.Name,
		Package:     ns,
		PackageName: file.PackageName,
		File:        file.Path,
		Line:        decl.Line,
		Kind:        kindOf(decl.Kind),
		Generic:     decl.Generic,
		Abstract:    annotation.Has(decl.Annotations, AbstractAnnotation),
		Annotations: decl.Annotations,
	}

	for _, ref := range decl.Embeds {
		resolved := file.ResolveRef(ref, ns)
		info.Embeds = append(info.Embeds, resolved.Package+"."+resolved.Name)
	}
	for _, f := range decl.Fields {
		info.Fields = append(info.Fields, FieldInfo{
			Name:        f.Name,
			Type:        f.Type,
			Tag:         f.Tag,
			Embedded:    f.Embedded,
			Line:        f.Line,
			Annotations: f.Annotations,
		})
	}
	for _, m := range decl.Methods {
		info.Methods = append(info.Methods, methodInfo(m))
	}
	return info
}

func methodInfo(m *scanner.MethodDecl) MethodInfo {
	return MethodInfo{
		Name:            m.Name,
		Signature:       m.Signature,
		PointerReceiver: m.PointerReceiver,
		Line:            m.Line,
		Annotations:     m.Annotations,
	}
}

func kindOf(k scanner.Kind) Kind {
	switch k {
	case scanner.KindStruct:
		return KindStruct
	case scanner.KindInterface:
		return KindInterface
	default:
		return KindOther
	}
}
