// Package registrygen 生成类型登记代码
//
// 生成的 RegisterTypes 函数把扫描得到的类型直接写入 catalog.Catalog，
// 运行时无需再扫描源码：
//
//	c := catalog.New()
//	registry.RegisterTypes(c)
//	m, err := discovery.New(ctx, cfg, discovery.WithCatalog(c))
package registrygen

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/donutnomad/gg"
	"github.com/donutnomad/godiscover/annotation"
	"github.com/donutnomad/godiscover/catalog"
	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/samber/lo"
	"golang.org/x/tools/imports"
)

const (
	catalogPath    = "github.com/donutnomad/godiscover/catalog"
	annotationPath = "github.com/donutnomad/godiscover/annotation"

	// FuncName 生成的函数名
	FuncName = "RegisterTypes"
	header   = "// Code generated by godiscover generate. DO NOT EDIT.\n\n"
)

// Generate 生成包含 RegisterTypes 的源码（已格式化）
func Generate(packageName string, types []*catalog.TypeInfo) ([]byte, error) {
	if packageName == "" {
		return nil, errors.New("registrygen: 包名不能为空")
	}

	gen := gg.New()
	gen.SetPackage(packageName)
	catPkg := gen.P(catalogPath)

	needAnnotations := lo.SomeBy(types, hasAnnotations)
	annAlias := "annotation"
	if needAnnotations {
		annAlias = gen.P(annotationPath).Alias()
	}
	w := literalWriter{catalog: catPkg.Alias(), annotation: annAlias}

	lines := make([]any, 0, len(types)+2)
	if len(types) > 0 {
		lines = append(lines, gg.String("c.Register("))
		for _, info := range types {
			lines = append(lines, gg.String("\t%s,", w.typeInfo(info)))
		}
		lines = append(lines, gg.String(")"))
	}

	body := gen.Body()
	body.Append(gg.LineComment("%s 登记 %d 个类型", FuncName, len(types)))
	body.NewFunction(FuncName).
		AddParameter("c", catPkg.Ptr("Catalog")).
		AddBody(lines...)

	src := append([]byte(header), gen.Bytes()...)
	formatted, err := imports.Process("registry_gen.go", src, nil)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "registrygen: 格式化生成代码失败")
	}
	return formatted, nil
}

// WriteFile 生成并写入文件
func WriteFile(path, packageName string, types []*catalog.TypeInfo) error {
	code, err := Generate(packageName, types)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WithStackTrace(err)
	}
	return errors.WithStackTrace(os.WriteFile(path, code, 0o644))
}

func hasAnnotations(info *catalog.TypeInfo) bool {
	if len(info.Annotations) > 0 {
		return true
	}
	return lo.SomeBy(info.Fields, func(f catalog.FieldInfo) bool { return len(f.Annotations) > 0 }) ||
		lo.SomeBy(info.Methods, func(m catalog.MethodInfo) bool { return len(m.Annotations) > 0 })
}

// literalWriter 输出复合字面量
type literalWriter struct {
	catalog    string
	annotation string
}

func (w literalWriter) typeInfo(info *catalog.TypeInfo) string {
	var b fieldList
	b.add("ID", strconv.Quote(info.ID))
	b.add("Name", strconv.Quote(info.Name))
	b.add("Package", strconv.Quote(info.Package))
	b.addString("PackageName", info.PackageName)
	b.addString("File", filepath.ToSlash(info.File))
	if info.Line > 0 {
		b.add("Line", strconv.Itoa(info.Line))
	}
	b.add("Kind", w.catalog+"."+kindName(info.Kind))
	if info.Generic {
		b.add("Generic", "true")
	}
	if info.Abstract {
		b.add("Abstract", "true")
	}
	if len(info.Embeds) > 0 {
		b.add("Embeds", "[]string{"+strings.Join(lo.Map(info.Embeds, func(s string, _ int) string { return strconv.Quote(s) }), ", ")+"}")
	}
	if len(info.Annotations) > 0 {
		b.add("Annotations", w.annotations(info.Annotations))
	}
	if len(info.Fields) > 0 {
		fields := lo.Map(info.Fields, func(f catalog.FieldInfo, _ int) string { return w.field(f) })
		b.add("Fields", "[]"+w.catalog+".FieldInfo{"+strings.Join(fields, ", ")+"}")
	}
	if len(info.Methods) > 0 {
		methods := lo.Map(info.Methods, func(m catalog.MethodInfo, _ int) string { return w.method(m) })
		b.add("Methods", "[]"+w.catalog+".MethodInfo{"+strings.Join(methods, ", ")+"}")
	}
	return "&" + w.catalog + ".TypeInfo{" + b.String() + "}"
}

func (w literalWriter) field(f catalog.FieldInfo) string {
	var b fieldList
	b.add("Name", strconv.Quote(f.Name))
	b.addString("Type", f.Type)
	b.addString("Tag", f.Tag)
	if f.Embedded {
		b.add("Embedded", "true")
	}
	if f.Line > 0 {
		b.add("Line", strconv.Itoa(f.Line))
	}
	if len(f.Annotations) > 0 {
		b.add("Annotations", w.annotations(f.Annotations))
	}
	return "{" + b.String() + "}"
}

func (w literalWriter) method(m catalog.MethodInfo) string {
	var b fieldList
	b.add("Name", strconv.Quote(m.Name))
	b.add("Signature", strconv.Quote(m.Signature))
	if m.PointerReceiver {
		b.add("PointerReceiver", "true")
	}
	if m.Line > 0 {
		b.add("Line", strconv.Itoa(m.Line))
	}
	if len(m.Annotations) > 0 {
		b.add("Annotations", w.annotations(m.Annotations))
	}
	return "{" + b.String() + "}"
}

func (w literalWriter) annotations(anns []*annotation.Annotation) string {
	items := make([]string, 0, len(anns))
	for _, ann := range anns {
		if ann == nil {
			continue
		}
		var b fieldList
		b.add("Name", strconv.Quote(ann.Name))
		if len(ann.Params) > 0 {
			keys := lo.Keys(ann.Params)
			slices.Sort(keys)
			pairs := lo.Map(keys, func(k string, _ int) string {
				return strconv.Quote(k) + ": " + strconv.Quote(ann.Params[k])
			})
			b.add("Params", "map[string]string{"+strings.Join(pairs, ", ")+"}")
		} else {
			b.add("Params", "map[string]string{}")
		}
		b.addString("Raw", ann.Raw)
		items = append(items, "{"+b.String()+"}")
	}
	return "[]*" + w.annotation + ".Annotation{" + strings.Join(items, ", ") + "}"
}

func kindName(k catalog.Kind) string {
	switch k {
	case catalog.KindStruct:
		return "KindStruct"
	case catalog.KindInterface:
		return "KindInterface"
	default:
		return "KindOther"
	}
}

type fieldList []string

func (l *fieldList) add(name, value string) {
	*l = append(*l, fmt.Sprintf("%s: %s", name, value))
}

// addString 空字符串省略
func (l *fieldList) addString(name, value string) {
	if value != "" {
		l.add(name, strconv.Quote(value))
	}
}

func (l fieldList) String() string {
	return strings.Join(l, ", ")
}
