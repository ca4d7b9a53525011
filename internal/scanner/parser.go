package scanner

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"strconv"
	"strings"

	"github.com/donutnomad/godiscover/annotation"
	"github.com/donutnomad/godiscover/internal/errors"
)

// ParseFile AST 解析单个文件
func ParseFile(filePath string) (*FileResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "解析文件 %s 失败", filePath)
	}

	result := &FileResult{
		Path:        filePath,
		PackageName: file.Name.Name,
		Imports:     extractImports(file),
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok == token.TYPE {
				result.Types = append(result.Types, parseTypeDecl(fset, result, d)...)
			}
		case *ast.FuncDecl:
			if m := parseMethodDecl(fset, d); m != nil {
				result.Methods = append(result.Methods, m)
			}
		}
	}

	return result, nil
}

// extractImports 提取文件导入表，key 为别名或路径最后一段
func extractImports(file *ast.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		alias := path.Base(importPath)
		if imp.Name != nil {
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				continue
			}
			alias = imp.Name.Name
		}
		imports[alias] = importPath
	}
	return imports
}

// docAnnotations 合并 GenDecl 与 TypeSpec 上的注释注解
func docAnnotations(groups ...*ast.CommentGroup) []*annotation.Annotation {
	var result []*annotation.Annotation
	for _, g := range groups {
		if g != nil {
			result = append(result, annotation.Parse(g.Text())...)
		}
	}
	return result
}

// parseTypeDecl 解析类型声明
func parseTypeDecl(fset *token.FileSet, file *FileResult, decl *ast.GenDecl) []*TypeDecl {
	var types []*TypeDecl

	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		// 单个 type 声明时注释挂在 GenDecl 上，分组声明时挂在 TypeSpec 上
		var groups []*ast.CommentGroup
		if len(decl.Specs) == 1 {
			groups = append(groups, decl.Doc)
		}
		groups = append(groups, typeSpec.Doc)

		td := &TypeDecl{
			Name:        typeSpec.Name.Name,
			Generic:     typeSpec.TypeParams != nil && len(typeSpec.TypeParams.List) > 0,
			Alias:       typeSpec.Assign.IsValid(),
			Line:        fset.Position(typeSpec.Pos()).Line,
			Annotations: docAnnotations(groups...),
		}

		switch t := typeSpec.Type.(type) {
		case *ast.StructType:
			td.Kind = KindStruct
			td.Fields, td.Embeds = parseStructFields(fset, file, t)
		case *ast.InterfaceType:
			td.Kind = KindInterface
			td.Methods, td.Embeds = parseInterfaceMethods(fset, file, td.Name, t)
		default:
			td.Kind = KindOther
		}

		types = append(types, td)
	}

	return types
}

// parseStructFields 解析结构体字段与嵌入类型
func parseStructFields(fset *token.FileSet, file *FileResult, st *ast.StructType) ([]*FieldDecl, []Ref) {
	var fields []*FieldDecl
	var embeds []Ref

	if st.Fields == nil {
		return nil, nil
	}

	for _, field := range st.Fields.List {
		var tag string
		if field.Tag != nil {
			tag, _ = strconv.Unquote(field.Tag.Value)
		}
		anns := docAnnotations(field.Doc, field.Comment)
		typeStr := exprString(field.Type, true)
		line := fset.Position(field.Pos()).Line

		if len(field.Names) == 0 {
			ref, ok := typeRef(file, field.Type)
			if !ok {
				continue
			}
			embeds = append(embeds, ref)
			fields = append(fields, &FieldDecl{
				Name:        ref.Name,
				Type:        typeStr,
				Tag:         tag,
				Embedded:    true,
				Line:        line,
				Annotations: anns,
			})
			continue
		}

		for _, name := range field.Names {
			fields = append(fields, &FieldDecl{
				Name:        name.Name,
				Type:        typeStr,
				Tag:         tag,
				Line:        line,
				Annotations: anns,
			})
		}
	}

	return fields, embeds
}

// parseInterfaceMethods 解析接口方法与嵌入接口
func parseInterfaceMethods(fset *token.FileSet, file *FileResult, ifaceName string, it *ast.InterfaceType) ([]*MethodDecl, []Ref) {
	var methods []*MethodDecl
	var embeds []Ref

	if it.Methods == nil {
		return nil, nil
	}

	for _, m := range it.Methods.List {
		ft, isFunc := m.Type.(*ast.FuncType)
		if !isFunc || len(m.Names) == 0 {
			// 嵌入接口；类型约束（~int | string）被忽略
			if ref, ok := typeRef(file, m.Type); ok {
				embeds = append(embeds, ref)
			}
			continue
		}
		for _, name := range m.Names {
			methods = append(methods, &MethodDecl{
				Name:        name.Name,
				Receiver:    ifaceName,
				Signature:   signature(ft),
				Line:        fset.Position(m.Pos()).Line,
				Annotations: docAnnotations(m.Doc, m.Comment),
			})
		}
	}

	return methods, embeds
}

// parseMethodDecl 解析带接收者的方法，包级函数返回 nil
func parseMethodDecl(fset *token.FileSet, decl *ast.FuncDecl) *MethodDecl {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return nil
	}

	recvType := decl.Recv.List[0].Type
	pointer := false
	if star, ok := recvType.(*ast.StarExpr); ok {
		pointer = true
		recvType = star.X
	}
	// 去掉类型参数 T[K] / T[K, V]
	switch e := recvType.(type) {
	case *ast.IndexExpr:
		recvType = e.X
	case *ast.IndexListExpr:
		recvType = e.X
	}
	ident, ok := recvType.(*ast.Ident)
	if !ok {
		return nil
	}

	var anns []*annotation.Annotation
	if decl.Doc != nil {
		anns = annotation.Parse(decl.Doc.Text())
	}

	return &MethodDecl{
		Name:            decl.Name.Name,
		Receiver:        ident.Name,
		PointerReceiver: pointer,
		Signature:       signature(decl.Type),
		Line:            fset.Position(decl.Pos()).Line,
		Annotations:     anns,
	}
}

// typeRef 将嵌入字段的类型表达式转换为引用
func typeRef(file *FileResult, expr ast.Expr) (Ref, bool) {
	switch e := expr.(type) {
	case *ast.Ident:
		return Ref{Name: e.Name}, true
	case *ast.StarExpr:
		return typeRef(file, e.X)
	case *ast.IndexExpr:
		return typeRef(file, e.X)
	case *ast.IndexListExpr:
		return typeRef(file, e.X)
	case *ast.SelectorExpr:
		pkg, ok := e.X.(*ast.Ident)
		if !ok {
			return Ref{}, false
		}
		importPath, found := file.Imports[pkg.Name]
		if !found {
			importPath = pkg.Name
		}
		return Ref{Package: importPath, Name: e.Sel.Name}, true
	default:
		return Ref{}, false
	}
}

// signature 生成去掉包限定符的方法签名，用于方法集比较
// 例如 func(ctx context.Context, id string) error → (Context,string)(error)
func signature(ft *ast.FuncType) string {
	return "(" + fieldListString(ft.Params) + ")(" + fieldListString(ft.Results) + ")"
}

func fieldListString(fl *ast.FieldList) string {
	if fl == nil {
		return ""
	}
	var parts []string
	for _, f := range fl.List {
		t := exprString(f.Type, false)
		n := len(f.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ",")
}

// exprString 将类型表达式转换为字符串
// qualified 为 false 时去掉包限定符
func exprString(expr ast.Expr, qualified bool) string {
	switch e := expr.(type) {
	case nil:
		return ""
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return "*" + exprString(e.X, qualified)
	case *ast.SelectorExpr:
		if qualified {
			return exprString(e.X, qualified) + "." + e.Sel.Name
		}
		return e.Sel.Name
	case *ast.ArrayType:
		if e.Len == nil {
			return "[]" + exprString(e.Elt, qualified)
		}
		return "[" + exprString(e.Len, qualified) + "]" + exprString(e.Elt, qualified)
	case *ast.BasicLit:
		return e.Value
	case *ast.Ellipsis:
		return "..." + exprString(e.Elt, qualified)
	case *ast.MapType:
		return "map[" + exprString(e.Key, qualified) + "]" + exprString(e.Value, qualified)
	case *ast.ChanType:
		switch e.Dir {
		case ast.SEND:
			return "chan<- " + exprString(e.Value, qualified)
		case ast.RECV:
			return "<-chan " + exprString(e.Value, qualified)
		default:
			return "chan " + exprString(e.Value, qualified)
		}
	case *ast.FuncType:
		return "func" + signature(e)
	case *ast.InterfaceType:
		return "interface{}"
	case *ast.StructType:
		return "struct{}"
	case *ast.IndexExpr:
		return exprString(e.X, qualified) + "[" + exprString(e.Index, qualified) + "]"
	case *ast.IndexListExpr:
		args := make([]string, len(e.Indices))
		for i, idx := range e.Indices {
			args[i] = exprString(idx, qualified)
		}
		return exprString(e.X, qualified) + "[" + strings.Join(args, ",") + "]"
	case *ast.ParenExpr:
		return exprString(e.X, qualified)
	default:
		return ""
	}
}
