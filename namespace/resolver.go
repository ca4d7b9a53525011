// Package namespace 将源文件路径解析为 Go 包的导入路径（命名空间）
//
// 解析顺序：
//
//	自定义模式（{package} {module} {namespace} {class} 占位符）
//	.../<packages>/{package}[/src]/{rest}
//	.../<modules>/{module}[/src]/{rest}
//	.../<app>/{rest}
//	最近的 go.mod 模块路径 + 相对目录
package namespace

import (
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/mod/module"
)

// Shape 单仓多包目录约定
type Shape struct {
	Path      string // 相对目录名，如 packages、libs/modules
	Namespace string // 命名空间模板，如 example.com/acme/{package}；为空时跳过该约定
}

// Config 解析器配置
type Config struct {
	Packages Shape
	Modules  Shape
	App      Shape
}

// DefaultConfig 默认目录名，命名空间模板为空（仅使用 go.mod 解析）
func DefaultConfig() Config {
	return Config{
		Packages: Shape{Path: "packages"},
		Modules:  Shape{Path: "modules"},
		App:      Shape{Path: "app"},
	}
}

// Resolver 命名空间解析器
type Resolver struct {
	cfg     Config
	modules *moduleCache
}

func New(cfg Config) *Resolver {
	return &Resolver{
		cfg:     cfg,
		modules: newModuleCache(),
	}
}

// Reset 清空 go.mod 查找缓存
func (r *Resolver) Reset() {
	r.modules.reset()
}

var placeholderRegex = regexp.MustCompile(`\{(\w+)\}`)

// ResolveFromFile 返回文件所在包的命名空间
// 任意失败都返回 ("", false)，不会返回残缺的结果
func (r *Resolver) ResolveFromFile(file, pattern string) (ns string, ok bool) {
	defer func() {
		if recover() != nil {
			ns, ok = "", false
		}
	}()

	if file == "" || !strings.HasSuffix(file, ".go") {
		return "", false
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", false
	}
	dir := filepath.Dir(abs)
	segs := splitPath(dir)

	if pattern != "" {
		ns, ok = substitute(pattern, r.placeholders(abs, dir, segs))
	} else {
		ns, ok = r.resolveDefault(dir, segs)
	}
	if !ok {
		return "", false
	}

	ns = path.Clean(ns)
	if module.CheckImportPath(ns) != nil {
		return "", false
	}
	return ns, true
}

// ResolveType 返回类型的完整标识符 <命名空间>.<类型名>
func (r *Resolver) ResolveType(file, typeName, pattern string) (string, bool) {
	if typeName == "" {
		return "", false
	}
	ns, ok := r.ResolveFromFile(file, pattern)
	if !ok {
		return "", false
	}
	return ns + "." + typeName, true
}

// resolveDefault 按约定顺序解析，最后回退到 go.mod
func (r *Resolver) resolveDefault(dir string, segs []string) (string, bool) {
	shapes := []struct {
		shape       Shape
		named       bool
		placeholder string
	}{
		{r.cfg.Packages, true, "{package}"},
		{r.cfg.Modules, true, "{module}"},
		{r.cfg.App, false, ""},
	}

	for _, s := range shapes {
		if s.shape.Namespace == "" {
			continue
		}
		name, rest, ok := matchShape(segs, s.shape.Path, s.named)
		if !ok {
			continue
		}
		ns := s.shape.Namespace
		if s.named {
			if !strings.Contains(ns, s.placeholder) {
				ns += "/" + name
			} else {
				ns = strings.ReplaceAll(ns, s.placeholder, name)
			}
		}
		return joinNamespace(ns, rest), true
	}

	info, err := r.findModule(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(info.root, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if rel == "." {
		return info.path, true
	}
	return joinNamespace(info.path, splitPath(rel)), true
}

// placeholders 计算自定义模式中各占位符的值，无法确定的占位符不出现在结果中
func (r *Resolver) placeholders(file, dir string, segs []string) map[string]string {
	vars := map[string]string{
		"class": strings.TrimSuffix(filepath.Base(file), ".go"),
	}

	var restSet bool
	if name, rest, ok := matchShape(segs, r.cfg.Packages.Path, true); ok {
		vars["package"] = name
		vars["namespace"] = strings.Join(rest, "/")
		restSet = true
	}
	if name, rest, ok := matchShape(segs, r.cfg.Modules.Path, true); ok {
		vars["module"] = name
		if !restSet {
			vars["namespace"] = strings.Join(rest, "/")
			restSet = true
		}
	}
	if !restSet {
		if _, rest, ok := matchShape(segs, r.cfg.App.Path, false); ok {
			vars["namespace"] = strings.Join(rest, "/")
			restSet = true
		}
	}
	if !restSet {
		if info, err := r.findModule(dir); err == nil {
			if rel, err := filepath.Rel(info.root, dir); err == nil && !strings.HasPrefix(rel, "..") {
				vars["namespace"] = strings.Join(splitPath(rel), "/")
			}
		}
	}
	return vars
}

// substitute 替换占位符，存在无法解析的占位符时返回 false
func substitute(pattern string, vars map[string]string) (string, bool) {
	resolved := true
	out := placeholderRegex.ReplaceAllStringFunc(pattern, func(m string) string {
		v, ok := vars[strings.ToLower(m[1:len(m)-1])]
		if !ok {
			resolved = false
		}
		return v
	})
	if !resolved {
		return "", false
	}
	return out, true
}

// matchShape 在路径段中查找约定目录（取最靠后的一次出现）
// named 为 true 时其后第一段为包名/模块名；随后可选的 src 段被跳过
func matchShape(segs []string, shapePath string, named bool) (string, []string, bool) {
	shapeSegs := splitPath(shapePath)
	if len(shapeSegs) == 0 {
		return "", nil, false
	}

	for i := len(segs) - len(shapeSegs); i >= 0; i-- {
		if !slices.Equal(segs[i:i+len(shapeSegs)], shapeSegs) {
			continue
		}
		after := segs[i+len(shapeSegs):]
		var name string
		if named {
			if len(after) == 0 {
				return "", nil, false
			}
			name, after = after[0], after[1:]
		}
		if len(after) > 0 && after[0] == "src" {
			after = after[1:]
		}
		return name, after, true
	}
	return "", nil, false
}

func joinNamespace(ns string, rest []string) string {
	if len(rest) == 0 {
		return ns
	}
	return ns + "/" + strings.Join(rest, "/")
}

func splitPath(p string) []string {
	var segs []string
	for _, s := range strings.Split(filepath.ToSlash(p), "/") {
		if s != "" && s != "." {
			segs = append(segs, s)
		}
	}
	return segs
}
