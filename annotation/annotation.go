package annotation

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// annotationRegex 匹配注解 @Name 或 @Name(params)
var annotationRegex = regexp.MustCompile(`@(\w+)(?:\(([^)]*)\))?`)

// paramRegex 匹配参数:
// - key=`value` (反引号格式)
// - key="value" (双引号格式)
// - key=value (普通格式)
var paramRegex = regexp.MustCompile("(\\w+)\\s*=\\s*`([^`]*)`|(\\w+)\\s*=\\s*\"([^\"]*)\"|(\\w+)\\s*=\\s*([^,\\s]+)")

// Annotation 表示解析后的注解
type Annotation struct {
	Name   string            // 注解名称，如 "Card", "Route"
	Params map[string]string // 注解参数，key 统一小写
	Raw    string            // 原始注解文本
}

// Parse 从注释文本中解析所有注解
func Parse(comment string) []*Annotation {
	var annotations []*Annotation

	for _, line := range strings.Split(comment, "\n") {
		// 去除注释前缀
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)

		for _, match := range annotationRegex.FindAllStringSubmatch(line, -1) {
			ann := &Annotation{
				Name:   match[1],
				Params: make(map[string]string),
				Raw:    match[0],
			}
			if len(match) > 2 && match[2] != "" {
				ann.Params = parseParams(match[2])
			}
			annotations = append(annotations, ann)
		}
	}

	return annotations
}

// parseParams 解析注解参数
func parseParams(content string) map[string]string {
	params := make(map[string]string)

	for _, match := range paramRegex.FindAllStringSubmatch(content, -1) {
		var key, value string
		switch {
		case match[1] != "":
			key, value = match[1], match[2]
		case match[3] != "":
			key, value = match[3], match[4]
		case match[5] != "":
			key, value = match[5], match[6]
		}
		if key != "" {
			params[strings.ToLower(key)] = value
		}
	}

	return params
}

// FilterByNames 过滤指定名称的注解
func FilterByNames(annotations []*Annotation, names ...string) []*Annotation {
	if len(names) == 0 {
		return annotations
	}
	return lo.Filter(annotations, func(ann *Annotation, _ int) bool {
		return lo.Contains(names, ann.Name)
	})
}

// Has 检查是否包含指定注解
func Has(annotations []*Annotation, name string) bool {
	return Get(annotations, name) != nil
}

// Get 获取指定名称的注解
func Get(annotations []*Annotation, name string) *Annotation {
	ann, _ := lo.Find(annotations, func(a *Annotation) bool {
		return a.Name == name
	})
	return ann
}

// Param 获取注解参数
func (a *Annotation) Param(key string) string {
	return a.Params[strings.ToLower(key)]
}

// ParamOr 获取注解参数，如果不存在返回默认值
func (a *Annotation) ParamOr(key, defaultValue string) string {
	if v, ok := a.Params[strings.ToLower(key)]; ok {
		return v
	}
	return defaultValue
}

// HasParam 检查是否有指定参数
func (a *Annotation) HasParam(key string) bool {
	_, ok := a.Params[strings.ToLower(key)]
	return ok
}

// Value 返回参数原始值，第二个返回值表示参数是否存在
func (a *Annotation) Value(key string) (string, bool) {
	if a == nil {
		return "", false
	}
	v, ok := a.Params[strings.ToLower(key)]
	return v, ok
}

// List 将参数值按数组解析
// 支持: a|b|c、`a,b`、[a,b]
func (a *Annotation) List(key string) []string {
	v, ok := a.Value(key)
	if !ok {
		return nil
	}
	return SplitList(v)
}

// SplitList 将数组形式的参数值拆分为元素列表
func SplitList(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "[")
	value = strings.TrimSuffix(value, "]")
	if value == "" {
		return nil
	}

	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == '|' || r == ','
	})
	parts = lo.Map(parts, func(p string, _ int) string {
		return strings.Trim(strings.TrimSpace(p), `"'`)
	})
	return lo.Compact(parts)
}

// Clone 返回注解的深拷贝
func (a *Annotation) Clone() *Annotation {
	if a == nil {
		return nil
	}
	params := make(map[string]string, len(a.Params))
	for k, v := range a.Params {
		params[k] = v
	}
	return &Annotation{Name: a.Name, Params: params, Raw: a.Raw}
}
