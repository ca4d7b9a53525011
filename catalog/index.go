package catalog

import (
	"slices"
	"strings"

	"github.com/donutnomad/godiscover/annotation"
)

// TypeMatch 带有指定注解的类型
type TypeMatch struct {
	ID         string
	Type       *TypeInfo
	Annotation *annotation.Annotation
}

// MemberMatch 带有指定注解的方法或字段
type MemberMatch struct {
	ID         string // Type::Method 或 Type::$Field
	TypeID     string
	Member     string
	Type       *TypeInfo
	Line       int
	Annotation *annotation.Annotation
}

// FindTypesWith 返回带有注解 name 的类型（按标识符排序）
func (c *Catalog) FindTypesWith(name string) []TypeMatch {
	var matches []TypeMatch
	c.each(func(info *TypeInfo) {
		if ann := annotation.Get(info.Annotations, name); ann != nil {
			matches = append(matches, TypeMatch{ID: info.ID, Type: info, Annotation: ann})
		}
	})
	slices.SortFunc(matches, func(a, b TypeMatch) int { return strings.Compare(a.ID, b.ID) })
	return matches
}

// FindMethodsWith 返回带有注解 name 的方法
func (c *Catalog) FindMethodsWith(name string) []MemberMatch {
	var matches []MemberMatch
	c.each(func(info *TypeInfo) {
		if info.Kind == KindInterface {
			return
		}
		for _, m := range info.Methods {
			if ann := annotation.Get(m.Annotations, name); ann != nil {
				matches = append(matches, MemberMatch{
					ID:         MethodID(info.ID, m.Name),
					TypeID:     info.ID,
					Member:     m.Name,
					Type:       info,
					Line:       m.Line,
					Annotation: ann,
				})
			}
		}
	})
	sortMembers(matches)
	return matches
}

// FindPropertiesWith 返回带有注解 name 的结构体字段
func (c *Catalog) FindPropertiesWith(name string) []MemberMatch {
	var matches []MemberMatch
	c.each(func(info *TypeInfo) {
		for _, f := range info.Fields {
			if ann := annotation.Get(f.Annotations, name); ann != nil {
				matches = append(matches, MemberMatch{
					ID:         PropertyID(info.ID, f.Name),
					TypeID:     info.ID,
					Member:     f.Name,
					Type:       info,
					Line:       f.Line,
					Annotation: ann,
				})
			}
		}
	})
	sortMembers(matches)
	return matches
}

func (c *Catalog) each(fn func(info *TypeInfo)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, info := range c.types {
		fn(info)
	}
}

func sortMembers(matches []MemberMatch) {
	slices.SortFunc(matches, func(a, b MemberMatch) int {
		if a.TypeID != b.TypeID {
			return strings.Compare(a.TypeID, b.TypeID)
		}
		return a.Line - b.Line
	})
}
