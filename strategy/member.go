package strategy

import (
	"context"
	"sync"

	"github.com/donutnomad/godiscover/catalog"
)

// memberStrategy 方法/字段注解发现的公共部分
type memberStrategy struct {
	kind string // method | property
	name string
	find func(name string) []catalog.MemberMatch

	mu   sync.RWMutex
	last map[string]catalog.MemberMatch
}

func (s *memberStrategy) Discover(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	last := make(map[string]catalog.MemberMatch)
	ids := safeDiscover(func() []string {
		var ids []string
		for _, match := range s.find(s.name) {
			last[match.ID] = match
			ids = append(ids, match.ID)
		}
		return ids
	})

	s.mu.Lock()
	s.last = last
	s.mu.Unlock()
	return ids, nil
}

func (s *memberStrategy) Metadata(id string) Metadata {
	s.mu.RLock()
	match, ok := s.last[id]
	s.mu.RUnlock()
	if !ok {
		return Metadata{"id": id}
	}

	m := typeMetadata(id, match.Type)
	// kind 表示成员种类，类型种类放在 type_kind
	if match.Type != nil {
		m["type_kind"] = match.Type.Kind.String()
	}
	m["kind"] = s.kind
	m["class"] = match.TypeID
	m["member"] = match.Member
	m["line"] = match.Line
	m["attribute"] = match.Annotation
	return m
}

func (s *memberStrategy) CacheKey() string {
	return s.kind + ":" + Hash(s.name)
}

// MethodStrategy 发现带有指定注解的方法，标识符形如 Type::Method
type MethodStrategy struct {
	memberStrategy
}

func NewMethodStrategy(name string, index MetadataIndex) *MethodStrategy {
	return &MethodStrategy{memberStrategy{
		kind: "method",
		name: name,
		find: func(n string) []catalog.MemberMatch { return index.FindMethodsWith(n) },
		last: map[string]catalog.MemberMatch{},
	}}
}

// PropertyStrategy 发现带有指定注解的结构体字段，标识符形如 Type::$Field
type PropertyStrategy struct {
	memberStrategy
}

func NewPropertyStrategy(name string, index MetadataIndex) *PropertyStrategy {
	return &PropertyStrategy{memberStrategy{
		kind: "property",
		name: name,
		find: func(n string) []catalog.MemberMatch { return index.FindPropertiesWith(n) },
		last: map[string]catalog.MemberMatch{},
	}}
}
