package strategy

import (
	"context"
	"sync"

	"github.com/donutnomad/godiscover/catalog"
)

// AttributeStrategy 发现带有指定注解的类型
type AttributeStrategy struct {
	name  string
	index MetadataIndex

	mu   sync.RWMutex
	last map[string]catalog.TypeMatch // 最近一次 Discover 的结果，供 Metadata 附加注解实例
}

func NewAttributeStrategy(name string, index MetadataIndex) *AttributeStrategy {
	return &AttributeStrategy{
		name:  name,
		index: index,
		last:  map[string]catalog.TypeMatch{},
	}
}

func (s *AttributeStrategy) Discover(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	last := make(map[string]catalog.TypeMatch)
	ids := safeDiscover(func() []string {
		var ids []string
		for _, match := range s.index.FindTypesWith(s.name) {
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

func (s *AttributeStrategy) Metadata(id string) Metadata {
	s.mu.RLock()
	match, ok := s.last[id]
	s.mu.RUnlock()
	if !ok {
		return Metadata{"id": id}
	}

	m := typeMetadata(id, match.Type)
	m["attribute"] = match.Annotation
	return m
}

func (s *AttributeStrategy) CacheKey() string {
	return "attribute:" + Hash(s.name)
}

// Attribute 注解名称
func (s *AttributeStrategy) Attribute() string {
	return s.name
}
