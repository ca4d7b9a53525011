package strategy

import (
	"context"
	"sync"
)

// subtypeStrategy 接口实现/嵌入匹配的公共部分
//
// 默认（全局）模式遍历登记表中的全部类型；调用 Directories 后先用目录策略缩小候选集
type subtypeStrategy struct {
	prefix   string // 缓存键前缀与元数据键
	target   string
	registry Registry
	factory  *Factory
	match    func(id, target string) bool

	mu        sync.RWMutex
	directory *DirectoryStrategy
}

// Directories 切换到目录模式，需要 Factory
func (s *subtypeStrategy) Directories(paths ...string) error {
	if s.factory == nil {
		return ErrFactoryRequired
	}
	dir := s.factory.Directory(paths...)
	s.mu.Lock()
	s.directory = dir
	s.mu.Unlock()
	return nil
}

func (s *subtypeStrategy) Discover(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	dir := s.directory
	s.mu.RUnlock()

	var candidates []string
	if dir != nil {
		ids, err := dir.Discover(ctx)
		if err != nil {
			return nil, err
		}
		candidates = ids
	} else {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates = s.registry.All()
	}

	ids := make([]string, 0)
	for _, id := range candidates {
		if s.matches(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// matches 单个候选出错时视为不匹配
func (s *subtypeStrategy) matches(id string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return s.match(id, s.target)
}

func (s *subtypeStrategy) Metadata(id string) Metadata {
	s.mu.RLock()
	dir := s.directory
	s.mu.RUnlock()

	var m Metadata
	if dir != nil {
		m = dir.Metadata(id)
	} else {
		m = lookupMetadata(s.registry, id)
	}
	m[s.prefix] = s.target
	return m
}

// CacheKey 目录模式下包含目录策略的键，避免与全局模式冲突
func (s *subtypeStrategy) CacheKey() string {
	s.mu.RLock()
	dir := s.directory
	s.mu.RUnlock()

	if dir == nil {
		return s.prefix + ":" + Hash(s.target)
	}
	return s.prefix + ":" + Hash(s.target+"|"+dir.CacheKey())
}

// Directory 目录模式下的目录策略，全局模式为 nil
func (s *subtypeStrategy) Directory() *DirectoryStrategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.directory
}

// InterfaceStrategy 发现实现了指定接口的类型
type InterfaceStrategy struct {
	subtypeStrategy
}

// NewInterfaceStrategy factory 可以为 nil（只能使用全局模式）
func NewInterfaceStrategy(iface string, registry Registry, factory *Factory) *InterfaceStrategy {
	return &InterfaceStrategy{subtypeStrategy{
		prefix:   "interface",
		target:   iface,
		registry: registry,
		factory:  factory,
		match:    func(id, target string) bool { return registry.Implements(id, target) },
	}}
}

// ParentStrategy 发现（传递地）嵌入了指定类型的类型
type ParentStrategy struct {
	subtypeStrategy
}

// NewParentStrategy factory 可以为 nil（只能使用全局模式）
func NewParentStrategy(parent string, registry Registry, factory *Factory) *ParentStrategy {
	return &ParentStrategy{subtypeStrategy{
		prefix:   "parent",
		target:   parent,
		registry: registry,
		factory:  factory,
		match:    func(id, target string) bool { return registry.Extends(id, target) },
	}}
}
