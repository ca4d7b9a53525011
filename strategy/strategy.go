// Package strategy 定义发现策略：按注解、目录、接口、嵌入（父类型）、方法注解、字段注解发现标识符
package strategy

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/donutnomad/godiscover/catalog"
	"github.com/donutnomad/godiscover/internal/errors"
)

var (
	// ErrFactoryRequired 未提供 Factory 时切换到目录模式
	ErrFactoryRequired = errors.New("目录模式需要 strategy.Factory")
	// ErrIndexUnavailable 基于注解的发现缺少注解索引
	ErrIndexUnavailable = errors.New("注解索引不可用")
)

// Metadata 标识符的元数据
//
// 常用键：id type file package kind attribute attributes interface parent member
type Metadata map[string]any

// Strategy 发现策略
// Discover 的错误只用于配置错误，数据缺失返回空列表
type Strategy interface {
	Discover(ctx context.Context) ([]string, error)
	Metadata(id string) Metadata
	CacheKey() string
}

// Registry 已声明类型的登记表
type Registry interface {
	Has(id string) bool
	All() []string
	Lookup(id string) (*catalog.TypeInfo, bool)
	Implements(id, iface string) bool
	Extends(id, parent string) bool
	Instantiable(id string) bool
}

// MetadataIndex 注解索引
type MetadataIndex interface {
	FindTypesWith(name string) []catalog.TypeMatch
	FindMethodsWith(name string) []catalog.MemberMatch
	FindPropertiesWith(name string) []catalog.MemberMatch
}

// Resolver 命名空间解析
type Resolver interface {
	ResolveFromFile(file, pattern string) (string, bool)
}

// Pather 能给出扫描目录的策略
type Pather interface {
	Directories() []string
}

// Hash 返回字符串的 xxhash 十六进制摘要
func Hash(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}

// typeMetadata 从登记信息构建类型元数据
func typeMetadata(id string, info *catalog.TypeInfo) Metadata {
	m := Metadata{"id": id}
	if info == nil {
		return m
	}
	m["type"] = info.Name
	m["file"] = info.File
	m["package"] = info.Package
	m["kind"] = info.Kind.String()
	m["attributes"] = info.Annotations
	return m
}

func lookupMetadata(registry Registry, id string) Metadata {
	info, _ := registry.Lookup(id)
	return typeMetadata(id, info)
}

// safeDiscover 将外部依赖中的 panic 视为空结果
func safeDiscover(fn func() []string) (ids []string) {
	defer func() {
		if recover() != nil {
			ids = []string{}
		}
	}()
	ids = fn()
	if ids == nil {
		ids = []string{}
	}
	return ids
}
