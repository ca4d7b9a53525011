// Package catalog 维护已声明类型的显式登记表
//
// Go 无法在运行时枚举已声明的类型，因此"全局"发现依赖显式登记：
// 通过 Load 从源码扫描结果登记，或由 generate 命令生成的 RegisterTypes 函数登记。
package catalog

import (
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Catalog 类型登记表，并发安全
type Catalog struct {
	mu    sync.RWMutex
	types map[string]*TypeInfo
}

func New() *Catalog {
	return &Catalog{types: make(map[string]*TypeInfo)}
}

// Register 登记类型，相同 ID 后登记的覆盖先登记的
func (c *Catalog) Register(infos ...*TypeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, info := range infos {
		if info == nil || info.ID == "" {
			continue
		}
		c.types[info.ID] = info
	}
}

// Replace 用另一个登记表的内容整体替换当前内容
func (c *Catalog) Replace(other *Catalog) {
	other.mu.RLock()
	types := make(map[string]*TypeInfo, len(other.types))
	for id, info := range other.types {
		types[id] = info
	}
	other.mu.RUnlock()

	c.mu.Lock()
	c.types = types
	c.mu.Unlock()
}

// Lookup 查找类型
func (c *Catalog) Lookup(id string) (*TypeInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.types[id]
	return info, ok
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// All 返回全部类型标识符（有序）
func (c *Catalog) All() []string {
	c.mu.RLock()
	ids := lo.Keys(c.types)
	c.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types)
}

// Packages 返回登记的所有包导入路径（有序去重）
func (c *Catalog) Packages() []string {
	c.mu.RLock()
	pkgs := lo.Uniq(lo.MapToSlice(c.types, func(_ string, info *TypeInfo) string {
		return info.Package
	}))
	c.mu.RUnlock()
	slices.Sort(pkgs)
	return pkgs
}

// InFiles 返回声明在指定文件中的类型标识符
func (c *Catalog) InFiles(files ...string) []string {
	set := lo.SliceToMap(files, func(f string) (string, struct{}) { return f, struct{}{} })

	c.mu.RLock()
	var ids []string
	for id, info := range c.types {
		if _, ok := set[info.File]; ok {
			ids = append(ids, id)
		}
	}
	c.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// SplitID 将标识符拆分为导入路径和类型名
func SplitID(id string) (pkg, name string) {
	i := strings.LastIndex(id, ".")
	if i < 0 {
		return "", id
	}
	// 导入路径中的点只出现在最后一个 / 之前
	if slash := strings.LastIndex(id, "/"); slash > i {
		return "", id
	}
	return id[:i], id[i+1:]
}
