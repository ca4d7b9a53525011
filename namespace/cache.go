package namespace

import "sync"

// moduleInfo 目录所属模块
type moduleInfo struct {
	path string // go.mod 中的模块路径
	root string // go.mod 所在目录
}

// moduleCache 目录 → 模块信息缓存
type moduleCache struct {
	mu      sync.RWMutex
	entries map[string]moduleInfo
}

func newModuleCache() *moduleCache {
	return &moduleCache{entries: make(map[string]moduleInfo)}
}

func (c *moduleCache) get(dir string) (moduleInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.entries[dir]
	return info, ok
}

func (c *moduleCache) set(dir string, info moduleInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dir] = info
}

// reset 清空缓存（go.mod 变更后调用）
func (c *moduleCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]moduleInfo)
}
