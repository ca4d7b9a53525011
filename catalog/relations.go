package catalog

import "maps"

// builtinError 内置 error 接口的方法集
var builtinError = map[string]string{"Error": "()(string)"}

// Instantiable 类型是否可直接构造，未知类型返回 false
func (c *Catalog) Instantiable(id string) bool {
	info, ok := c.Lookup(id)
	return ok && info.Instantiable()
}

// Extends 判断 id 是否（传递地）嵌入了 parent，不包含 parent 自身
// parent 未登记时总是返回 false
func (c *Catalog) Extends(id, parent string) bool {
	if id == parent || !c.Has(parent) {
		return false
	}
	info, ok := c.Lookup(id)
	if !ok {
		return false
	}

	visited := map[string]bool{id: true}
	queue := append([]string(nil), info.Embeds...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == parent {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		if embedded, ok := c.Lookup(current); ok {
			queue = append(queue, embedded.Embeds...)
		}
	}
	return false
}

// Implements 判断 id 的方法集是否覆盖接口 iface 的方法集
// 方法集包含指针接收者方法和经嵌入提升的方法；接口嵌入传递展开
func (c *Catalog) Implements(id, iface string) bool {
	if id == iface {
		return false
	}
	ifaceInfo, ok := c.Lookup(iface)
	if !ok || ifaceInfo.Kind != KindInterface {
		return false
	}
	info, ok := c.Lookup(id)
	if !ok {
		return false
	}

	required, complete := c.interfaceMethods(iface, map[string]bool{})
	if !complete {
		return false
	}

	have := c.methodSet(info.ID, map[string]bool{})
	for name, sig := range required {
		if have[name] != sig {
			return false
		}
	}
	return true
}

// interfaceMethods 展开接口方法集；嵌入了未登记的接口时 complete 为 false
func (c *Catalog) interfaceMethods(id string, visited map[string]bool) (methods map[string]string, complete bool) {
	methods = make(map[string]string)
	if visited[id] {
		return methods, true
	}
	visited[id] = true

	if isBuiltinError(id) {
		return maps.Clone(builtinError), true
	}

	info, ok := c.Lookup(id)
	if !ok || info.Kind != KindInterface {
		return methods, false
	}

	complete = true
	for _, m := range info.Methods {
		methods[m.Name] = m.Signature
	}
	for _, embed := range info.Embeds {
		sub, ok := c.interfaceMethods(embed, visited)
		if !ok {
			complete = false
		}
		for name, sig := range sub {
			if _, exists := methods[name]; !exists {
				methods[name] = sig
			}
		}
	}
	return methods, complete
}

// methodSet 计算类型的方法集（名称 → 签名），外层声明优先于提升的方法
func (c *Catalog) methodSet(id string, visited map[string]bool) map[string]string {
	set := make(map[string]string)
	if visited[id] {
		return set
	}
	visited[id] = true

	info, ok := c.Lookup(id)
	if !ok {
		if isBuiltinError(id) {
			return maps.Clone(builtinError)
		}
		return set
	}
	if info.Kind == KindInterface {
		methods, _ := c.interfaceMethods(id, map[string]bool{})
		return methods
	}

	for _, m := range info.Methods {
		set[m.Name] = m.Signature
	}
	for _, embed := range info.Embeds {
		for name, sig := range c.methodSet(embed, visited) {
			if _, exists := set[name]; !exists {
				set[name] = sig
			}
		}
	}
	return set
}

func isBuiltinError(id string) bool {
	_, name := SplitID(id)
	return name == "error"
}
