package filter

import (
	"github.com/donutnomad/godiscover/strategy"
	"github.com/samber/lo"
)

// Predicate 自定义判定，接收标识符与其元数据
type Predicate func(id string, meta strategy.Metadata) bool

// CallbackFilter 按自定义函数过滤，函数 panic 时排除该标识符
type CallbackFilter struct {
	fn Predicate
}

func NewCallbackFilter(fn Predicate) *CallbackFilter {
	return &CallbackFilter{fn: fn}
}

func (f *CallbackFilter) Apply(ids []string, s strategy.Strategy) []string {
	return lo.Filter(ids, func(id string, _ int) bool {
		return f.call(id, s)
	})
}

func (f *CallbackFilter) call(id string, s strategy.Strategy) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return f.fn(id, s.Metadata(id))
}
