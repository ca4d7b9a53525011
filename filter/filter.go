// Package filter 发现结果的过滤器与校验器
//
// 过滤器按注册顺序作用于整个标识符列表；校验器对单个标识符做判定，
// 多个校验器之间是与关系，与注册顺序无关。
package filter

import (
	"github.com/donutnomad/godiscover/strategy"
)

// Filter 过滤标识符列表
type Filter interface {
	Apply(ids []string, s strategy.Strategy) []string
}

// Validator 校验单个标识符
type Validator interface {
	Validate(id string) bool
}

// Fingerprinter 参与自动缓存键计算的参数摘要
type Fingerprinter interface {
	Fingerprint() string
}

// Relations 类型关系查询
type Relations interface {
	Instantiable(id string) bool
	Extends(id, parent string) bool
	Implements(id, iface string) bool
}

// ApplyFilters 依次应用过滤器
func ApplyFilters(ids []string, s strategy.Strategy, filters ...Filter) []string {
	for _, f := range filters {
		ids = f.Apply(ids, s)
	}
	return ids
}

// ApplyValidators 保留通过全部校验器的标识符
func ApplyValidators(ids []string, validators ...Validator) []string {
	if len(validators) == 0 {
		return ids
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if passes(id, validators) {
			kept = append(kept, id)
		}
	}
	return kept
}

func passes(id string, validators []Validator) bool {
	for _, v := range validators {
		if !SafeValidate(v, id) {
			return false
		}
	}
	return true
}

// SafeValidate 校验器 panic 时视为不通过
func SafeValidate(v Validator, id string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return v.Validate(id)
}
