package filter

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/godiscover/annotation"
	"github.com/donutnomad/godiscover/internal/errors"
	"github.com/donutnomad/godiscover/strategy"
	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// ErrInvalidOperator 不支持的比较运算符
var ErrInvalidOperator = errors.New("不支持的比较运算符")

// 支持的运算符
var operators = []string{"=", "==", "!=", "<>", ">", ">=", "<", "<=", "contains", "in"}

// PropertyFilter 按注解参数值过滤
//
// 参数取自元数据中的 attribute；没有时取 attributes 中第一个带有该参数的注解。
// 缺少注解或参数的标识符被排除。
type PropertyFilter struct {
	property string
	operator string
	value    any
}

func NewPropertyFilter(property, operator string, value any) (*PropertyFilter, error) {
	op := strings.ToLower(strings.TrimSpace(operator))
	if !lo.Contains(operators, op) {
		return nil, errors.WithStackTraceAndPrefix(ErrInvalidOperator, "%q", operator)
	}
	return &PropertyFilter{property: property, operator: op, value: value}, nil
}

// Where 一个参数时为相等比较，两个参数时为 (运算符, 值)
func Where(property string, args ...any) (*PropertyFilter, error) {
	switch len(args) {
	case 1:
		return NewPropertyFilter(property, "=", args[0])
	case 2:
		op, ok := args[0].(string)
		if !ok {
			return nil, errors.WithStackTraceAndPrefix(ErrInvalidOperator, "%v", args[0])
		}
		return NewPropertyFilter(property, op, args[1])
	default:
		return nil, errors.Errorf("where(%s) 需要 1 或 2 个参数，实际 %d 个", property, len(args))
	}
}

func (f *PropertyFilter) Apply(ids []string, s strategy.Strategy) []string {
	return lo.Filter(ids, func(id string, _ int) bool {
		return f.Matches(s.Metadata(id))
	})
}

// Matches 判断元数据是否满足条件
func (f *PropertyFilter) Matches(meta strategy.Metadata) bool {
	actual, ok := PropertyOf(meta, f.property)
	if !ok {
		return false
	}
	return compare(actual, f.operator, f.value)
}

func (f *PropertyFilter) Fingerprint() string {
	value, err := sonic.MarshalString(f.value)
	if err != nil {
		value = fmt.Sprintf("%#v", f.value)
	}
	return f.property + "|" + f.operator + "|" + value
}

func (f *PropertyFilter) String() string {
	return fmt.Sprintf("%s %s %v", f.property, f.operator, f.value)
}

// PropertyOf 从元数据的注解中读取参数
func PropertyOf(meta strategy.Metadata, property string) (string, bool) {
	if ann, ok := meta["attribute"].(*annotation.Annotation); ok && ann != nil {
		return ann.Value(property)
	}
	anns, _ := meta["attributes"].([]*annotation.Annotation)
	for _, ann := range anns {
		if v, ok := ann.Value(property); ok {
			return v, true
		}
	}
	return "", false
}

func compare(actual, op string, expected any) bool {
	switch op {
	case "=", "==":
		return equal(actual, expected)
	case "!=", "<>":
		return !equal(actual, expected)
	case ">", ">=", "<", "<=":
		a, errA := cast.ToFloat64E(actual)
		b, errB := cast.ToFloat64E(expected)
		if errA != nil || errB != nil {
			return false
		}
		switch op {
		case ">":
			return a > b
		case ">=":
			return a >= b
		case "<":
			return a < b
		default:
			return a <= b
		}
	case "contains":
		return lo.Contains(annotation.SplitList(actual), cast.ToString(expected))
	case "in":
		return lo.ContainsBy(toStrings(expected), func(v string) bool {
			return equal(actual, v)
		})
	default:
		return false
	}
}

// equal 按期望值的类型转换后比较
func equal(actual string, expected any) bool {
	switch exp := expected.(type) {
	case nil:
		return actual == ""
	case string:
		return actual == exp
	case bool:
		b, err := cast.ToBoolE(actual)
		return err == nil && b == exp
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		a, errA := cast.ToFloat64E(actual)
		b, errB := cast.ToFloat64E(exp)
		return errA == nil && errB == nil && a == b
	default:
		return actual == cast.ToString(exp)
	}
}

func toStrings(v any) []string {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return annotation.SplitList(cast.ToString(v))
	}
	out := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, cast.ToString(rv.Index(i).Interface()))
	}
	return out
}
