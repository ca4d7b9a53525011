package annotation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// ParamDef 定义注解参数的元信息
type ParamDef struct {
	Name        string // 参数名称
	Required    bool   // 是否必填
	Default     string // 默认值（如果不是必填）
	Description string // 参数描述
}

// ParamDefsOf 从结构体的 tag 解析参数定义
// 支持的 tag: name, required, default, description
//
// 示例:
//
//	type CardParams struct {
//	    Enabled  bool `param:"name=enabled,required=false,default=true,description=是否启用"`
//	    Priority int  `param:"name=priority,required=false,default=0,description=排序权重"`
//	}
//
//	defs := annotation.ParamDefsOf(CardParams{})
func ParamDefsOf(v any) []ParamDef {
	typ := reflect.TypeOf(v)
	if typ == nil {
		return nil
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	var params []ParamDef
	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("param")
		if tag == "" {
			continue
		}
		def := parseParamTag(tag)
		if def.Name != "" {
			params = append(params, def)
		}
	}
	return params
}

// parseParamTag 解析 param tag 字符串
// 格式: name=xxx,required=true,default=xxx,description=xxx
func parseParamTag(tag string) ParamDef {
	var param ParamDef
	for key, value := range splitTag(tag) {
		switch key {
		case "name":
			param.Name = value
		case "required":
			param.Required = value == "true"
		case "default":
			param.Default = value
		case "description":
			param.Description = value
		}
	}
	return param
}

// splitTag 分割 tag 字符串为键值对，支持 \ 转义
func splitTag(tag string) map[string]string {
	result := make(map[string]string)

	var key, value strings.Builder
	inKey := true
	escaped := false

	flush := func() {
		if key.Len() > 0 {
			result[key.String()] = value.String()
		}
		key.Reset()
		value.Reset()
		inKey = true
	}

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
			continue
		case ch == '=' && inKey:
			inKey = false
			continue
		case ch == ',':
			flush()
			continue
		}
		if inKey {
			key.WriteByte(ch)
		} else {
			value.WriteByte(ch)
		}
	}
	flush()

	return result
}

// DecodeParams 将注解参数解析到目标结构体中
// target 必须是非 nil 的结构体指针；缺失的参数使用 tag 中的默认值
func DecodeParams(ann *Annotation, target any) error {
	val := reflect.ValueOf(target)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("目标必须是非 nil 指针, 得到: %T", target)
	}
	val = val.Elem()
	typ := val.Type()
	if typ.Kind() != reflect.Struct {
		return fmt.Errorf("目标必须是结构体指针, 得到: %T", target)
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		tag := field.Tag.Get("param")
		if tag == "" {
			continue
		}
		def := parseParamTag(tag)
		if def.Name == "" {
			continue
		}

		value, ok := ann.Value(def.Name)
		if !ok || value == "" {
			if def.Required && !ok {
				return fmt.Errorf("注解 @%s 缺少必填参数 %s", ann.Name, def.Name)
			}
			value = def.Default
		}

		if err := setFieldValue(fieldVal, value); err != nil {
			return fmt.Errorf("参数 %s: %w", def.Name, err)
		}
	}

	return nil
}

// setFieldValue 设置字段值，支持 string, int, uint, bool, float 以及 []string
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetUint(n)
	case reflect.Bool:
		if value == "" {
			field.SetBool(false)
			return nil
		}
		b, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(orZero(value))
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("不支持的切片类型 %s", field.Type())
		}
		field.Set(reflect.ValueOf(SplitList(value)))
	}
	return nil
}

func orZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
