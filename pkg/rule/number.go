package rule

import (
	"math"
	"reflect"
	"strconv"
)

// numberCheck 数字规则中的单项检查
type numberCheck func(label string, f float64, raw any) *Detail

// NumberSchema 数字规则
// 接受所有整数、无符号整数与浮点类型，不做字符串到数字的转换。
type NumberSchema struct {
	presence
	checks []numberCheck
}

// Number 创建数字规则
func Number() *NumberSchema {
	return &NumberSchema{}
}

// Type 实现 Schema 接口
func (n *NumberSchema) Type() string { return "number" }

// Required 属性必须存在
func (n *NumberSchema) Required() *NumberSchema {
	n.required = true
	return n
}

// Optional 属性可以不存在（默认）
func (n *NumberSchema) Optional() *NumberSchema {
	n.required = false
	return n
}

// Valid 只允许列出的值
func (n *NumberSchema) Valid(values ...any) *NumberSchema {
	n.valid = append(n.valid, values...)
	return n
}

// Invalid 禁止列出的值
func (n *NumberSchema) Invalid(values ...any) *NumberSchema {
	n.invalid = append(n.invalid, values...)
	return n
}

// Integer 必须是整数
func (n *NumberSchema) Integer() *NumberSchema {
	return n.add(func(label string, f float64, raw any) *Detail {
		if f != math.Trunc(f) {
			return newDetail(label, "number.integer", "", raw, "must be an integer")
		}
		return nil
	})
}

// Min 最小值（含）
func (n *NumberSchema) Min(limit float64) *NumberSchema {
	param := formatNumber(limit)
	return n.add(func(label string, f float64, raw any) *Detail {
		if f < limit {
			return newDetail(label, "number.min", param, raw, "must be larger than or equal to %s", param)
		}
		return nil
	})
}

// Max 最大值（含）
func (n *NumberSchema) Max(limit float64) *NumberSchema {
	param := formatNumber(limit)
	return n.add(func(label string, f float64, raw any) *Detail {
		if f > limit {
			return newDetail(label, "number.max", param, raw, "must be less than or equal to %s", param)
		}
		return nil
	})
}

// Positive 必须大于 0
func (n *NumberSchema) Positive() *NumberSchema {
	return n.add(func(label string, f float64, raw any) *Detail {
		if f <= 0 {
			return newDetail(label, "number.positive", "", raw, "must be a positive number")
		}
		return nil
	})
}

func (n *NumberSchema) add(check numberCheck) *NumberSchema {
	n.checks = append(n.checks, check)
	return n
}

// check 实现 Schema 接口
func (n *NumberSchema) check(_ *checker, label string, v reflect.Value) *Detail {
	v = indirect(v)
	if done, d := n.precheck(label, v); done {
		return d
	}

	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return newDetail(label, "number.base", "", v.Interface(), "must be a number")
	}

	raw := v.Interface()
	for _, check := range n.checks {
		if d := check(label, f, raw); d != nil {
			return d
		}
	}
	return nil
}

// toFloat 把数字类型转换为 float64
func toFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
