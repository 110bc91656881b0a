package rule

import (
	"reflect"
	"strings"
)

// BooleanSchema 布尔规则
type BooleanSchema struct {
	presence
}

// Boolean 创建布尔规则
func Boolean() *BooleanSchema {
	return &BooleanSchema{}
}

// Type 实现 Schema 接口
func (b *BooleanSchema) Type() string { return "boolean" }

// Required 属性必须存在
func (b *BooleanSchema) Required() *BooleanSchema {
	b.required = true
	return b
}

// check 实现 Schema 接口
func (b *BooleanSchema) check(_ *checker, label string, v reflect.Value) *Detail {
	v = indirect(v)
	if done, d := b.precheck(label, v); done {
		return d
	}
	if v.Kind() != reflect.Bool {
		return newDetail(label, "boolean.base", "", v.Interface(), "must be a boolean")
	}
	return nil
}

// AnySchema 任意值规则，只做取值约束
type AnySchema struct {
	presence
}

// Any 创建任意值规则
func Any() *AnySchema {
	return &AnySchema{}
}

// Type 实现 Schema 接口
func (a *AnySchema) Type() string { return "any" }

// Required 属性必须存在
func (a *AnySchema) Required() *AnySchema {
	a.required = true
	return a
}

// Valid 只允许列出的值
func (a *AnySchema) Valid(values ...any) *AnySchema {
	a.valid = append(a.valid, values...)
	return a
}

// Invalid 禁止列出的值
func (a *AnySchema) Invalid(values ...any) *AnySchema {
	a.invalid = append(a.invalid, values...)
	return a
}

// check 实现 Schema 接口
func (a *AnySchema) check(_ *checker, label string, v reflect.Value) *Detail {
	_, d := a.precheck(label, indirect(v))
	return d
}

// AlternativesSchema 备选规则：值满足任意一个备选即通过
// 备选按顺序尝试，第一个通过的备选生效。
type AlternativesSchema struct {
	presence
	schemas []Schema
}

// Alternatives 创建备选规则
// 作为属性规则时，[]Schema 等价于 Alternatives(schemas...)。
func Alternatives(schemas ...Schema) *AlternativesSchema {
	return &AlternativesSchema{schemas: schemas}
}

// Type 实现 Schema 接口
func (a *AlternativesSchema) Type() string { return "alternatives" }

// Required 属性必须存在
func (a *AlternativesSchema) Required() *AlternativesSchema {
	a.required = true
	return a
}

// check 实现 Schema 接口
func (a *AlternativesSchema) check(c *checker, label string, v reflect.Value) *Detail {
	v = indirect(v)
	if done, d := a.precheck(label, v); done {
		return d
	}

	for _, schema := range a.schemas {
		if schema.check(c, label, v) == nil {
			return nil
		}
	}
	return newDetail(label, "alternatives.base", a.types(), v.Interface(), "not matching any of the allowed alternatives")
}

// types 备选规则的类型列表，如 "string, number"
func (a *AlternativesSchema) types() string {
	names := make([]string, 0, len(a.schemas))
	for _, schema := range a.schemas {
		names = append(names, schema.Type())
	}
	return strings.Join(names, ", ")
}
