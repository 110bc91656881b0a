package rule

import (
	"fmt"
	"reflect"
)

// ObjectSchema 对象规则：按声明顺序检查已注解的属性
// 只约束列出的属性，其他属性不检查。
type ObjectSchema struct {
	keys []objectKey
}

// objectKey 对象规则中的一个属性
type objectKey struct {
	name   string
	field  string
	schema Schema
	err    error // 属性规则不合法，验证时返回
}

// Object 创建空的对象规则
func Object() *ObjectSchema {
	return &ObjectSchema{}
}

// Key 添加属性规则
// name 为错误消息中的属性名，field 为结构体字段名，spec 支持：
//   - Schema：单个规则
//   - []Schema：备选规则
//   - string：go-playground/validator 标签表达式
func (o *ObjectSchema) Key(name, field string, spec any) *ObjectSchema {
	schema, err := normalize(spec)
	if err != nil {
		err = fmt.Errorf("%w: property %q: %v", ErrInvalidSchema, name, err)
	}
	o.keys = append(o.keys, objectKey{name: name, field: field, schema: schema, err: err})
	return o
}

// Len 属性数量
func (o *ObjectSchema) Len() int {
	return len(o.keys)
}

// invalid 第一个不合法的属性规则
func (o *ObjectSchema) invalid() error {
	for _, key := range o.keys {
		if key.err != nil {
			return key.err
		}
	}
	return nil
}

// checkFields 检查实例的属性，abortEarly 为 true 时遇到第一个失败即停止
func (o *ObjectSchema) checkFields(c *checker, value any, abortEarly bool) []*Detail {
	v := indirect(reflect.ValueOf(value))
	if !v.IsValid() {
		return []*Detail{newDetail("value", "any.required", "", nil, "is required")}
	}
	if v.Kind() != reflect.Struct {
		return []*Detail{newDetail("value", "object.base", "", v.Interface(), "must be an object")}
	}

	var details []*Detail
	for _, key := range o.keys {
		if d := key.schema.check(c, key.name, fieldValue(v, key.field)); d != nil {
			details = append(details, d)
			if abortEarly {
				break
			}
		}
	}
	return details
}

// fieldValue 按字段名取值，支持嵌入提升的字段
// 字段不存在、不可访问或经过 nil 嵌入指针时返回无效值。
func fieldValue(v reflect.Value, field string) reflect.Value {
	if field == "" {
		return reflect.Value{}
	}
	sf, ok := v.Type().FieldByName(field)
	if !ok {
		return reflect.Value{}
	}
	fv, err := v.FieldByIndexErr(sf.Index)
	if err != nil || !fv.CanInterface() {
		return reflect.Value{}
	}
	return fv
}

// normalize 把属性规则转换为 Schema
func normalize(spec any) (Schema, error) {
	switch s := spec.(type) {
	case nil:
		return nil, fmt.Errorf("nil rule")
	case Schema:
		if v := reflect.ValueOf(s); v.Kind() == reflect.Ptr && v.IsNil() {
			return nil, fmt.Errorf("nil %T rule", s)
		}
		return s, nil
	case []Schema:
		if len(s) == 0 {
			return nil, fmt.Errorf("empty alternatives")
		}
		return Alternatives(s...), nil
	case string:
		if s == "" {
			return nil, fmt.Errorf("empty tag")
		}
		return Tag(s), nil
	default:
		return nil, fmt.Errorf("unsupported rule type %T", spec)
	}
}
