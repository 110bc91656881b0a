package validator

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// ============================================================================
// 注解：在类型声明阶段把规则挂到属性上
// ============================================================================

// Annotate 为类型的属性附加验证规则
//
// member 可以是导出的结构体字段名，也可以是名称标签（默认 json）中的名字。
// 失败情况：
//   - class 不是结构体：ErrInvalidClass
//   - member 不是导出字段（方法、私有字段或不存在）：*NotAPropertyError
//   - 属性已有规则：*DuplicateAnnotationError，第二次注解才会失败
//
// 成功时获取（或创建）类型的元数据并按顺序记录规则。
func (r *Registry) Annotate(class reflect.Type, member string, spec RuleSpec) error {
	class = indirectType(class)
	if class == nil || class.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s", ErrInvalidClass, className(class))
	}

	field, ok := r.resolveProperty(class, member)
	if !ok {
		r.logger.Warn("annotation rejected: not a property",
			zap.String("class", className(class)),
			zap.String("member", member),
			zap.Bool("method", hasMethod(class, member)),
		)
		return NewNotAPropertyError(member)
	}

	label := r.propertyName(field)
	if md, exists := r.Get(class); exists {
		if _, annotated := md.Lookup(field.Name); annotated {
			r.logger.Warn("annotation rejected: duplicate",
				zap.String("class", className(class)),
				zap.String("property", label),
			)
			return NewDuplicateAnnotationError(label)
		}
	}

	md := r.GetOrCreate(class)
	if !md.add(FieldRule{Name: label, Field: field.Name, Spec: spec}) {
		// 并发声明时另一个调用者先写入
		return NewDuplicateAnnotationError(label)
	}

	r.logger.Debug("property annotated",
		zap.String("class", className(class)),
		zap.String("property", label),
		zap.String("field", field.Name),
	)
	return nil
}

// Annotate 为类型 T 的属性附加验证规则
func Annotate[T any](r *Registry, member string, spec RuleSpec) error {
	return r.Annotate(reflect.TypeOf((*T)(nil)).Elem(), member, spec)
}

// MustAnnotate 与 Annotate 相同，失败时 panic
// 用于包级变量或 init() 中的声明，让注解错误在程序加载时暴露。
func MustAnnotate[T any](r *Registry, member string, spec RuleSpec) {
	if err := Annotate[T](r, member, spec); err != nil {
		panic(err)
	}
}

// AnnotateTags 按结构体标签声明类型 T 的属性规则
//
// 按字段声明顺序遍历导出字段，带 tagKey 标签的字段用 parse 解析出规则后注解；
// 标签值为 "-" 的字段跳过。
//
// 示例：
//
//	type User struct {
//	    Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
//	}
//
//	err := validator.AnnotateTags[User](registry, "validate", rule.ParseTag)
func AnnotateTags[T any](r *Registry, tagKey string, parse TagParser) error {
	class := reflect.TypeOf((*T)(nil)).Elem()
	if class.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %s", ErrInvalidClass, className(class))
	}

	for _, field := range reflect.VisibleFields(class) {
		if !field.IsExported() {
			continue
		}
		tag, ok := field.Tag.Lookup(tagKey)
		if !ok || tag == "-" {
			continue
		}

		spec, err := parse(tag)
		if err != nil {
			return fmt.Errorf("parse %s tag of %s.%s: %w", tagKey, className(class), field.Name, err)
		}
		if err = r.Annotate(class, field.Name, spec); err != nil {
			return err
		}
	}
	return nil
}

// resolveProperty 把成员名解析为导出字段
// 先按结构体字段名（含嵌入提升的字段），再按名称标签查找。
func (r *Registry) resolveProperty(class reflect.Type, member string) (reflect.StructField, bool) {
	if member == "" {
		return reflect.StructField{}, false
	}

	if field, ok := class.FieldByName(member); ok {
		return field, field.IsExported()
	}

	if r.nameTag == "" {
		return reflect.StructField{}, false
	}
	for _, field := range reflect.VisibleFields(class) {
		if field.IsExported() && tagName(field, r.nameTag) == member {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

// propertyName 属性在错误消息中的名称
func (r *Registry) propertyName(field reflect.StructField) string {
	if name := tagName(field, r.nameTag); name != "" {
		return name
	}
	return field.Name
}

// tagName 提取名称标签的第一部分（逗号前），"-" 视为未设置
func tagName(field reflect.StructField, key string) string {
	if key == "" {
		return ""
	}
	name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// hasMethod 成员是否为类型（或其指针）的方法
func hasMethod(class reflect.Type, member string) bool {
	if _, ok := class.MethodByName(member); ok {
		return true
	}
	_, ok := reflect.PointerTo(class).MethodByName(member)
	return ok
}
