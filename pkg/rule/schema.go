package rule

import (
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// Schema 单个属性的验证规则
// 由 String()、Number()、Boolean()、Any()、Alternatives()、Tag() 等构造函数创建，
// 以属性规则（validator.RuleSpec）的形式交给注册表。
type Schema interface {
	// Type 规则类型名称，如 string、number
	Type() string
	// check 检查属性值，v 无效（reflect.Value{}）表示属性不存在
	check(c *checker, label string, v reflect.Value) *Detail
}

// checker 单次检查共享的上下文
type checker struct {
	playground *playground.Validate
}

// tag 使用 go-playground/validator 的内置规则检查单个值
func (c *checker) tag(value any, expr string) bool {
	return c.playground.Var(value, expr) == nil
}

// ============================================================================
// 取值规则：必填、允许值、有效值、无效值
// ============================================================================

// presence 各类规则共享的取值约束
type presence struct {
	required bool
	allow    []any
	valid    []any
	invalid  []any
}

// precheck 在类型检查前执行取值约束
// done 为 true 表示已得出结论（通过或失败），无需继续检查
func (p *presence) precheck(label string, v reflect.Value) (done bool, d *Detail) {
	if !v.IsValid() {
		if p.required {
			return true, newDetail(label, "any.required", "", nil, "is required")
		}
		return true, nil
	}

	if containsValue(p.allow, v) {
		return true, nil
	}

	if len(p.valid) > 0 {
		if containsValue(p.valid, v) {
			return true, nil
		}
		return true, newDetail(label, "any.allowOnly", formatValues(p.valid), v.Interface(),
			"must be one of [%s]", formatValues(p.valid))
	}

	if containsValue(p.invalid, v) {
		return true, newDetail(label, "any.invalid", "", v.Interface(), "contains an invalid value")
	}
	return false, nil
}

// indirect 解引用指针与接口，nil 视为属性不存在
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	if v.IsValid() && !v.CanInterface() {
		return reflect.Value{}
	}
	return v
}

// containsValue 值是否在列表中，数字按数值比较
func containsValue(values []any, v reflect.Value) bool {
	if len(values) == 0 {
		return false
	}
	for _, candidate := range values {
		if sameValue(reflect.ValueOf(candidate), v) {
			return true
		}
	}
	return false
}

func sameValue(a, b reflect.Value) bool {
	a, b = indirect(a), indirect(b)
	if !a.IsValid() || !b.IsValid() {
		return !a.IsValid() && !b.IsValid()
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if a.Kind() == reflect.String && b.Kind() == reflect.String {
		return a.String() == b.String()
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

func formatValues(values []any) string {
	parts := make([]string, 0, len(values))
	for _, value := range values {
		parts = append(parts, fmt.Sprint(value))
	}
	return strings.Join(parts, ", ")
}
