package rule

import (
	"errors"
	"fmt"
)

// ErrInvalidSchema 规则本身不合法（不支持的规则类型、空备选、未知标签等）
// 在验证时由引擎返回，而不是在组合阶段。
var ErrInvalidSchema = errors.New("invalid rule schema")

// Detail 单个属性的验证失败信息
// 国际化时，可以通过 Type 和 Param 查找对应的翻译
type Detail struct {
	// Path 属性名
	Path string `json:"path"`
	// Type 失败类型（如 string.empty、string.max、number.min）
	Type string `json:"type"`
	// Param 规则参数（如 max(30) 中的 "30"）
	Param string `json:"param,omitempty"`
	// Value 属性的实际值
	Value any `json:"value,omitempty"`
	// Message 描述性错误消息，如 "username" is not allowed to be empty
	Message string `json:"message"`
}

// String 返回带属性上下文的错误描述
func (d *Detail) String() string {
	return fmt.Sprintf("child %q fails because [%s]", d.Path, d.Message)
}

// ValidationError 对象验证失败
// 默认只包含第一个失败的属性；关闭 abort early 时包含所有失败的属性。
type ValidationError struct {
	Details []*Detail `json:"details"`
}

// Error 实现 error 接口
func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	if len(e.Details) == 1 {
		return e.Details[0].String()
	}

	builder := acquireBuilder()
	defer releaseBuilder(builder)

	for i, d := range e.Details {
		if i > 0 {
			builder.WriteString(". ")
		}
		builder.WriteString(d.String())
	}
	return builder.String()
}

// First 第一个失败的属性
func (e *ValidationError) First() *Detail {
	if len(e.Details) == 0 {
		return nil
	}
	return e.Details[0]
}

// Fields 失败属性名列表，按检查顺序
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		fields = append(fields, d.Path)
	}
	return fields
}

// Has 指定属性是否失败
func (e *ValidationError) Has(path string) bool {
	for _, d := range e.Details {
		if d.Path == path {
			return true
		}
	}
	return false
}

// newDetail 创建失败信息，消息格式为 "label" + 描述
func newDetail(label, typ, param string, value any, format string, args ...any) *Detail {
	return &Detail{
		Path:    label,
		Type:    typ,
		Param:   param,
		Value:   value,
		Message: fmt.Sprintf("%q ", label) + fmt.Sprintf(format, args...),
	}
}
