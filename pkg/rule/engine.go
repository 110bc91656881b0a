package rule

import (
	"fmt"

	playground "github.com/go-playground/validator/v10"

	"katydid-common-validation/pkg/validator"
)

// Engine 规则引擎，实现 validator.Engine
// 字符串格式类检查（alphanum、email、uri、lowercase）与 Tag 规则委托给 go-playground/validator。
type Engine struct {
	playground *playground.Validate
	abortEarly bool
}

// EngineOption 引擎配置选项
type EngineOption func(*Engine)

// WithAbortEarly 遇到第一个失败的属性即停止（默认 true）
// 设为 false 时报告所有失败的属性。
func WithAbortEarly(abortEarly bool) EngineOption {
	return func(e *Engine) {
		e.abortEarly = abortEarly
	}
}

// WithPlayground 使用已配置好的 go-playground/validator 实例
func WithPlayground(v *playground.Validate) EngineOption {
	return func(e *Engine) {
		if v != nil {
			e.playground = v
		}
	}
}

// NewEngine 创建规则引擎
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{abortEarly: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.playground == nil {
		e.playground = playground.New()
	}
	return e
}

// RegisterValidation 注册自定义标签，供 Tag 规则使用
func (e *Engine) RegisterValidation(tag string, fn playground.Func) error {
	return e.playground.RegisterValidation(tag, fn)
}

// Playground 返回底层的 go-playground/validator 实例
func (e *Engine) Playground() *playground.Validate {
	return e.playground
}

// ObjectSchema 实现 validator.Engine，按声明顺序打包属性规则
func (e *Engine) ObjectSchema(fields []validator.FieldRule) validator.CompositeSchema {
	schema := Object()
	for _, field := range fields {
		schema.Key(field.Name, field.Field, field.Spec)
	}
	return schema
}

// Check 实现 validator.Engine
// 失败时 Result.Error 为 *ValidationError；规则本身不合法时为 ErrInvalidSchema。
// Value 始终为原始实例，引擎不做类型转换。
func (e *Engine) Check(value any, schema validator.CompositeSchema) (result validator.Result) {
	result.Value = value

	object, ok := schema.(*ObjectSchema)
	if !ok || object == nil {
		result.Error = fmt.Errorf("%w: %T is not an object schema", ErrInvalidSchema, schema)
		return result
	}
	if err := object.invalid(); err != nil {
		result.Error = err
		return result
	}

	// 未注册的标签等问题会在 go-playground/validator 内部 panic
	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("%w: %v", ErrInvalidSchema, r)
		}
	}()

	c := &checker{playground: e.playground}
	if details := object.checkFields(c, value, e.abortEarly); len(details) > 0 {
		result.Error = &ValidationError{Details: details}
	}
	return result
}

var _ validator.Engine = (*Engine)(nil)
