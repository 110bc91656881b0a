package validator

import (
	"reflect"

	"go.uber.org/zap"
)

// EmptyMetadataPolicy 元数据存在但没有任何属性规则时的处理策略
type EmptyMetadataPolicy int

const (
	// EmptyMetadataReject 视同没有元数据，返回 NoMetadataFoundError（默认）
	EmptyMetadataReject EmptyMetadataPolicy = iota
	// EmptyMetadataAccept 视为没有约束，直接验证通过
	EmptyMetadataAccept
)

// Validator 验证器
// 设计原则：
//   - 依赖倒置：只依赖 Engine 接口，规则的具体检查交给引擎
//   - 无状态：除注册表查询外不修改任何状态，可并发调用
type Validator struct {
	engine        Engine
	registry      *Registry
	emptyMetadata EmptyMetadataPolicy
	logger        *zap.Logger
}

// Option 验证器配置选项
type Option func(*Validator)

// WithRegistry 指定元数据注册表（默认使用 DefaultRegistry）
func WithRegistry(r *Registry) Option {
	return func(v *Validator) {
		if r != nil {
			v.registry = r
		}
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithEmptyMetadataPolicy 设置空元数据的处理策略
func WithEmptyMetadataPolicy(policy EmptyMetadataPolicy) Option {
	return func(v *Validator) {
		v.emptyMetadata = policy
	}
}

// New 创建验证器
func New(engine Engine, opts ...Option) *Validator {
	v := &Validator{
		engine:        engine,
		emptyMetadata: EmptyMetadataReject,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.registry == nil {
		v.registry = DefaultRegistry()
	}
	return v
}

// Registry 返回验证器使用的注册表
func (v *Validator) Registry() *Registry {
	return v.registry
}

// Engine 返回底层规则引擎
func (v *Validator) Engine() Engine {
	return v.engine
}

// Validate 按实例的运行时类型验证
//
// 返回值：
//   - error 非 nil：类型没有元数据（*NoMetadataFoundError），属于使用错误
//   - Result.Error 非 nil：实例不满足规则，属于正常的数据结果
func (v *Validator) Validate(instance any) (Result, error) {
	return v.ValidateAs(instance, reflect.TypeOf(instance))
}

// ValidateAs 按指定类型的规则验证实例
// 用于实例的运行时类型与注解类型不同的情况，例如嵌入了基础类型的结构体按基础类型的规则验证。
// class 为 nil 时使用实例的运行时类型。
func (v *Validator) ValidateAs(instance any, class reflect.Type) (Result, error) {
	if class == nil {
		class = reflect.TypeOf(instance)
	}
	class = indirectType(class)

	md, ok := v.registry.Get(class)
	if !ok {
		return Result{Value: instance}, NewNoMetadataFoundError(className(class))
	}

	if md.Len() == 0 {
		if v.emptyMetadata == EmptyMetadataAccept {
			return Result{Value: instance}, nil
		}
		return Result{Value: instance}, NewNoMetadataFoundError(className(class))
	}

	return v.check(instance, class, Compose(v.engine, md)), nil
}

// ValidateFields 只按指定字段的规则验证实例，用于部分更新
// fields 为结构体字段名，没有规则的字段忽略；元数据的处理与 Validate 相同。
func (v *Validator) ValidateFields(instance any, fields ...string) (Result, error) {
	class := indirectType(reflect.TypeOf(instance))

	md, ok := v.registry.Get(class)
	if !ok {
		return Result{Value: instance}, NewNoMetadataFoundError(className(class))
	}

	if md.Len() == 0 {
		if v.emptyMetadata == EmptyMetadataAccept {
			return Result{Value: instance}, nil
		}
		return Result{Value: instance}, NewNoMetadataFoundError(className(class))
	}

	return v.check(instance, class, ComposeFields(v.engine, md, fields)), nil
}

func (v *Validator) check(instance any, class reflect.Type, schema CompositeSchema) Result {
	result := v.engine.Check(instance, schema)
	if result.Error != nil {
		v.logger.Debug("validation failed",
			zap.String("class", className(class)),
			zap.Error(result.Error),
		)
	}
	return result
}

// ValidateAs 按类型 T 的规则验证实例
func ValidateAs[T any](v *Validator, instance any) (Result, error) {
	return v.ValidateAs(instance, reflect.TypeOf((*T)(nil)).Elem())
}
