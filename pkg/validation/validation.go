// Package validation 把注册表、默认规则引擎与配置组装在一起，
// 提供面向业务代码的包级入口。
//
// 使用示例：
//
//	validation.MustAnnotate[User]("username", rule.String().Alphanum().Min(3).Max(30).Required())
//	result, err := validation.Validate(&User{Username: "root"})
package validation

import (
	"sync"

	"go.uber.org/zap"

	"katydid-common-validation/pkg/config"
	"katydid-common-validation/pkg/rule"
	"katydid-common-validation/pkg/validator"
)

// TagKey 默认的结构体规则标签名
const TagKey = "validate"

var (
	defaultValidator *validator.Validator
	defaultOnce      sync.Once
)

// Default 返回使用默认注册表与默认规则引擎的全局验证器
func Default() *validator.Validator {
	defaultOnce.Do(func() {
		defaultValidator = validator.New(rule.NewEngine(), validator.WithRegistry(validator.DefaultRegistry()))
	})
	return defaultValidator
}

// Annotate 在默认注册表中给 T 的属性附加规则
func Annotate[T any](member string, spec validator.RuleSpec) error {
	return validator.Annotate[T](validator.DefaultRegistry(), member, spec)
}

// MustAnnotate 同 Annotate，失败时 panic，用于 init 中声明规则
func MustAnnotate[T any](member string, spec validator.RuleSpec) {
	validator.MustAnnotate[T](validator.DefaultRegistry(), member, spec)
}

// AnnotateTags 把 T 的 validate 标签登记到默认注册表
func AnnotateTags[T any]() error {
	return validator.AnnotateTags[T](validator.DefaultRegistry(), TagKey, rule.ParseTag)
}

// Validate 使用默认验证器验证实例
func Validate(instance any) (validator.Result, error) {
	return Default().Validate(instance)
}

// ValidateAs 使用默认验证器按 T 的元数据验证实例
func ValidateAs[T any](instance any) (validator.Result, error) {
	return validator.ValidateAs[T](Default(), instance)
}

// ============================================================================
// 按配置创建
// ============================================================================

// Setup 按配置创建的验证器与它的注册表
type Setup struct {
	Validator *validator.Validator
	Registry  *validator.Registry
	// TagKey AnnotateTags 使用的标签名
	TagKey string
}

// NewFromConfig 按配置创建独立的注册表与验证器
// 额外的 engineOpts 追加在配置之后，可覆盖配置项。
func NewFromConfig(cfg config.ValidatorConfig, logger *zap.Logger, engineOpts ...rule.EngineOption) *Setup {
	if logger == nil {
		logger = zap.NewNop()
	}

	tagKey := cfg.TagKey
	if tagKey == "" {
		tagKey = TagKey
	}

	registry := validator.NewRegistry(
		validator.WithNameTag(cfg.NameTag),
		validator.WithRegistryLogger(logger.Named("registry")),
	)

	opts := append([]rule.EngineOption{rule.WithAbortEarly(cfg.AbortEarly)}, engineOpts...)
	v := validator.New(rule.NewEngine(opts...),
		validator.WithRegistry(registry),
		validator.WithLogger(logger.Named("validator")),
		validator.WithEmptyMetadataPolicy(cfg.Policy()),
	)

	return &Setup{Validator: v, Registry: registry, TagKey: tagKey}
}

// AnnotateSetupTags 把 T 的标签按 Setup 的标签名登记到它的注册表
func AnnotateSetupTags[T any](s *Setup) error {
	return validator.AnnotateTags[T](s.Registry, s.TagKey, rule.ParseTag)
}
