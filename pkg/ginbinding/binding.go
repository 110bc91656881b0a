// Package ginbinding 把注册表中的规则接入 gin 的请求绑定。
package ginbinding

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"katydid-common-validation/pkg/rule"
	"katydid-common-validation/pkg/validator"
)

// StructValidator 实现 gin binding.StructValidator
// 指针解引用，切片与数组逐个元素验证，没有注解的类型直接通过。
type StructValidator struct {
	validator *validator.Validator
	logger    *zap.Logger
}

// Option 配置选项
type Option func(*StructValidator)

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *StructValidator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New 创建 gin 结构体验证器
func New(v *validator.Validator, opts ...Option) *StructValidator {
	s := &StructValidator{validator: v, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Install 替换 gin 的全局绑定验证器
func Install(v *validator.Validator, opts ...Option) *StructValidator {
	s := New(v, opts...)
	binding.Validator = s
	return s
}

// ValidateStruct 实现 binding.StructValidator
func (s *StructValidator) ValidateStruct(obj any) error {
	return s.validateValue(reflect.ValueOf(obj))
}

// Engine 实现 binding.StructValidator，返回底层验证器
func (s *StructValidator) Engine() any {
	return s.validator
}

func (s *StructValidator) validateValue(v reflect.Value) error {
	for v.IsValid() && v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := s.validateValue(v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		result, err := s.validator.Validate(v.Interface())
		if err != nil {
			if errors.Is(err, validator.ErrNoMetadataFound) {
				return nil
			}
			return err
		}
		return result.Error
	default:
		return nil
	}
}

// errorResponse 绑定失败响应
type errorResponse struct {
	Error   string         `json:"error"`
	Details []*rule.Detail `json:"details,omitempty"`
}

// Bind 按请求的 Content-Type 绑定并验证 obj
// 失败时以 400 响应并终止处理链，返回 false。
func Bind(c *gin.Context, obj any) bool {
	err := c.ShouldBind(obj)
	if err == nil {
		return true
	}

	resp := errorResponse{Error: err.Error()}
	var verr *rule.ValidationError
	if errors.As(err, &verr) {
		resp.Details = verr.Details
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
	return false
}

var _ binding.StructValidator = (*StructValidator)(nil)
