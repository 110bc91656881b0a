package validator

import (
	"errors"
	"fmt"
)

// ============================================================================
// 注解与元数据错误
// ============================================================================
//
// 这些错误都属于"使用方式错误"：声明阶段或验证调用阶段立即返回，不做重试。
// 字段值不满足规则属于正常的数据结果，通过 Result.Error 返回，而不是这里的错误。

var (
	// ErrNotAProperty 注解目标不是可验证的属性（方法、私有字段或不存在的成员）
	ErrNotAProperty = errors.New("validation rules can only be attached to properties")

	// ErrDuplicateAnnotation 同一属性被重复注解
	ErrDuplicateAnnotation = errors.New("validation rules can only be attached once per property")

	// ErrNoMetadataFound 类型没有任何已记录的验证元数据
	ErrNoMetadataFound = errors.New("no validation metadata was found")

	// ErrInvalidClass 注解或验证的目标类型不是结构体
	ErrInvalidClass = errors.New("validation target class must be a struct")
)

// NotAPropertyError 注解被应用到非属性成员上
type NotAPropertyError struct {
	// Member 出错的成员名称
	Member string
}

// NewNotAPropertyError 创建非属性错误
func NewNotAPropertyError(member string) *NotAPropertyError {
	return &NotAPropertyError{Member: member}
}

func (e *NotAPropertyError) Error() string {
	return fmt.Sprintf("%s: %q is not a property", ErrNotAProperty.Error(), e.Member)
}

// Is 支持 errors.Is(err, ErrNotAProperty)
func (e *NotAPropertyError) Is(target error) bool {
	return target == ErrNotAProperty
}

// DuplicateAnnotationError 同一属性被第二次注解
type DuplicateAnnotationError struct {
	// Property 重复注解的属性名
	Property string
}

// NewDuplicateAnnotationError 创建重复注解错误
func NewDuplicateAnnotationError(property string) *DuplicateAnnotationError {
	return &DuplicateAnnotationError{Property: property}
}

func (e *DuplicateAnnotationError) Error() string {
	return fmt.Sprintf("%s: %q is already annotated", ErrDuplicateAnnotation.Error(), e.Property)
}

// Is 支持 errors.Is(err, ErrDuplicateAnnotation)
func (e *DuplicateAnnotationError) Is(target error) bool {
	return target == ErrDuplicateAnnotation
}

// NoMetadataFoundError 请求验证的类型没有注解
type NoMetadataFoundError struct {
	// Class 类型名称
	Class string
}

// NewNoMetadataFoundError 创建元数据缺失错误
func NewNoMetadataFoundError(class string) *NoMetadataFoundError {
	return &NoMetadataFoundError{Class: class}
}

func (e *NoMetadataFoundError) Error() string {
	return fmt.Sprintf("%s for class %q", ErrNoMetadataFound.Error(), e.Class)
}

// Is 支持 errors.Is(err, ErrNoMetadataFound)
func (e *NoMetadataFoundError) Is(target error) bool {
	return target == ErrNoMetadataFound
}
